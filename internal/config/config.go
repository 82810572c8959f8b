package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Favicon resolution modes
const (
	FaviconModeSync  = "sync"  // resolve inside the bookmark write path
	FaviconModeAsync = "async" // attach the icon after the write has committed
)

// DefaultFaviconFallbackURL is queried with the page hostname when scraping fails
const DefaultFaviconFallbackURL = "https://www.google.com/s2/favicons?domain={domain}&sz=48"

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	StaticDir   string
	// DefaultIconPath is served by /api/favicon when a bookmark has no stored icon
	DefaultIconPath string
	LogDir          string
	LogMaxFiles     int
	Database        DatabaseConfig
	Favicon         FaviconConfig
}

// DatabaseConfig selects and locates the persistence adapter
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	Path   string // sqlite file path, or ":memory:"
	URL    string // postgres connection string
}

// FaviconConfig controls favicon resolution
type FaviconConfig struct {
	Mode        string
	Timeout     time.Duration // per network call
	FallbackURL string        // template, {domain} is replaced by the page hostname
	Workers     int           // concurrent background resolutions in async mode
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	staticDir := getEnv("STATIC_DIR", "static")

	return &Config{
		Port:            getEnv("PORT", "8000"),
		Environment:     env,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:8000"),
		StaticDir:       staticDir,
		DefaultIconPath: getEnv("DEFAULT_ICON_PATH", staticDir+"/weblink.png"),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "sqlite"),
			Path:   getEnv("DB_PATH", defaultDBPath()),
			URL:    getEnv("DATABASE_URL", ""),
		},
		Favicon: FaviconConfig{
			Mode:        getEnv("FAVICON_MODE", FaviconModeSync),
			Timeout:     getEnvDuration("FAVICON_TIMEOUT", 5*time.Second),
			FallbackURL: getEnv("FAVICON_FALLBACK_URL", DefaultFaviconFallbackURL),
			Workers:     getEnvInt("FAVICON_WORKERS", 4),
		},
	}
}

// Validate rejects settings that would only fail once the server is running
func (c *Config) Validate() error {
	switch c.Favicon.Mode {
	case FaviconModeSync, FaviconModeAsync:
	default:
		return fmt.Errorf("unknown FAVICON_MODE %q (want %q or %q)", c.Favicon.Mode, FaviconModeSync, FaviconModeAsync)
	}
	return nil
}

// IsDev reports whether debug logging and dev conveniences are enabled
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// defaultDBPath keeps the database under ./data when that directory exists
// (container volume layout) and in the working directory otherwise.
func defaultDBPath() string {
	if info, err := os.Stat("data"); err == nil && info.IsDir() {
		return "data/bookmarks.db"
	}
	return "bookmarks.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go durations ("5s") or bare seconds ("5")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
