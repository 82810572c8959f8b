package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"bookmarkd/internal/config"
	"bookmarkd/internal/domain/services"
	"bookmarkd/internal/favicon"
	"bookmarkd/internal/repository"
	"bookmarkd/internal/seed"
	"bookmarkd/internal/service/bookmarks"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed bookmarks")
	clearData := flag.Bool("clear-data", false, "Delete all folders and bookmarks (keep schema)")
	seedFile := flag.String("file", "", "YAML seed file (defaults to the built-in sample tree)")
	resolveIcons := flag.Bool("favicons", false, "Resolve favicons for seeded bookmarks (network access)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer closeLog()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, driver: %s)", cfg.Environment, cfg.Database.Driver)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, driver: %s)", cfg.Environment, cfg.Database.Driver)
	default:
		log.Printf("🌱 Seeding database (environment: %s, driver: %s)", cfg.Environment, cfg.Database.Driver)
	}

	// Parse the seed before touching the database
	var file *seed.File
	if !*schemaOnly && !*clearData {
		if *seedFile != "" {
			file, err = seed.LoadFile(*seedFile)
		} else {
			file, err = seed.Default()
		}
		if err != nil {
			log.Fatalf("Invalid seed: %v", err)
		}
	}

	ctx := context.Background()

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := repository.DropSchema(ctx, cfg.Database); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Opening the store applies the schema
	log.Println("📋 Ensuring database schema is up to date...")
	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	var resolver services.FaviconResolver = noFavicons{}
	if *resolveIcons {
		resolver = favicon.NewResolver(cfg.Favicon, &http.Client{}, logger)
	}
	treeService := bookmarks.NewService(store, resolver, nil, logger)

	log.Println("🧹 Clearing existing folders and bookmarks...")
	deleted, err := seed.Clear(ctx, treeService)
	if err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	log.Printf("✅ Removed %d root folders", deleted)

	if *clearData {
		return
	}

	log.Println("📝 Seeding folders and bookmarks...")
	result, err := seed.Apply(ctx, treeService, file)
	if err != nil {
		log.Fatalf("❌ Seeding stopped after %d folders, %d bookmarks: %v", result.Folders, result.Bookmarks, err)
	}

	log.Printf("🎉 Seeding complete! (%d folders, %d bookmarks)", result.Folders, result.Bookmarks)
}
