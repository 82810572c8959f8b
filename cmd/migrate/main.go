package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"bookmarkd/internal/config"
	"bookmarkd/internal/repository"
	"bookmarkd/internal/service/bookmarks"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env and the environment
func loadConfig() *config.Config {
	_ = godotenv.Load()
	return config.Load()
}

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Manage the bookmark database schema",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		// Opening a store migrates it to the latest version
		store, err := repository.Open(cmd.Context(), cfg.Database, quietLogger())
		if err != nil {
			return err
		}
		defer store.Close()

		return printStatus(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStatus(cmd.Context(), cmd.OutOrStdout(), loadConfig())
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration (deletes all data)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if cfg.Environment == "prod" {
			return fmt.Errorf("refusing to drop the schema in production")
		}
		if force, _ := cmd.Flags().GetBool("force"); !force {
			return fmt.Errorf("down deletes all bookmarks, pass --force to confirm")
		}

		if err := repository.DropSchema(cmd.Context(), cfg.Database); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema dropped")
		return nil
	},
}

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Rewrite sibling positions to a contiguous 0..n-1 sequence",
	Long: `Renumber groups folders by parent and bookmarks by folder, orders each group
by its current position (then id) and rewrites the positions to 0..n-1.
Use it after importing rows written without position bookkeeping.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		logger := quietLogger()

		store, err := repository.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		// Positions only: no favicon resolution takes place
		svc := bookmarks.NewService(store, nil, nil, logger)
		report, err := svc.RepairPositions(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Renumbered %d folders, %d bookmarks\n", report.Folders, report.Bookmarks)
		return nil
	},
}

func printStatus(ctx context.Context, out io.Writer, cfg *config.Config) error {
	status, err := repository.Status(ctx, cfg.Database)
	if err != nil {
		return err
	}

	driver := cfg.Database.Driver
	if driver == "" {
		driver = repository.DriverSQLite
	}
	fmt.Fprintf(out, "Driver:  %s\n", driver)
	fmt.Fprintf(out, "Version: %d\n", status.Version)
	if status.Dirty {
		fmt.Fprintln(out, "State:   dirty (a migration failed part way, fix and force the version)")
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func init() {
	downCmd.Flags().Bool("force", false, "Confirm dropping all tables")

	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(renumberCmd)
}
