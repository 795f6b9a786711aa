package main

import (
	"database/sql"
	"fmt"
	"os"

	"girlfanz/migrations"
	"girlfanz/pkg/config"
	"girlfanz/pkg/database"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

// createDir is where `create` writes new files; the embedded set is rebuilt from it.
var createDir string

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Apply database migrations",
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: withDB(func(db *sql.DB) error {
		if err := goose.Up(db, "."); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		fmt.Println("Migrations applied successfully")
		return nil
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: withDB(func(db *sql.DB) error {
		if err := goose.Down(db, "."); err != nil {
			return fmt.Errorf("failed to rollback migrations: %w", err)
		}
		fmt.Println("Migrations rolled back successfully")
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: withDB(func(db *sql.DB) error {
		return goose.Status(db, ".")
	}),
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new SQL migration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create writes to disk, so it must not use the embedded FS.
		goose.SetBaseFS(nil)
		if err := goose.Create(nil, createDir, args[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createDir, "dir", "migrations", "directory for new migration files")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd, createCmd)
}

func withDB(run func(db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := sql.Open("postgres", database.DSN(cfg))
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}
		return run(db)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
