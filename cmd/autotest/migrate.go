package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-autotest/database"
	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration commands",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(func(cfg *Config, db migrationDB) error {
			if err := database.RunMigrations(db.sql, cfg.Database.Driver, db.logger); err != nil {
				return err
			}
			fmt.Println("Migrations applied successfully")
			return nil
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Rollback the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(func(cfg *Config, db migrationDB) error {
			if err := database.RollbackMigration(db.sql, cfg.Database.Driver, db.logger); err != nil {
				return err
			}
			fmt.Println("Migration rolled back successfully")
			return nil
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the applied schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrationDB(func(cfg *Config, db migrationDB) error {
			version, dirty, err := database.Version(db.sql, cfg.Database.Driver)
			if err != nil {
				return err
			}
			fmt.Printf("Schema version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

type migrationDB struct {
	sql    *sql.DB
	logger logger.Logger
}

func withMigrationDB(fn func(cfg *Config, db migrationDB) error) error {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg.Database.Config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	conn, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer conn.Close()

	return fn(cfg, migrationDB{sql: conn, logger: logger.NewLogrusLogger(cfg.Log.Level)})
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
