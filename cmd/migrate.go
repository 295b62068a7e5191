package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/pod-digest/migrations"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long:  `Apply or roll back the embedded SQL migrations against DATABASE_URL.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL, err := migrationURL()
		if err != nil {
			return err
		}
		if err := migrations.Up(databaseURL); err != nil {
			return err
		}
		cmd.Println("Migrations applied.")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL, err := migrationURL()
		if err != nil {
			return err
		}
		if err := migrations.Down(databaseURL); err != nil {
			return err
		}
		cmd.Println("Migrations rolled back.")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		databaseURL, err := migrationURL()
		if err != nil {
			return err
		}
		version, dirty, err := migrations.Version(databaseURL)
		if err != nil {
			return err
		}
		if version == 0 {
			cmd.Println("No migrations applied.")
			return nil
		}
		cmd.Printf("Version: %d (dirty: %t)\n", version, dirty)
		return nil
	},
}

func migrationURL() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("database_url is not set")
	}
	return cfg.DatabaseURL, nil
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
