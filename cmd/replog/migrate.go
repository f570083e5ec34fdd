package main

import (
	"errors"

	"github.com/claude/replog/internal/storage"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cfg.Database.Enabled() {
			return errors.New("migrate: database.host is not configured")
		}
		dir, _ := cmd.Flags().GetString("dir")
		if err := storage.RunMigrations(cfg.Database.DSN(), dir); err != nil {
			return err
		}
		log.Info("migrations applied", "dir", dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("dir", "migrations", "directory containing migration files")
}
