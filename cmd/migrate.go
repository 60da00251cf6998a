package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/backstage/services/cylinder/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Runs database migrations to ensure the database schema
is up-to-date. This is useful for CI/CD pipelines or initial setup.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log.Info().Msg("Connecting to database...")
	gdb, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}

	log.Info().Msg("Running database migrations...")
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
