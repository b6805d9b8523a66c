package commands

import (
	"fmt"

	"casaora/config"
	"casaora/database"
	"casaora/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

// withMigrator opens the database, runs fn and closes everything again.
func withMigrator(fn func(m *database.Migrator) error) error {
	db, err := database.Open(config.AppConfig.DatabaseURL, logger.Warn)
	if err != nil {
		return err
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := database.NewMigrator(sqlDB, utils.GetLogger())
	if err != nil {
		return err
	}
	return fn(m)
}

func newSchemaCommand() *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Apply or roll back the embedded SQL migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error { return m.Up() })
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive, got %d", steps)
			}
			return withMigrator(func(m *database.Migrator) error { return m.Down(steps) })
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
				return nil
			})
		},
	}

	schemaCmd.AddCommand(upCmd, downCmd, versionCmd)
	return schemaCmd
}

// InitSchemaCommands registers "schema up|down|version".
func InitSchemaCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newSchemaCommand())
}
