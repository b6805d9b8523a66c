package commands

import (
	"encoding/json"
	"fmt"

	"casaora/config"
	"casaora/database"
	helpRepo "casaora/database/repository/help"
	"casaora/services/helpcenter"
	"casaora/services/sanity"
	"casaora/utils"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"
)

func sanityConfig() sanity.Config {
	cfg := config.AppConfig
	return sanity.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		Token:      cfg.SanityToken,
	}
}

func newHelpCenterCommand() *cobra.Command {
	helpCmd := &cobra.Command{
		Use:   "help-center",
		Short: "Help-center content tools",
	}

	var dryRun bool
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy help categories and articles from Postgres into Sanity",
		Long: `migrate writes one Sanity document per row and locale
(helpCategory-{slug}-{en|es}, helpArticle-{slug}-{en|es}). Documents are
written with createOrReplace, so the command is safe to rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var writer sanity.Writer
			if !dryRun {
				client, err := sanity.NewClient(sanityConfig(), nil)
				if err != nil {
					return err
				}
				writer = client
			}

			db, err := database.Open(config.AppConfig.DatabaseURL, logger.Warn)
			if err != nil {
				return err
			}
			defer database.Close(db)

			m := helpcenter.NewMigrator(helpRepo.NewGormHelpRepo(db), writer, utils.GetLogger(), dryRun)
			sum, err := m.Run(cmd.Context())
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(sum, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if sum.Failed > 0 {
				return fmt.Errorf("%d documents failed to migrate", sum.Failed)
			}
			return nil
		},
	}
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "build documents without writing them")

	helpCmd.AddCommand(migrateCmd)
	return helpCmd
}

// InitHelpCenterCommands registers "help-center migrate".
func InitHelpCenterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newHelpCenterCommand())
}
