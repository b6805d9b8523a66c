// Package main is the operator CLI: schema migrations and the help-center
// export to Sanity.
package main

import (
	"fmt"
	"log"
	"os"

	"casaora/cmd/casaora-cli/internal/commands"
	"casaora/config"
	"casaora/utils"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "casaora-cli",
		Short: "Casaora operations CLI",
		Long: `casaora-cli runs maintenance tasks against the Casaora database.

Configuration is read the same way as the API server (config.yaml or
environment variables), in particular DATABASE_URL and the SANITY_* keys.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			utils.InitializeLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.Sync()
		},
	}

	commands.InitSchemaCommands(rootCmd)
	commands.InitHelpCenterCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}
	return nil
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stderr)
}
