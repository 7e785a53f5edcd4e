package main

import (
	"github.com/spf13/cobra"

	"github.com/specklesystems/speckle-automate-checker/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "speckle-checker",
	Short:         "Validate Speckle model objects against a tabular rule sheet.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		structured := commandUsesStructuredLogging(cmd)
		setCommandExecutionContext(commandExecutionContext{
			CommandPath:       cmd.CommandPath(),
			UsesStructuredLog: structured,
		})
		if !structured {
			return nil
		}
		_, err := logging.BootstrapFromEnv(logging.BootstrapOptions{Command: cmd.CommandPath()})
		return err
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd, serveCmd, validateRulesCmd, migrateCmd, tokenCmd)
}
