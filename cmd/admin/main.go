// Command admin runs maintenance tasks against the fintrack database.
package main

import (
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Management commands for the fintrack API",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().Duration("timeout", defaultTimeout, "timeout for the whole operation (e.g. 5m, 1h)")

	rootCmd.AddCommand(
		newMigrateCommand(),
		newRecurringCommand(),
		newBudgetsCommand(),
		newDuplicatesCommand(),
		newExportCommand(),
	)

	return rootCmd
}
