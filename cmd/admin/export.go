package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/domain/importexport"
	"fintrack/internal/domain/transaction"
)

func newExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export user data",
	}

	var userID int64
	var format string
	var out string

	txCmd := &cobra.Command{
		Use:     "transactions",
		Short:   "Export every transaction of a user",
		Example: `  admin export transactions --user-id=1 --format=json --out=tx.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("format must be csv or json (got %q)", format)
			}
			if userID <= 0 {
				return fmt.Errorf("invalid user ID %d", userID)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			txns, err := a.transactions.ExportTransactions(ctx, userID, transaction.Filter{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			if err := writeTransactions(w, format, txns); err != nil {
				return err
			}
			a.log.Info("transactions exported", "user_id", userID, "count", len(txns), "format", format)
			return nil
		},
	}

	txCmd.Flags().Int64Var(&userID, "user-id", 0, "user whose transactions are exported (required)")
	_ = txCmd.MarkFlagRequired("user-id")
	txCmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	txCmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")

	cmd.AddCommand(txCmd)
	return cmd
}

func writeTransactions(w io.Writer, format string, txns []*transaction.Transaction) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(txns)
	}
	return importexport.WriteTransactionsCSV(w, txns)
}
