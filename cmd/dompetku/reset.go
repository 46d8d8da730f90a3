package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/cli"
)

func resetCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all stored data",
		Long: `Reset removes every transaction, category and the savings target.
Default categories are seeded again on next use.

This is a destructive operation. Export a backup first if you may want the
data back.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			out := cmd.OutOrStdout()
			keys := l.client.Keys()
			if len(keys) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Nothing stored. Nothing to reset."))
				return nil
			}

			if !force {
				txs, err := l.transactions.List()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "This will delete %d transaction(s) and %d stored key(s), %d bytes in total.\n",
					len(txs), len(keys), l.client.Size())

				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Are you sure you want to continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Reset cancelled.")
					return nil
				}
			}

			if err := l.client.ClearAll(); err != nil {
				return fmt.Errorf("failed to reset data: %w", err)
			}

			slog.Info("reset all data", "keys", len(keys))
			fmt.Fprintln(out, cli.FormatSuccess("All data deleted"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
