package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/backup"
	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/config"
)

func exportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON backup of all transactions and categories",
		Long: `Export every transaction and category to a JSON backup file.
The file defaults to ` + backup.DefaultFilename + ` in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := backup.DefaultFilename
			if len(args) == 1 {
				path = config.ExpandPath(args[0])
			}
			if err := config.EnsureDir(path); err != nil {
				return err
			}

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			doc, err := l.backup.ExportSnapshot()
			if err != nil {
				return err
			}
			if err := l.backup.ExportToFile(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transaction(s) and %d categories to %s",
				len(doc.Transactions), len(doc.Categories), path)))
			return nil
		},
	}
}

func importCmd(a *app) *cobra.Command {
	var merge bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a JSON backup",
		Long: `Restore transactions and categories from a JSON backup.

By default the backup replaces everything stored. With --merge, categories
are added by name and transactions by id, keeping what is already there.
Nothing is written if the backup fails validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(args[0])

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			result, err := l.backup.ImportFile(cmd.Context(), path, !merge)
			if err != nil {
				return err
			}

			slog.Debug("backup restored", "file", path, "merge", merge)
			mode := "Replaced data with"
			if merge {
				mode = "Merged"
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s %d transaction(s) and %d categories from %s",
				mode, result.TransactionsCount, result.CategoriesCount, path)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&merge, "merge", false, "merge into existing data instead of replacing it")
	return cmd
}
