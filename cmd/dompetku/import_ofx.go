package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/config"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/ofx"
)

func importOFXCmd(a *app) *cobra.Command {
	var (
		category string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx <files...>",
		Short: "Import transactions from OFX/QFX bank statements",
		Long: `Import statement lines from OFX or QFX files exported by your bank.
Debits become expenses and credits become income. Lines already imported
from an earlier statement are skipped.

Examples:
  dompetku import-ofx ~/Downloads/bca_2024-02.ofx
  dompetku import-ofx ~/Downloads/*.qfx --category Belanja`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			categories, err := l.categories.List()
			if err != nil {
				return err
			}
			if model.FindCategoryByName(categories, category) == nil {
				return fmt.Errorf("category %q does not exist", category)
			}

			existing, err := l.transactions.List()
			if err != nil {
				return err
			}
			seen := make(map[string]bool, len(existing))
			for _, tx := range existing {
				if strings.HasPrefix(tx.Note, "FITID ") {
					seen[tx.Note] = true
				}
			}

			parser := ofx.NewParser(category)
			out := cmd.OutOrStdout()
			var added, skipped, failed int

			for _, path := range files {
				inputs, err := parseStatement(cmd, parser, path)
				if err != nil {
					slog.Error("failed to parse OFX file", "file", path, "error", err)
					failed++
					continue
				}
				if len(inputs) == 0 {
					slog.Warn("no transactions found in file", "file", filepath.Base(path))
					continue
				}

				bar := cli.NewProgress(cmd.ErrOrStderr(), len(inputs), filepath.Base(path))
				for _, input := range inputs {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					cli.Step(bar)

					if input.Note != "" && seen[input.Note] {
						skipped++
						continue
					}
					seen[input.Note] = true

					if dryRun {
						added++
						continue
					}
					if _, err := l.transactions.Add(input, categories); err != nil {
						slog.Warn("failed to import statement line", "file", path, "name", input.Name, "error", err)
						failed++
						continue
					}
					added++
				}
			}

			verb := "Imported"
			if dryRun {
				verb = "Would import"
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%s %d transaction(s) from %d file(s)", verb, added, len(files))))
			if skipped > 0 {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Skipped %d already imported line(s)", skipped)))
			}
			if failed > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d line(s) or file(s) failed, see log for details", failed)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", model.DefaultCategoryName, "category for imported transactions")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without saving")
	return cmd
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.CreateTransactionInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close OFX file", "file", path, "error", cerr)
		}
	}()
	return parser.Parse(cmd.Context(), f)
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("no files found matching pattern", "pattern", pattern)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}
