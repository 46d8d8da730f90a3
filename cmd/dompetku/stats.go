package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/stats"
)

func statsCmd(a *app) *cobra.Command {
	var (
		dates   rangeFlags
		top     int
		daily   bool
		monthly bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show income, expense and balance",
		Long: `Summarize transactions: totals, balance, the biggest expense categories
and, optionally, daily or monthly breakdowns.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := dates.resolve()
			if err != nil {
				return err
			}

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			all, err := l.transactions.List()
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			summary := stats.ComputeRange(all, r)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s Ringkasan %s", cli.ChartIcon, describeRange(r))))
			printSummary(out, summary)

			ranked := stats.TopExpenseCategories(filterRange(all, r), top)
			if len(ranked) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.BoldStyle.Render("Top expense categories"))
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for i, ct := range ranked {
					share := 0.0
					if summary.TotalExpense > 0 {
						share = ct.Total / summary.TotalExpense * 100
					}
					fmt.Fprintf(w, "%d.\t%s\t%s\t%5.1f%%\n", i+1, ct.Category, cli.FormatRupiah(ct.Total), share)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}

			if daily {
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.BoldStyle.Render("Daily expenses"))
				if err := printSeries(out, summary.DailyExpenses, nil); err != nil {
					return err
				}
			}
			if monthly {
				fmt.Fprintln(out)
				fmt.Fprintln(out, cli.BoldStyle.Render("Monthly"))
				if err := printSeries(out, summary.MonthlyIncome, summary.MonthlyExpense); err != nil {
					return err
				}
			}
			return nil
		},
	}

	dates.register(cmd)
	cmd.Flags().IntVar(&top, "top", stats.DefaultTopCategories, "number of expense categories to rank")
	cmd.Flags().BoolVar(&daily, "daily", false, "show expenses per day")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "show income and expense per month")
	return cmd
}

func printSummary(out io.Writer, s model.Summary) {
	balance := cli.IncomeStyle.Render(cli.FormatRupiah(s.Balance))
	if s.Balance < 0 {
		balance = cli.ExpenseStyle.Render(cli.FormatRupiah(s.Balance))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Income\t%s\t%s\n", cli.IncomeStyle.Render(cli.FormatRupiah(s.TotalIncome)),
		cli.SubtleStyle.Render(fmt.Sprintf("%d transaction(s)", s.IncomeCount)))
	fmt.Fprintf(w, "Expense\t%s\t%s\n", cli.ExpenseStyle.Render(cli.FormatRupiah(s.TotalExpense)),
		cli.SubtleStyle.Render(fmt.Sprintf("%d transaction(s)", s.ExpenseCount)))
	fmt.Fprintf(w, "Balance\t%s\t\n", balance)
	_ = w.Flush()
}

// printSeries prints one row per key in ascending order. A nil second series
// prints a single column.
func printSeries(out io.Writer, first, second map[string]float64) error {
	keys := make([]string, 0, len(first)+len(second))
	seen := make(map[string]bool)
	for _, m := range []map[string]float64{first, second} {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		if second == nil {
			fmt.Fprintf(w, "%s\t%s\n", k, cli.FormatRupiah(first[k]))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", k,
			cli.IncomeStyle.Render("+"+cli.FormatRupiah(first[k])),
			cli.ExpenseStyle.Render("-"+cli.FormatRupiah(second[k])))
	}
	return w.Flush()
}

func filterRange(txs []model.Transaction, r model.DateRange) []model.Transaction {
	return stats.Filter(txs, model.TransactionFilter{DateRange: r})
}

func describeRange(r model.DateRange) string {
	switch {
	case r.From == "" && r.To == "":
		return "semua waktu"
	case r.From != "" && r.To != "":
		if len(r.From) >= 7 {
			if month, err := monthRange(r.From[:7]); err == nil && month == r {
				return r.From[:7]
			}
		}
		return r.From + " s/d " + r.To
	case r.From != "":
		return "sejak " + r.From
	default:
		return "sampai " + r.To
	}
}
