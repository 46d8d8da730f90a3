package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/stats"
)

func transactionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx", "txn"},
		Short:   "Manage income and expense transactions",
	}

	cmd.AddCommand(listTransactionsCmd(a))
	cmd.AddCommand(addTransactionCmd(a))
	cmd.AddCommand(updateTransactionCmd(a))
	cmd.AddCommand(deleteTransactionCmd(a))
	cmd.AddCommand(clearTransactionsCmd(a))

	return cmd
}

// rangeFlags holds the shared --month/--from/--to flags.
type rangeFlags struct {
	month string
	from  string
	to    string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.month, "month", "", "limit to a month (YYYY-MM)")
	cmd.Flags().StringVar(&r.from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.to, "to", "", "end date (YYYY-MM-DD)")
	cmd.MarkFlagsMutuallyExclusive("month", "from")
	cmd.MarkFlagsMutuallyExclusive("month", "to")
}

func (r *rangeFlags) resolve() (model.DateRange, error) {
	if r.month != "" {
		return monthRange(r.month)
	}
	for _, d := range []string{r.from, r.to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, d); err != nil {
			return model.DateRange{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", d)
		}
	}
	return model.DateRange{From: r.from, To: r.to}, nil
}

func listTransactionsCmd(a *app) *cobra.Command {
	var (
		search   string
		typ      string
		category string
		sortBy   string
		limit    int
		dates    rangeFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long: `List transactions, newest first by default.

Examples:
  dompetku tx list --month 2024-02
  dompetku tx list --search kopi --sort amount-desc
  dompetku tx list --type income --from 2024-01-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			option, ok := stats.ParseSortOption(sortBy)
			if !ok {
				return fmt.Errorf("unknown sort option %q", sortBy)
			}
			r, err := dates.resolve()
			if err != nil {
				return err
			}

			filter := model.TransactionFilter{SearchQuery: search, Category: category, DateRange: r}
			if typ != "" {
				if filter.Type, err = parseType(typ); err != nil {
					return err
				}
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

			txs := stats.Sort(stats.Filter(all, filter), option)
			out := cmd.OutOrStdout()
			if len(txs) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No transactions found"))
				return nil
			}

			shown := txs
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Amount"),
				cli.TableHeaderStyle.Render("ID"))
			for _, tx := range shown {
				name := tx.Name
				if tx.Note != "" {
					name += cli.SubtleStyle.Render(" · " + tx.Note)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					tx.Date, name, tx.Category, cli.FormatSigned(tx.Amount, tx.Type), cli.SubtleStyle.Render(tx.ID))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			summary := stats.Compute(txs)
			fmt.Fprintf(out, "\n%d of %d transaction(s)  %s %s  %s %s\n",
				len(shown), len(txs),
				cli.IncomeStyle.Render("in"), cli.FormatRupiah(summary.TotalIncome),
				cli.ExpenseStyle.Render("out"), cli.FormatRupiah(summary.TotalExpense))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "search name, note and category")
	cmd.Flags().StringVar(&typ, "type", "", "income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "exact category name")
	cmd.Flags().StringVar(&sortBy, "sort", string(model.SortDateDesc), "date-desc, date-asc, amount-desc or amount-asc")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n transactions (0 for all)")
	dates.register(cmd)
	return cmd
}

func addTransactionCmd(a *app) *cobra.Command {
	var (
		typ      string
		category string
		date     string
		note     string
	)

	cmd := &cobra.Command{
		Use:   "add <name> <amount>",
		Short: "Record a transaction",
		Long: `Record an income or expense. Amounts accept Indonesian grouping.

Examples:
  dompetku tx add "Nasi goreng" 35.000 --category Makanan
  dompetku tx add Gaji 8.500.000 --type income --date 2024-02-25`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			t, err := parseType(typ)
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

			tx, err := l.transactions.Add(model.CreateTransactionInput{
				Name:     args[0],
				Amount:   amount,
				Type:     t,
				Category: category,
				Date:     resolveDate(date, time.Now()),
				Note:     note,
			}, categories)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s on %s (%s)",
				tx.Name, cli.FormatSigned(tx.Amount, tx.Type), tx.Date, tx.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "expense", "income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", model.DefaultCategoryName, "category name")
	cmd.Flags().StringVarP(&date, "date", "d", "today", "date (YYYY-MM-DD, today or yesterday)")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	return cmd
}

func updateTransactionCmd(a *app) *cobra.Command {
	var name, amount, typ, category, date, note string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := model.TransactionPatch{ID: args[0]}
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("amount") {
				v, err := parseAmount(amount)
				if err != nil {
					return err
				}
				patch.Amount = &v
			}
			if flags.Changed("type") {
				t, err := parseType(typ)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("date") {
				d := resolveDate(date, time.Now())
				patch.Date = &d
			}
			if flags.Changed("note") {
				patch.Note = &note
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

			tx, err := l.transactions.Update(patch, categories)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s: %s %s in %s on %s",
				tx.ID, tx.Name, cli.FormatSigned(tx.Amount, tx.Type), tx.Category, tx.Date)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&amount, "amount", "", "new amount")
	cmd.Flags().StringVar(&typ, "type", "", "income or expense")
	cmd.Flags().StringVarP(&category, "category", "c", "", "new category name")
	cmd.Flags().StringVarP(&date, "date", "d", "", "new date")
	cmd.Flags().StringVar(&note, "note", "", "new note (empty clears it)")
	cmd.MarkFlagsOneRequired("name", "amount", "type", "category", "date", "note")
	return cmd
}

func deleteTransactionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id> [id...]",
		Aliases: []string{"rm"},
		Short:   "Delete one or more transactions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				if err := l.transactions.Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess("Deleted transaction "+args[0]))
				return nil
			}

			removed, err := l.transactions.DeleteMany(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d transaction(s)", removed)))
			if missing := len(args) - removed; missing > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d id(s) did not match any transaction", missing)))
			}
			return nil
		},
	}
}

func clearTransactionsCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !force {
				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Delete ALL transactions?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			removed, err := l.transactions.ClearAll()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d transaction(s)", removed)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")
	return cmd
}

