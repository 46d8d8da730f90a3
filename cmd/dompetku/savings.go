package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/dompetku/internal/cli"
	"github.com/Veraticus/dompetku/internal/stats"
)

func savingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Track the monthly savings target",
		Long: `The savings target is a percentage of income. A month reaches the
target when its balance is at least that share of its income.`,
	}

	cmd.AddCommand(showSavingsCmd(a))
	cmd.AddCommand(setSavingsCmd(a))
	return cmd
}

func showSavingsCmd(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show progress against the savings target",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if month == "" {
				month = time.Now().Format("2006-01")
			}
			r, err := monthRange(month)
			if err != nil {
				return err
			}

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			out := cmd.OutOrStdout()
			target, err := l.savings.Get()
			if err != nil {
				return err
			}
			if target == nil {
				fmt.Fprintln(out, cli.FormatInfo("No savings target set. Use 'dompetku savings set <percent>'."))
				return nil
			}

			txs, err := l.transactions.List()
			if err != nil {
				return err
			}
			income := stats.TotalIncome(txs, r)
			balance := stats.Balance(txs, r)

			amount, err := l.savings.CalculateTarget(income)
			if err != nil {
				return err
			}
			reached, err := l.savings.HasReached(balance, income)
			if err != nil {
				return err
			}
			diff, err := l.savings.Difference(balance, income)
			if err != nil {
				return err
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Target:   %s%% of income\n", strconv.FormatFloat(target.Percentage, 'f', -1, 64))
			fmt.Fprintf(&b, "Income:   %s\n", cli.FormatRupiah(income))
			fmt.Fprintf(&b, "Goal:     %s\n", cli.FormatRupiah(amount))
			fmt.Fprintf(&b, "Balance:  %s\n", cli.FormatRupiah(balance))
			if reached {
				fmt.Fprintf(&b, "%s", cli.FormatSuccess(fmt.Sprintf("Reached, %s above the goal", cli.FormatRupiah(diff))))
			} else {
				fmt.Fprintf(&b, "%s", cli.FormatWarning(fmt.Sprintf("%s short of the goal", cli.FormatRupiah(-diff))))
			}

			fmt.Fprintln(out, cli.RenderBox(fmt.Sprintf("%s Tabungan %s", cli.TargetIcon, month), b.String()))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to evaluate (YYYY-MM, default current)")
	return cmd
}

func setSavingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <percent>",
		Short: "Set the savings target as a percentage of income (0-100)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(args[0]), "%"), 64)
			if err != nil {
				return fmt.Errorf("invalid percentage %q", args[0])
			}

			l, err := a.openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			target, err := l.savings.Set(pct)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Savings target set to %s%%",
				strconv.FormatFloat(target.Percentage, 'f', -1, 64))))
			return nil
		},
	}
}
