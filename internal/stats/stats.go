// Package stats derives summary figures from a transaction snapshot.
// Every function is pure; callers recompute on each read.
package stats

import (
	"sort"

	"github.com/Veraticus/dompetku/internal/model"
)

// DefaultTopCategories is the TopExpenseCategories limit used by the CLI.
const DefaultTopCategories = 5

// Compute aggregates txs in a single pass.
func Compute(txs []model.Transaction) model.Summary {
	summary := model.Summary{
		ExpenseByCategory: make(map[string]float64),
		DailyExpenses:     make(map[string]float64),
		MonthlyIncome:     make(map[string]float64),
		MonthlyExpense:    make(map[string]float64),
		TransactionCount:  len(txs),
	}

	for i := range txs {
		tx := &txs[i]
		month := tx.Month()

		if tx.IsIncome() {
			summary.TotalIncome += tx.Amount
			summary.IncomeCount++
			summary.MonthlyIncome[month] += tx.Amount
			continue
		}

		summary.TotalExpense += tx.Amount
		summary.ExpenseCount++
		summary.ExpenseByCategory[tx.Category] += tx.Amount
		summary.DailyExpenses[tx.Date] += tx.Amount
		summary.MonthlyExpense[month] += tx.Amount
	}

	summary.Balance = summary.TotalIncome - summary.TotalExpense
	return summary
}

// ComputeRange is Compute over the transactions dated within r.
func ComputeRange(txs []model.Transaction, r model.DateRange) model.Summary {
	return Compute(inRange(txs, r))
}

func inRange(txs []model.Transaction, r model.DateRange) []model.Transaction {
	if r.From == "" && r.To == "" {
		return txs
	}
	filtered := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if r.Contains(tx.Date) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

func sumType(txs []model.Transaction, t model.TransactionType, r model.DateRange) float64 {
	var total float64
	for _, tx := range txs {
		if tx.Type == t && r.Contains(tx.Date) {
			total += tx.Amount
		}
	}
	return total
}

// TotalIncome sums income dated within r.
func TotalIncome(txs []model.Transaction, r model.DateRange) float64 {
	return sumType(txs, model.TransactionTypeIncome, r)
}

// TotalExpense sums expenses dated within r.
func TotalExpense(txs []model.Transaction, r model.DateRange) float64 {
	return sumType(txs, model.TransactionTypeExpense, r)
}

// Balance is income minus expense within r.
func Balance(txs []model.Transaction, r model.DateRange) float64 {
	return TotalIncome(txs, r) - TotalExpense(txs, r)
}

// ExpenseByCategory groups expenses within r by category name.
func ExpenseByCategory(txs []model.Transaction, r model.DateRange) map[string]float64 {
	result := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type == model.TransactionTypeExpense && r.Contains(tx.Date) {
			result[tx.Category] += tx.Amount
		}
	}
	return result
}

// DailyExpenses groups expenses within r by date.
func DailyExpenses(txs []model.Transaction, r model.DateRange) map[string]float64 {
	result := make(map[string]float64)
	for _, tx := range txs {
		if tx.Type == model.TransactionTypeExpense && r.Contains(tx.Date) {
			result[tx.Date] += tx.Amount
		}
	}
	return result
}

// MonthlyAggregation groups income and expense by YYYY-MM.
func MonthlyAggregation(txs []model.Transaction) (income, expense map[string]float64) {
	income = make(map[string]float64)
	expense = make(map[string]float64)
	for i := range txs {
		tx := &txs[i]
		if tx.IsIncome() {
			income[tx.Month()] += tx.Amount
		} else {
			expense[tx.Month()] += tx.Amount
		}
	}
	return income, expense
}

// CategoryTotals is a ranking of expense per category.
type CategoryTotals []model.CategoryTotal

// Len implements sort.Interface.
func (c CategoryTotals) Len() int {
	return len(c)
}

// Less implements sort.Interface. Larger totals come first.
func (c CategoryTotals) Less(i, j int) bool {
	if c[i].Total != c[j].Total {
		return c[i].Total > c[j].Total
	}
	return c[i].Category < c[j].Category
}

// Swap implements sort.Interface.
func (c CategoryTotals) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

// TopExpenseCategories returns up to limit categories by total expense,
// largest first. Ties are ordered by name.
func TopExpenseCategories(txs []model.Transaction, limit int) CategoryTotals {
	if limit <= 0 {
		return CategoryTotals{}
	}

	byCategory := ExpenseByCategory(txs, model.DateRange{})
	totals := make(CategoryTotals, 0, len(byCategory))
	for name, total := range byCategory {
		totals = append(totals, model.CategoryTotal{Category: name, Total: total})
	}
	sort.Sort(totals)

	if len(totals) > limit {
		totals = totals[:limit]
	}
	return totals
}
