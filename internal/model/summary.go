package model

// Summary holds statistics derived from a set of transactions.
type Summary struct {
	ExpenseByCategory map[string]float64 `json:"expenseByCategory"`
	DailyExpenses     map[string]float64 `json:"dailyExpenses"`
	MonthlyIncome     map[string]float64 `json:"monthlyIncome"`
	MonthlyExpense    map[string]float64 `json:"monthlyExpense"`
	TotalIncome       float64            `json:"totalIncome"`
	TotalExpense      float64            `json:"totalExpense"`
	Balance           float64            `json:"balance"`
	TransactionCount  int                `json:"transactionCount"`
	IncomeCount       int                `json:"incomeCount"`
	ExpenseCount      int                `json:"expenseCount"`
}

// CategoryTotal pairs a category name with its summed expense.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// DateRange bounds a query by inclusive YYYY-MM-DD dates. Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// Contains reports whether date falls within the range.
// Canonical dates compare correctly as strings.
func (r DateRange) Contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}
