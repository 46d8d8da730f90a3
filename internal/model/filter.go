package model

// TransactionFilter narrows a transaction list. Zero values match everything.
type TransactionFilter struct {
	SearchQuery string
	Type        TransactionType
	Category    string
	DateRange
}

// SortOption selects a transaction ordering.
type SortOption string

// Supported orderings.
const (
	SortDateDesc   SortOption = "date-desc"
	SortDateAsc    SortOption = "date-asc"
	SortAmountDesc SortOption = "amount-desc"
	SortAmountAsc  SortOption = "amount-asc"
)
