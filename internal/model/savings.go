package model

// SavingsTarget is the monthly savings goal expressed as a share of income.
type SavingsTarget struct {
	Percentage float64 `json:"percentage"`
	UpdatedAt  int64   `json:"updatedAt"`
}
