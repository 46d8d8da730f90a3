package model

import "time"

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	// TransactionTypeIncome represents money received.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense represents money spent.
	TransactionTypeExpense TransactionType = "expense"
)

// DateLayout is the canonical calendar-day format used for transaction dates.
const DateLayout = "2006-01-02"

// Transaction represents a single dated income or expense entry.
// Category references a Category by name, not by ID.
type Transaction struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Category  string          `json:"category"`
	Date      string          `json:"date"`
	Note      string          `json:"note,omitempty"`
	Amount    float64         `json:"amount"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
}

// Month returns the YYYY-MM bucket key of the transaction date.
func (t *Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// IsIncome reports whether the transaction is income.
func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// CreateTransactionInput holds the user-supplied fields of a new transaction.
type CreateTransactionInput struct {
	Name     string          `json:"name"`
	Type     TransactionType `json:"type"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Note     string          `json:"note,omitempty"`
	Amount   float64         `json:"amount"`
}

// Timestamp converts a time into the epoch-millisecond form stored on records.
func Timestamp(t time.Time) int64 {
	return t.UnixMilli()
}
