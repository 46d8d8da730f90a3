// Package validation holds the stateless checks that gate every ledger mutation.
// Each function returns a *common.ValidationError describing the first
// violation it finds, or nil.
package validation

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/model"
)

// Field limits.
const (
	MinTransactionNameLength = 2
	MaxTransactionNameLength = 100
	MinCategoryNameLength    = 2
	MaxCategoryNameLength    = 50
	MaxNoteLength            = 500
	MaxAmount                = 999_999_999_999
	MaxFutureYears           = 10
)

var (
	dateRegex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hexColorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
)

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// TransactionName checks the trimmed name length.
func TransactionName(name string) error {
	n := length(strings.TrimSpace(name))
	if n < MinTransactionNameLength {
		return common.NewValidationError("transaction name must be at least %d characters", MinTransactionNameLength)
	}
	if n > MaxTransactionNameLength {
		return common.NewValidationError("transaction name must be at most %d characters", MaxTransactionNameLength)
	}
	return nil
}

// Amount checks that amount is a finite number in (0, MaxAmount].
func Amount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return common.NewValidationError("amount must be a number")
	}
	if amount <= 0 {
		return common.NewValidationError("amount must be greater than 0")
	}
	if amount > MaxAmount {
		return common.NewValidationError("amount too large (maximum 999,999,999,999)")
	}
	return nil
}

// TransactionType checks enum membership.
func TransactionType(t model.TransactionType) error {
	switch t {
	case model.TransactionTypeIncome, model.TransactionTypeExpense:
		return nil
	default:
		return common.NewValidationError("transaction type must be 'income' or 'expense', got %q", t)
	}
}

// Date checks a YYYY-MM-DD calendar date against the current time.
func Date(date string) error {
	return DateAt(date, time.Now())
}

// DateAt checks a YYYY-MM-DD calendar date that must not be more than
// MaxFutureYears after now.
func DateAt(date string, now time.Time) error {
	if date == "" {
		return common.NewValidationError("date is required")
	}
	if !dateRegex.MatchString(date) {
		return common.NewValidationError("invalid date format %q, use YYYY-MM-DD", date)
	}

	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return common.NewValidationError("invalid date %q", date)
	}

	if parsed.After(now.AddDate(MaxFutureYears, 0, 0)) {
		return common.NewValidationError("date cannot be more than %d years in the future", MaxFutureYears)
	}
	return nil
}

// CategoryName checks the trimmed category name length.
func CategoryName(name string) error {
	n := length(strings.TrimSpace(name))
	if n < MinCategoryNameLength {
		return common.NewValidationError("category name must be at least %d characters", MinCategoryNameLength)
	}
	if n > MaxCategoryNameLength {
		return common.NewValidationError("category name must be at most %d characters", MaxCategoryNameLength)
	}
	return nil
}

// Color checks an optional hex color. Empty means unset.
func Color(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return common.NewValidationError("invalid color %q, use hex format (#RRGGBB)", color)
	}
	return nil
}

// Note checks an optional note length.
func Note(note string) error {
	if length(note) > MaxNoteLength {
		return common.NewValidationError("note must be at most %d characters", MaxNoteLength)
	}
	return nil
}

// Percentage checks a savings percentage in [0, 100].
func Percentage(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return common.NewValidationError("percentage must be a number")
	}
	if p < 0 || p > 100 {
		return common.NewValidationError("percentage must be between 0 and 100")
	}
	return nil
}

// CategoryExists checks that name matches one of the available categories exactly.
func CategoryExists(name string, available []model.Category) error {
	if model.FindCategoryByName(available, name) == nil {
		return common.NewValidationError("category '%s' not found, create it first", name)
	}
	return nil
}

// CreateTransactionInput checks every field of a new transaction.
func CreateTransactionInput(input model.CreateTransactionInput, available []model.Category) error {
	if err := TransactionName(input.Name); err != nil {
		return err
	}
	if err := Amount(input.Amount); err != nil {
		return err
	}
	if err := TransactionType(input.Type); err != nil {
		return err
	}
	if err := Date(input.Date); err != nil {
		return err
	}
	if err := CategoryExists(input.Category, available); err != nil {
		return err
	}
	return Note(input.Note)
}

// Transaction checks a complete transaction record.
func Transaction(tx model.Transaction, available []model.Category) error {
	if strings.TrimSpace(tx.ID) == "" {
		return common.NewValidationError("transaction ID is invalid")
	}

	input := model.CreateTransactionInput{
		Name:     tx.Name,
		Amount:   tx.Amount,
		Type:     tx.Type,
		Category: tx.Category,
		Date:     tx.Date,
		Note:     tx.Note,
	}
	if err := CreateTransactionInput(input, available); err != nil {
		return err
	}

	if tx.CreatedAt <= 0 {
		return common.NewValidationError("createdAt is invalid")
	}
	if tx.UpdatedAt <= 0 {
		return common.NewValidationError("updatedAt is invalid")
	}
	return nil
}

// CreateCategoryInput checks a new category.
func CreateCategoryInput(input model.CreateCategoryInput) error {
	if err := CategoryName(input.Name); err != nil {
		return err
	}
	return Color(input.Color)
}
