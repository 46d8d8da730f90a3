package model

import "strings"

// TransactionPatch carries a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Name     *string
	Amount   *float64
	Type     *TransactionType
	Category *string
	Date     *string
	Note     *string
	ID       string
}

// CategoryPatch carries a partial category update. Nil fields are left unchanged.
type CategoryPatch struct {
	Name  *string
	Color *string
	Icon  *string
	ID    string
}

// ApplyTransactionPatch merges patch over existing and stamps updatedAt.
// ID and CreatedAt are never taken from the patch. A note that trims to
// empty clears the note.
func ApplyTransactionPatch(existing Transaction, patch TransactionPatch, updatedAt int64) Transaction {
	merged := existing
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Amount != nil {
		merged.Amount = *patch.Amount
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Note != nil {
		merged.Note = strings.TrimSpace(*patch.Note)
	}
	merged.UpdatedAt = updatedAt
	return merged
}

// ApplyCategoryPatch merges patch over existing.
func ApplyCategoryPatch(existing Category, patch CategoryPatch) Category {
	merged := existing
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Color != nil {
		merged.Color = *patch.Color
	}
	if patch.Icon != nil {
		merged.Icon = *patch.Icon
	}
	return merged
}

// RenamesCategory reports whether the patch changes the name of existing.
func (p CategoryPatch) RenamesCategory(existing Category) bool {
	return p.Name != nil && strings.TrimSpace(*p.Name) != existing.Name
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
