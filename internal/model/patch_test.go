package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyTransactionPatch(t *testing.T) {
	existing := Transaction{
		ID:        "1706400000000_abc",
		Name:      "Makan Siang",
		Amount:    35000,
		Type:      TransactionTypeExpense,
		Category:  "Makanan",
		Date:      "2024-01-28",
		Note:      "warteg",
		CreatedAt: 100,
		UpdatedAt: 100,
	}

	tests := []struct {
		name  string
		patch TransactionPatch
		want  Transaction
	}{
		{
			name:  "empty patch only refreshes updatedAt",
			patch: TransactionPatch{ID: existing.ID},
			want: func() Transaction {
				tx := existing
				tx.UpdatedAt = 200
				return tx
			}(),
		},
		{
			name:  "name is trimmed and amount replaced",
			patch: TransactionPatch{ID: existing.ID, Name: Ptr("  Makan Malam "), Amount: Ptr(50000.0)},
			want: func() Transaction {
				tx := existing
				tx.Name = "Makan Malam"
				tx.Amount = 50000
				tx.UpdatedAt = 200
				return tx
			}(),
		},
		{
			name:  "blank note clears the note",
			patch: TransactionPatch{ID: existing.ID, Note: Ptr("   ")},
			want: func() Transaction {
				tx := existing
				tx.Note = ""
				tx.UpdatedAt = 200
				return tx
			}(),
		},
		{
			name:  "patch id never overrides record id",
			patch: TransactionPatch{ID: "other", Category: Ptr("Transport")},
			want: func() Transaction {
				tx := existing
				tx.Category = "Transport"
				tx.UpdatedAt = 200
				return tx
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyTransactionPatch(existing, tt.patch, 200)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, existing.CreatedAt, got.CreatedAt)
		})
	}
}

func TestApplyCategoryPatch(t *testing.T) {
	existing := Category{ID: "c1", Name: "Makanan", Color: "#4F46E5", CreatedAt: 10}

	got := ApplyCategoryPatch(existing, CategoryPatch{ID: "c1", Name: Ptr(" Kuliner "), Icon: Ptr("utensils")})
	assert.Equal(t, Category{ID: "c1", Name: "Kuliner", Color: "#4F46E5", Icon: "utensils", CreatedAt: 10}, got)

	assert.True(t, CategoryPatch{Name: Ptr("Kuliner")}.RenamesCategory(existing))
	assert.False(t, CategoryPatch{Name: Ptr(" Makanan ")}.RenamesCategory(existing))
	assert.False(t, CategoryPatch{Color: Ptr("#000")}.RenamesCategory(existing))
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{From: "2024-01-01", To: "2024-01-31"}
	assert.True(t, r.Contains("2024-01-01"))
	assert.True(t, r.Contains("2024-01-31"))
	assert.False(t, r.Contains("2023-12-31"))
	assert.False(t, r.Contains("2024-02-01"))
	assert.True(t, DateRange{}.Contains("1999-05-05"))
}

func TestTransaction_Month(t *testing.T) {
	tx := Transaction{Date: "2024-01-28"}
	assert.Equal(t, "2024-01", tx.Month())
}
