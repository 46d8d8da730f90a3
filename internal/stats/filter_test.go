package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/dompetku/internal/model"
)

func ids(txs []model.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	noted := tx("6", model.TransactionTypeExpense, 12000, "Belanja", "2024-02-11")
	noted.Note = "Kopi di pasar"
	txs := append(append([]model.Transaction{}, sample...), noted)

	tests := []struct {
		name   string
		filter model.TransactionFilter
		want   []string
	}{
		{"no criteria", model.TransactionFilter{}, []string{"1", "2", "3", "4", "5", "6"}},
		{"type", model.TransactionFilter{Type: model.TransactionTypeIncome}, []string{"1", "4"}},
		{"category", model.TransactionFilter{Category: "Makanan"}, []string{"2", "5"}},
		{"search by name", model.TransactionFilter{SearchQuery: "TX 3"}, []string{"3"}},
		{"search by note", model.TransactionFilter{SearchQuery: "  kopi "}, []string{"6"}},
		{"search by category", model.TransactionFilter{SearchQuery: "transp"}, []string{"3"}},
		{"date range", model.TransactionFilter{DateRange: model.DateRange{From: "2024-01-02", To: "2024-02-10"}}, []string{"3", "4", "5"}},
		{
			"combined",
			model.TransactionFilter{Type: model.TransactionTypeExpense, DateRange: model.DateRange{To: "2024-01-31"}},
			[]string{"2", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(txs, tt.filter)))
		})
	}
}

func TestSort(t *testing.T) {
	a := tx("a", model.TransactionTypeExpense, 300, "Makanan", "2024-01-02")
	a.CreatedAt = 10
	b := tx("b", model.TransactionTypeExpense, 100, "Makanan", "2024-01-02")
	b.CreatedAt = 20
	c := tx("c", model.TransactionTypeExpense, 300, "Makanan", "2024-01-05")
	c.CreatedAt = 5
	txs := []model.Transaction{a, b, c}

	tests := []struct {
		option model.SortOption
		want   []string
	}{
		{model.SortDateDesc, []string{"c", "b", "a"}},
		{"", []string{"c", "b", "a"}},
		{model.SortDateAsc, []string{"a", "b", "c"}},
		{model.SortAmountDesc, []string{"a", "c", "b"}},
		{model.SortAmountAsc, []string{"b", "c", "a"}},
		{"unknown", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.option), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(txs, tt.option)))
		})
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids(txs), "input is not reordered")
}

func TestParseSortOption(t *testing.T) {
	opt, ok := ParseSortOption(" Amount-Desc ")
	assert.True(t, ok)
	assert.Equal(t, model.SortAmountDesc, opt)

	opt, ok = ParseSortOption("")
	assert.True(t, ok)
	assert.Equal(t, model.SortDateDesc, opt)

	_, ok = ParseSortOption("name")
	assert.False(t, ok)
}
