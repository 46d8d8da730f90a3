package stats

import (
	"sort"
	"strings"

	"github.com/Veraticus/dompetku/internal/model"
)

// Filter returns the transactions matching every set criterion of f.
// The search query matches name, note or category ignoring case.
func Filter(txs []model.Transaction, f model.TransactionFilter) []model.Transaction {
	query := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	filtered := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if query != "" && !matchesQuery(tx, query) {
			continue
		}
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Category != "" && tx.Category != f.Category {
			continue
		}
		if !f.DateRange.Contains(tx.Date) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

func matchesQuery(tx model.Transaction, query string) bool {
	return strings.Contains(strings.ToLower(tx.Name), query) ||
		strings.Contains(strings.ToLower(tx.Note), query) ||
		strings.Contains(strings.ToLower(tx.Category), query)
}

// Sort returns a sorted copy of txs. An empty option sorts newest first.
// Ties fall back to creation time in the same direction.
func Sort(txs []model.Transaction, option model.SortOption) []model.Transaction {
	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)

	var less func(a, b *model.Transaction) bool
	switch option {
	case model.SortDateAsc:
		less = func(a, b *model.Transaction) bool {
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.CreatedAt < b.CreatedAt
		}
	case model.SortAmountDesc:
		less = func(a, b *model.Transaction) bool {
			if a.Amount != b.Amount {
				return a.Amount > b.Amount
			}
			return a.CreatedAt > b.CreatedAt
		}
	case model.SortAmountAsc:
		less = func(a, b *model.Transaction) bool {
			if a.Amount != b.Amount {
				return a.Amount < b.Amount
			}
			return a.CreatedAt < b.CreatedAt
		}
	case model.SortDateDesc, "":
		less = func(a, b *model.Transaction) bool {
			if a.Date != b.Date {
				return a.Date > b.Date
			}
			return a.CreatedAt > b.CreatedAt
		}
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return less(&sorted[i], &sorted[j])
	})
	return sorted
}

// ParseSortOption maps a CLI flag value to a SortOption.
func ParseSortOption(s string) (model.SortOption, bool) {
	switch opt := model.SortOption(strings.ToLower(strings.TrimSpace(s))); opt {
	case model.SortDateDesc, model.SortDateAsc, model.SortAmountDesc, model.SortAmountAsc:
		return opt, true
	case "":
		return model.SortDateDesc, true
	default:
		return "", false
	}
}
