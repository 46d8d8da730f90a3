package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/dompetku/internal/backup"
	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/config"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/storage"
	"github.com/Veraticus/dompetku/internal/store"
)

// ledger bundles the stores over one opened medium.
type ledger struct {
	client       *storage.Client
	transactions *store.TransactionStore
	categories   *store.CategoryStore
	savings      *store.SavingsTargetStore
	backup       *backup.Service
	close        func() error
}

// openLedger opens the configured storage backend and wires the stores.
func (a *app) openLedger(ctx context.Context) (*ledger, error) {
	var (
		medium storage.Medium
		closer = func() error { return nil }
	)

	switch a.cfg.Backend {
	case config.BackendMemory:
		medium = storage.NewMemoryMedium(a.cfg.QuotaBytes)
		slog.Warn("using in-memory storage, nothing will be kept after exit")
	default:
		sqlite, err := storage.NewSQLiteMedium(ctx, a.cfg.DatabasePath, a.cfg.QuotaBytes)
		if err != nil {
			return nil, common.NewUserError("could not open the ledger at "+a.cfg.DatabasePath, err)
		}
		medium = sqlite
		closer = sqlite.Close
	}

	client := storage.NewClient(medium, a.cfg.Prefix)
	transactions := store.NewTransactionStore(client)
	categories := store.NewCategoryStore(client, transactions)

	return &ledger{
		client:       client,
		transactions: transactions,
		categories:   categories,
		savings:      store.NewSavingsTargetStore(client),
		backup:       backup.NewService(categories, transactions),
		close:        closer,
	}, nil
}

func (l *ledger) Close() {
	if err := l.close(); err != nil {
		slog.Warn("failed to close storage", "error", err)
	}
}

// parseAmount accepts plain numbers as well as Indonesian grouping such as
// "35.000" or "1.250.000,50".
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rp"), "rp")
	s = strings.TrimSpace(s)

	if strings.Contains(s, ",") || strings.Count(s, ".") > 1 ||
		(strings.Count(s, ".") == 1 && len(s)-strings.Index(s, ".") == 4) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

// parseType maps a CLI flag value to a transaction type.
func parseType(s string) (model.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "in", "pemasukan":
		return model.TransactionTypeIncome, nil
	case "expense", "out", "pengeluaran", "":
		return model.TransactionTypeExpense, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q (use income or expense)", s)
	}
}

// resolveDate turns "today", "yesterday" or an empty value into a date.
func resolveDate(s string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now.Format(model.DateLayout)
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(model.DateLayout)
	default:
		return strings.TrimSpace(s)
	}
}

// monthRange returns the inclusive date range of a YYYY-MM month.
func monthRange(month string) (model.DateRange, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("invalid month %q, use YYYY-MM", month)
	}
	end := start.AddDate(0, 1, -1)
	return model.DateRange{From: start.Format(model.DateLayout), To: end.Format(model.DateLayout)}, nil
}

// findCategory resolves a category by exact name first, then by ID.
func findCategory(categories []model.Category, ref string) *model.Category {
	if cat := model.FindCategoryByName(categories, ref); cat != nil {
		return cat
	}
	for i := range categories {
		if categories[i].ID == ref {
			return &categories[i]
		}
	}
	return nil
}
