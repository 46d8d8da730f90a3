// Package testutil provides test utilities for the dompetku project.
// It wires the stores over an in-memory medium with a controllable clock and
// deterministic IDs, so tests never touch disk or real time.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/storage"
	"github.com/Veraticus/dompetku/internal/store"
)

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
	mu  sync.Mutex
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SequentialIDs returns an ID generator yielding "<unix-ms>_<n>" with an
// increasing counter.
func SequentialIDs() store.IDGenerator {
	var (
		mu sync.Mutex
		n  int
	)
	return func(now time.Time) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%d_%04d", now.UnixMilli(), n)
	}
}

// DefaultStart is the instant every test ledger's clock starts at.
var DefaultStart = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

// Ledger bundles the stores over a shared in-memory medium.
type Ledger struct {
	Medium       *storage.MemoryMedium
	Client       *storage.Client
	Transactions *store.TransactionStore
	Categories   *store.CategoryStore
	Savings      *store.SavingsTargetStore
	Clock        *Clock
	t            *testing.T
}

// NewLedger creates a ledger with no stored data. The first category read
// seeds the built-in defaults.
func NewLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedgerWithMedium(t, storage.NewMemoryMedium(0))
}

// NewLedgerWithMedium creates a ledger over the given medium.
func NewLedgerWithMedium(t *testing.T, medium *storage.MemoryMedium) *Ledger {
	t.Helper()

	clock := NewClock(DefaultStart)
	client := storage.NewClient(medium, "")
	opts := []store.Option{
		store.WithClock(clock.Now),
		store.WithIDGenerator(SequentialIDs()),
	}

	transactions := store.NewTransactionStore(client, opts...)
	return &Ledger{
		Medium:       medium,
		Client:       client,
		Transactions: transactions,
		Categories:   store.NewCategoryStore(client, transactions, opts...),
		Savings:      store.NewSavingsTargetStore(client, opts...),
		Clock:        clock,
		t:            t,
	}
}

// WithCategories replaces the stored categories with the given names. The
// default category is always included.
func (l *Ledger) WithCategories(names ...string) *Ledger {
	l.t.Helper()

	cats := make([]model.Category, 0, len(names)+1)
	hasDefault := false
	for i, name := range names {
		cats = append(cats, model.Category{
			ID:        fmt.Sprintf("cat-%d", i+1),
			Name:      name,
			CreatedAt: model.Timestamp(l.Clock.Now()),
		})
		if name == model.DefaultCategoryName {
			hasDefault = true
		}
	}
	if !hasDefault {
		cats = append(cats, model.Category{
			ID:        "cat-default",
			Name:      model.DefaultCategoryName,
			CreatedAt: model.Timestamp(l.Clock.Now()),
		})
	}

	if _, err := l.Categories.Import(cats, true); err != nil {
		l.t.Fatalf("failed to seed categories: %v", err)
	}
	return l
}

// MustCategories returns the current category snapshot or fails the test.
func (l *Ledger) MustCategories() []model.Category {
	l.t.Helper()
	cats, err := l.Categories.List()
	if err != nil {
		l.t.Fatalf("failed to list categories: %v", err)
	}
	return cats
}

// MustCategory returns the category with the given name or fails the test.
func (l *Ledger) MustCategory(name string) model.Category {
	l.t.Helper()
	cat := model.FindCategoryByName(l.MustCategories(), name)
	if cat == nil {
		l.t.Fatalf("category %q not found", name)
	}
	return *cat
}

// MustTransactions returns the current transaction snapshot or fails the test.
func (l *Ledger) MustTransactions() []model.Transaction {
	l.t.Helper()
	txs, err := l.Transactions.List()
	if err != nil {
		l.t.Fatalf("failed to list transactions: %v", err)
	}
	return txs
}

// MustAdd adds a transaction against the current categories or fails the test.
func (l *Ledger) MustAdd(input model.CreateTransactionInput) model.Transaction {
	l.t.Helper()
	tx, err := l.Transactions.Add(input, l.MustCategories())
	if err != nil {
		l.t.Fatalf("failed to add transaction %q: %v", input.Name, err)
	}
	return *tx
}

// Expense builds an expense input.
func Expense(name string, amount float64, category, date string) model.CreateTransactionInput {
	return model.CreateTransactionInput{
		Name:     name,
		Amount:   amount,
		Type:     model.TransactionTypeExpense,
		Category: category,
		Date:     date,
	}
}

// Income builds an income input.
func Income(name string, amount float64, category, date string) model.CreateTransactionInput {
	return model.CreateTransactionInput{
		Name:     name,
		Amount:   amount,
		Type:     model.TransactionTypeIncome,
		Category: category,
		Date:     date,
	}
}

// Record builds a stored transaction directly, bypassing the store.
func Record(id string, input model.CreateTransactionInput, stamp int64) model.Transaction {
	return model.Transaction{
		ID:        id,
		Name:      input.Name,
		Amount:    input.Amount,
		Type:      input.Type,
		Category:  input.Category,
		Date:      input.Date,
		Note:      input.Note,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
}
