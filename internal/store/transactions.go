package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/validation"
)

// TransactionStore owns the persisted transaction collection.
type TransactionStore struct {
	client Persistence
	options
}

// NewTransactionStore creates a transaction store backed by client.
func NewTransactionStore(client Persistence, opts ...Option) *TransactionStore {
	return &TransactionStore{
		client:  client,
		options: buildOptions(opts),
	}
}

// List returns a freshly loaded snapshot of all transactions.
func (s *TransactionStore) List() ([]model.Transaction, error) {
	var transactions []model.Transaction
	if _, err := s.client.Load(transactionsKey, &transactions); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// Get returns the transaction with the given ID, or nil if there is none.
func (s *TransactionStore) Get(id string) (*model.Transaction, error) {
	transactions, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		if transactions[i].ID == id {
			return &transactions[i], nil
		}
	}
	return nil, nil
}

func (s *TransactionStore) save(transactions []model.Transaction) error {
	if err := s.client.Save(transactionsKey, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}
	return nil
}

// Add validates input against the available categories and appends a new
// transaction.
func (s *TransactionStore) Add(input model.CreateTransactionInput, available []model.Category) (*model.Transaction, error) {
	if err := validation.CreateTransactionInput(input, available); err != nil {
		return nil, err
	}

	transactions, err := s.List()
	if err != nil {
		return nil, err
	}

	now := s.now()
	id := s.newID(now)
	for _, tx := range transactions {
		if tx.ID == id {
			return nil, common.NewDuplicateError("transaction", "ID", id)
		}
	}

	stamp := model.Timestamp(now)
	tx := model.Transaction{
		ID:        id,
		Name:      strings.TrimSpace(input.Name),
		Amount:    input.Amount,
		Type:      input.Type,
		Category:  input.Category,
		Date:      input.Date,
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	if err := validation.Transaction(tx, available); err != nil {
		return nil, err
	}

	if err := s.save(append(transactions, tx)); err != nil {
		return nil, err
	}

	slog.Info("created transaction", "id", tx.ID, "type", tx.Type, "category", tx.Category, "amount", tx.Amount)
	return &tx, nil
}

// Update merges patch over the stored transaction and re-validates the
// merged record as a whole.
func (s *TransactionStore) Update(patch model.TransactionPatch, available []model.Category) (*model.Transaction, error) {
	transactions, err := s.List()
	if err != nil {
		return nil, err
	}

	index := -1
	for i := range transactions {
		if transactions[i].ID == patch.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, common.NewNotFoundError("transaction", patch.ID)
	}

	existing := transactions[index]
	stamp := model.Timestamp(s.now())
	if stamp < existing.UpdatedAt {
		stamp = existing.UpdatedAt
	}
	updated := model.ApplyTransactionPatch(existing, patch, stamp)

	if err := validation.Transaction(updated, available); err != nil {
		return nil, err
	}

	next := make([]model.Transaction, len(transactions))
	copy(next, transactions)
	next[index] = updated
	if err := s.save(next); err != nil {
		return nil, err
	}

	slog.Info("updated transaction", "id", updated.ID)
	return &updated, nil
}

// Delete removes the transaction with the given ID.
func (s *TransactionStore) Delete(id string) error {
	transactions, err := s.List()
	if err != nil {
		return err
	}

	remaining := make([]model.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.ID != id {
			remaining = append(remaining, tx)
		}
	}
	if len(remaining) == len(transactions) {
		return common.NewNotFoundError("transaction", id)
	}

	if err := s.save(remaining); err != nil {
		return err
	}

	slog.Info("deleted transaction", "id", id)
	return nil
}

// DeleteMany removes every transaction whose ID is listed. Unknown IDs are
// ignored. It returns how many transactions were removed.
func (s *TransactionStore) DeleteMany(ids []string) (int, error) {
	transactions, err := s.List()
	if err != nil {
		return 0, err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	remaining := make([]model.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if _, ok := drop[tx.ID]; !ok {
			remaining = append(remaining, tx)
		}
	}

	if err := s.save(remaining); err != nil {
		return 0, err
	}

	deleted := len(transactions) - len(remaining)
	slog.Info("deleted transactions", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// ClearAll removes every transaction and returns how many there were.
func (s *TransactionStore) ClearAll() (int, error) {
	transactions, err := s.List()
	if err != nil {
		return 0, err
	}

	if err := s.save([]model.Transaction{}); err != nil {
		return 0, err
	}

	slog.Info("cleared transactions", "count", len(transactions))
	return len(transactions), nil
}

// Import validates every incoming transaction before writing anything. With
// replace the collection is overwritten; otherwise transactions whose ID is
// already stored are skipped. It returns the number written.
func (s *TransactionStore) Import(incoming []model.Transaction, available []model.Category, replace bool) (int, error) {
	seen := make(map[string]struct{}, len(incoming))
	for i, tx := range incoming {
		if err := validation.Transaction(tx, available); err != nil {
			return 0, fmt.Errorf("transaction at index %d: %w", i, err)
		}
		if _, dup := seen[tx.ID]; dup {
			return 0, fmt.Errorf("transaction at index %d: %w", i,
				common.NewValidationError("duplicate transaction ID %q", tx.ID))
		}
		seen[tx.ID] = struct{}{}
	}

	if replace {
		records := incoming
		if records == nil {
			records = []model.Transaction{}
		}
		if err := s.save(records); err != nil {
			return 0, err
		}
		slog.Info("imported transactions", "mode", "replace", "count", len(records))
		return len(records), nil
	}

	existing, err := s.List()
	if err != nil {
		return 0, err
	}
	existingIDs := make(map[string]struct{}, len(existing))
	for _, tx := range existing {
		existingIDs[tx.ID] = struct{}{}
	}

	merged := existing
	added := 0
	for _, tx := range incoming {
		if _, ok := existingIDs[tx.ID]; ok {
			continue
		}
		merged = append(merged, tx)
		added++
	}

	if err := s.save(merged); err != nil {
		return 0, err
	}

	slog.Info("imported transactions", "mode", "merge", "count", added, "skipped", len(incoming)-added)
	return added, nil
}
