// Package backup exports the full ledger state as a versioned JSON document
// and restores it. Imports validate everything before the first write and
// always write categories before transactions.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/validation"
)

// DefaultFilename is the suggested name for an exported backup.
const DefaultFilename = "dompetku-backup.json"

// CategoryStore is the category side of the ledger as seen by a backup.
type CategoryStore interface {
	List() ([]model.Category, error)
	PlanImport(incoming []model.Category, replace bool) ([]model.Category, int, error)
	Import(incoming []model.Category, replace bool) (int, error)
}

// TransactionStore is the transaction side of the ledger as seen by a backup.
type TransactionStore interface {
	List() ([]model.Transaction, error)
	Import(incoming []model.Transaction, available []model.Category, replace bool) (int, error)
}

// Service exports and imports ledger snapshots.
type Service struct {
	categories   CategoryStore
	transactions TransactionStore
	now          func() time.Time
}

// NewService creates a backup service over the given stores.
func NewService(categories CategoryStore, transactions TransactionStore) *Service {
	return &Service{
		categories:   categories,
		transactions: transactions,
		now:          time.Now,
	}
}

// WithClock overrides the export timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ExportSnapshot reads both collections and tags them with the format
// version and the export time.
func (s *Service) ExportSnapshot() (model.ExportData, error) {
	categories, err := s.categories.List()
	if err != nil {
		return model.ExportData{}, fmt.Errorf("failed to export categories: %w", err)
	}
	transactions, err := s.transactions.List()
	if err != nil {
		return model.ExportData{}, fmt.Errorf("failed to export transactions: %w", err)
	}

	return model.ExportData{
		Version:      model.ExportVersion,
		ExportedAt:   model.Timestamp(s.now()),
		Transactions: transactions,
		Categories:   categories,
	}, nil
}

// ExportJSON returns the snapshot as indented JSON.
func (s *Service) ExportJSON() ([]byte, error) {
	doc, err := s.ExportSnapshot()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// ExportToFile writes the snapshot to path.
func (s *Service) ExportToFile(path string) error {
	data, err := s.ExportJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup to %s: %w", path, err)
	}

	slog.Info("exported backup", "path", path, "bytes", len(data))
	return nil
}

// ImportFile reads a backup document from path and imports it. The context
// is honoured while the file is being read; the import itself runs to
// completion once the bytes are in hand.
func (s *Service) ImportFile(ctx context.Context, path string, replace bool) (model.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("failed to close backup file", "path", path, "error", cerr)
		}
	}()

	data, err := io.ReadAll(&contextReader{ctx: ctx, r: f})
	if err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to read backup file: %w", err)
	}

	return s.ImportJSON(data, replace)
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// document is the loosely typed form of model.ExportData used to report
// shape problems as validation errors instead of decode failures.
type document struct {
	Version      json.RawMessage `json:"version"`
	ExportedAt   json.RawMessage `json:"exportedAt"`
	Transactions json.RawMessage `json:"transactions"`
	Categories   json.RawMessage `json:"categories"`
}

// ImportJSON decodes a backup document and imports it.
func (s *Service) ImportJSON(data []byte, replace bool) (model.ImportResult, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return model.ImportResult{}, err
	}
	return s.ImportSnapshot(doc, replace)
}

func decodeDocument(data []byte) (model.ExportData, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return model.ExportData{}, invalidJSON(errors.New("not a JSON document"))
		}
		return model.ExportData{}, common.NewValidationError("invalid backup: document must be a JSON object")
	}

	var raw document
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return model.ExportData{}, invalidJSON(err)
	}

	var doc model.ExportData
	if err := json.Unmarshal(orNull(raw.Version), &doc.Version); err != nil || doc.Version == "" {
		return model.ExportData{}, common.NewValidationError("invalid backup: 'version' is missing or invalid")
	}

	var exportedAt float64
	if err := json.Unmarshal(orNull(raw.ExportedAt), &exportedAt); err != nil || exportedAt <= 0 {
		return model.ExportData{}, common.NewValidationError("invalid backup: 'exportedAt' is missing or invalid")
	}
	doc.ExportedAt = int64(exportedAt)

	if !isArray(raw.Transactions) {
		return model.ExportData{}, common.NewValidationError("invalid backup: 'transactions' must be an array")
	}
	if !isArray(raw.Categories) {
		return model.ExportData{}, common.NewValidationError("invalid backup: 'categories' must be an array")
	}

	var err error
	if doc.Transactions, err = decodeRecords[model.Transaction](raw.Transactions, "transaction"); err != nil {
		return model.ExportData{}, err
	}
	if doc.Categories, err = decodeRecords[model.Category](raw.Categories, "category"); err != nil {
		return model.ExportData{}, err
	}
	return doc, nil
}

func decodeRecords[T any](raw json.RawMessage, kind string) ([]T, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, invalidJSON(err)
	}

	records := make([]T, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &records[i]); err != nil {
			return nil, &common.ValidationError{
				Message: fmt.Sprintf("invalid %s at index %d", kind, i),
				Err:     err,
			}
		}
	}
	return records, nil
}

func orNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func invalidJSON(err error) error {
	return &common.ValidationError{Message: "invalid JSON format", Err: err}
}

// ImportSnapshot validates doc and writes it, categories first. Any
// validation failure aborts before the first write.
func (s *Service) ImportSnapshot(doc model.ExportData, replace bool) (model.ImportResult, error) {
	result, err := s.importSnapshot(doc, replace)
	if err != nil {
		return model.ImportResult{}, classify(err)
	}

	common.LogInfo("imported backup", common.Fields{
		"replace":      replace,
		"version":      doc.Version,
		"transactions": result.TransactionsCount,
		"categories":   result.CategoriesCount,
	})
	return result, nil
}

func (s *Service) importSnapshot(doc model.ExportData, replace bool) (model.ImportResult, error) {
	if err := validateShape(doc); err != nil {
		return model.ImportResult{}, err
	}

	for i, tx := range doc.Transactions {
		if err := requireTransactionFields(tx); err != nil {
			return model.ImportResult{}, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	for i, cat := range doc.Categories {
		if err := validation.CategoryName(cat.Name); err != nil {
			return model.ImportResult{}, fmt.Errorf("category at index %d: %w", i, err)
		}
		if cat.ID == "" {
			return model.ImportResult{}, common.NewValidationError("category at index %d has no ID", i)
		}
	}

	if model.FindCategoryByName(doc.Categories, model.DefaultCategoryName) == nil {
		return model.ImportResult{}, common.NewValidationError("backup must contain the '%s' category", model.DefaultCategoryName)
	}

	// Check transactions against the categories as they will be after the
	// import, so a bad record fails before either collection is touched.
	planned, _, err := s.categories.PlanImport(doc.Categories, replace)
	if err != nil {
		return model.ImportResult{}, err
	}
	for i, tx := range doc.Transactions {
		if err := validation.Transaction(tx, planned); err != nil {
			return model.ImportResult{}, fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	categoriesCount, err := s.categories.Import(doc.Categories, replace)
	if err != nil {
		return model.ImportResult{}, err
	}

	current, err := s.categories.List()
	if err != nil {
		return model.ImportResult{}, err
	}
	transactionsCount, err := s.transactions.Import(doc.Transactions, current, replace)
	if err != nil {
		return model.ImportResult{}, err
	}

	return model.ImportResult{
		TransactionsCount: transactionsCount,
		CategoriesCount:   categoriesCount,
	}, nil
}

func validateShape(doc model.ExportData) error {
	if doc.Version == "" {
		return common.NewValidationError("invalid backup: 'version' is missing or invalid")
	}
	if doc.ExportedAt <= 0 {
		return common.NewValidationError("invalid backup: 'exportedAt' is missing or invalid")
	}
	if doc.Transactions == nil {
		return common.NewValidationError("invalid backup: 'transactions' must be an array")
	}
	if doc.Categories == nil {
		return common.NewValidationError("invalid backup: 'categories' must be an array")
	}
	return nil
}

func requireTransactionFields(tx model.Transaction) error {
	if tx.ID == "" || tx.Name == "" || tx.Amount == 0 || tx.Type == "" || tx.Category == "" || tx.Date == "" {
		return common.NewValidationError("transaction is incomplete")
	}
	return nil
}

// classify returns typed ledger errors unchanged and wraps anything else.
func classify(err error) error {
	if common.IsValidation(err) || common.IsNotFound(err) || common.IsDuplicate(err) {
		return err
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return invalidJSON(err)
	}

	return fmt.Errorf("failed to import data: %w", err)
}
