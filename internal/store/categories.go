package store

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/dompetku/internal/common"
	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/validation"
)

// TransactionUpdater is the part of TransactionStore a category cascade needs.
type TransactionUpdater interface {
	List() ([]model.Transaction, error)
	Update(patch model.TransactionPatch, available []model.Category) (*model.Transaction, error)
}

// CascadeResult is the outcome of re-pointing one transaction at a new category.
type CascadeResult struct {
	Err           error
	TransactionID string
}

// CascadeReport collects the per-transaction outcomes of a rename or delete.
// Failures are logged and skipped; they never abort the category change.
type CascadeReport struct {
	From    string
	To      string
	Results []CascadeResult
}

// Updated returns how many transactions were re-pointed successfully.
func (r CascadeReport) Updated() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error.
func (r CascadeReport) Failed() []CascadeResult {
	var failed []CascadeResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// CategoryStore owns the persisted category collection.
type CategoryStore struct {
	client       Persistence
	transactions TransactionUpdater
	options
}

// NewCategoryStore creates a category store. Renames and deletes cascade
// into transactions.
func NewCategoryStore(client Persistence, transactions TransactionUpdater, opts ...Option) *CategoryStore {
	return &CategoryStore{
		client:       client,
		transactions: transactions,
		options:      buildOptions(opts),
	}
}

// List returns a freshly loaded snapshot of all categories. The built-in
// defaults are seeded and persisted when nothing is stored yet.
func (s *CategoryStore) List() ([]model.Category, error) {
	var categories []model.Category
	if _, err := s.client.Load(categoriesKey, &categories); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	if len(categories) == 0 {
		categories = s.defaults()
		if err := s.save(categories); err != nil {
			return nil, err
		}
		slog.Info("seeded default categories", "count", len(categories))
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func (s *CategoryStore) defaults() []model.Category {
	stamp := model.Timestamp(s.now())
	categories := make([]model.Category, len(model.DefaultCategories))
	for i, def := range model.DefaultCategories {
		categories[i] = model.Category{
			ID:        fmt.Sprintf("%d_%d", stamp, i+1),
			Name:      def.Name,
			Color:     def.Color,
			CreatedAt: stamp,
		}
	}
	return categories
}

func (s *CategoryStore) save(categories []model.Category) error {
	if err := s.client.Save(categoriesKey, categories); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

// Get returns the category with the given ID, or nil if there is none.
func (s *CategoryStore) Get(id string) (*model.Category, error) {
	categories, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, nil
}

// GetByName returns the category with exactly the given name, or nil.
func (s *CategoryStore) GetByName(name string) (*model.Category, error) {
	categories, err := s.List()
	if err != nil {
		return nil, err
	}
	return model.FindCategoryByName(categories, name), nil
}

// Add creates a category. Names are unique ignoring case.
func (s *CategoryStore) Add(input model.CreateCategoryInput) (*model.Category, error) {
	if err := validation.CreateCategoryInput(input); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)

	categories, err := s.List()
	if err != nil {
		return nil, err
	}

	for _, cat := range categories {
		if cat.SameName(name) {
			return nil, common.NewDuplicateError("category", "name", name)
		}
	}

	now := s.now()
	category := model.Category{
		ID:        s.newID(now),
		Name:      name,
		Color:     input.Color,
		Icon:      input.Icon,
		CreatedAt: model.Timestamp(now),
	}

	if err := s.save(append(categories, category)); err != nil {
		return nil, err
	}

	slog.Info("created category", "name", category.Name, "id", category.ID)
	return &category, nil
}

// Update applies patch to a category. A rename re-points every transaction
// that referenced the old name before the category itself is saved.
func (s *CategoryStore) Update(patch model.CategoryPatch) (*model.Category, CascadeReport, error) {
	categories, err := s.List()
	if err != nil {
		return nil, CascadeReport{}, err
	}

	index := -1
	for i := range categories {
		if categories[i].ID == patch.ID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, CascadeReport{}, common.NewNotFoundError("category", patch.ID)
	}

	existing := categories[index]
	renamed := patch.RenamesCategory(existing)

	if renamed {
		newName := strings.TrimSpace(*patch.Name)
		if err := validation.CategoryName(newName); err != nil {
			return nil, CascadeReport{}, err
		}
		for _, cat := range categories {
			if cat.ID != patch.ID && cat.SameName(newName) {
				return nil, CascadeReport{}, common.NewDuplicateError("category", "name", newName)
			}
		}
	}
	if patch.Color != nil {
		if err := validation.Color(*patch.Color); err != nil {
			return nil, CascadeReport{}, err
		}
	}

	updated := model.ApplyCategoryPatch(existing, patch)
	next := make([]model.Category, len(categories))
	copy(next, categories)
	next[index] = updated

	report := CascadeReport{From: existing.Name, To: updated.Name}
	if renamed {
		report, err = s.cascade(existing.Name, updated.Name, next)
		if err != nil {
			return nil, report, err
		}
	}

	if err := s.save(next); err != nil {
		return nil, report, err
	}

	slog.Info("updated category", "id", updated.ID, "name", updated.Name, "renamed", renamed)
	return &updated, report, nil
}

// Delete removes a category and reassigns its transactions to the default
// category. The default category itself cannot be deleted.
func (s *CategoryStore) Delete(id string) (CascadeReport, error) {
	categories, err := s.List()
	if err != nil {
		return CascadeReport{}, err
	}

	var target *model.Category
	for i := range categories {
		if categories[i].ID == id {
			target = &categories[i]
			break
		}
	}
	if target == nil {
		return CascadeReport{}, common.NewNotFoundError("category", id)
	}
	if target.IsDefault() {
		return CascadeReport{}, fmt.Errorf("%w: category '%s' cannot be deleted", common.ErrProtectedCategory, target.Name)
	}
	deletedName := target.Name

	if model.FindCategoryByName(categories, model.DefaultCategoryName) == nil {
		slog.Warn("default category missing, recreating it", "name", model.DefaultCategoryName)
		if _, err := s.Add(model.CreateCategoryInput{Name: model.DefaultCategoryName}); err != nil {
			return CascadeReport{}, fmt.Errorf("failed to recreate default category: %w", err)
		}
		if categories, err = s.List(); err != nil {
			return CascadeReport{}, err
		}
	}

	report, err := s.cascade(deletedName, model.DefaultCategoryName, categories)
	if err != nil {
		return report, err
	}

	remaining := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.ID != id {
			remaining = append(remaining, cat)
		}
	}
	if err := s.save(remaining); err != nil {
		return report, err
	}

	slog.Info("deleted category", "id", id, "name", deletedName, "reassigned", report.Updated())
	return report, nil
}

// cascade re-points every transaction referencing from to the category named
// to, one transaction at a time. A failing transaction is logged and skipped.
func (s *CategoryStore) cascade(from, to string, snapshot []model.Category) (CascadeReport, error) {
	report := CascadeReport{From: from, To: to}

	transactions, err := s.transactions.List()
	if err != nil {
		return report, fmt.Errorf("failed to load transactions for category cascade: %w", err)
	}

	for _, tx := range transactions {
		if tx.Category != from {
			continue
		}

		_, updateErr := s.transactions.Update(model.TransactionPatch{ID: tx.ID, Category: model.Ptr(to)}, snapshot)
		if updateErr != nil {
			common.LogError(updateErr, "failed to re-point transaction category", common.Fields{
				"transaction_id": tx.ID,
				"from":           from,
				"to":             to,
			})
		}
		report.Results = append(report.Results, CascadeResult{TransactionID: tx.ID, Err: updateErr})
	}

	if failed := len(report.Failed()); failed > 0 {
		slog.Warn("category cascade finished with failures", "from", from, "to", to, "failed", failed, "updated", report.Updated())
	}
	return report, nil
}

// PlanImport validates incoming and returns the collection an Import with
// the same arguments would write, plus how many incoming categories it
// would add. Nothing is written.
func (s *CategoryStore) PlanImport(incoming []model.Category, replace bool) ([]model.Category, int, error) {
	seen := make(map[string]struct{}, len(incoming))
	hasDefault := false
	for i, cat := range incoming {
		if err := validation.CategoryName(cat.Name); err != nil {
			return nil, 0, fmt.Errorf("category at index %d: %w", i, err)
		}
		key := strings.ToLower(cat.Name)
		if _, dup := seen[key]; dup {
			return nil, 0, fmt.Errorf("category at index %d: %w", i,
				common.NewValidationError("duplicate category name %q", cat.Name))
		}
		seen[key] = struct{}{}
		if cat.IsDefault() {
			hasDefault = true
		}
	}
	if !hasDefault {
		return nil, 0, common.NewValidationError("categories must include '%s'", model.DefaultCategoryName)
	}

	if replace {
		planned := make([]model.Category, len(incoming))
		copy(planned, incoming)
		return planned, len(incoming), nil
	}

	existing, err := s.List()
	if err != nil {
		return nil, 0, err
	}
	existingNames := make(map[string]struct{}, len(existing))
	for _, cat := range existing {
		existingNames[strings.ToLower(cat.Name)] = struct{}{}
	}

	merged := existing
	added := 0
	for _, cat := range incoming {
		if _, ok := existingNames[strings.ToLower(cat.Name)]; ok {
			continue
		}
		merged = append(merged, cat)
		added++
	}
	return merged, added, nil
}

// Import validates every incoming category and requires the default
// category among them before writing anything. With replace the collection
// is overwritten; otherwise categories whose name already exists (ignoring
// case) are skipped. It returns the number written.
func (s *CategoryStore) Import(incoming []model.Category, replace bool) (int, error) {
	planned, added, err := s.PlanImport(incoming, replace)
	if err != nil {
		return 0, err
	}

	if err := s.save(planned); err != nil {
		return 0, err
	}

	mode := "merge"
	if replace {
		mode = "replace"
	}
	slog.Info("imported categories", "mode", mode, "count", added, "skipped", len(incoming)-added)
	return added, nil
}
