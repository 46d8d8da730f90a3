package store

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Veraticus/dompetku/internal/model"
	"github.com/Veraticus/dompetku/internal/validation"
)

// SavingsTargetStore owns the single savings-target setting.
type SavingsTargetStore struct {
	client Persistence
	options
}

// NewSavingsTargetStore creates a savings target store backed by client.
func NewSavingsTargetStore(client Persistence, opts ...Option) *SavingsTargetStore {
	return &SavingsTargetStore{
		client:  client,
		options: buildOptions(opts),
	}
}

// Get returns the stored target, or nil when none has been set.
func (s *SavingsTargetStore) Get() (*model.SavingsTarget, error) {
	var target model.SavingsTarget
	found, err := s.client.Load(savingsTargetKey, &target)
	if err != nil {
		return nil, fmt.Errorf("failed to load savings target: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &target, nil
}

// Set overwrites the target with a new percentage.
func (s *SavingsTargetStore) Set(percentage float64) (*model.SavingsTarget, error) {
	if err := validation.Percentage(percentage); err != nil {
		return nil, err
	}

	target := model.SavingsTarget{
		Percentage: percentage,
		UpdatedAt:  model.Timestamp(s.now()),
	}
	if err := s.client.Save(savingsTargetKey, target); err != nil {
		return nil, fmt.Errorf("failed to save savings target: %w", err)
	}

	slog.Info("set savings target", "percentage", percentage)
	return &target, nil
}

// CalculateTarget returns the amount to save out of totalIncome, rounded to
// the nearest whole unit. It is 0 when no target is set.
func (s *SavingsTargetStore) CalculateTarget(totalIncome float64) (float64, error) {
	target, err := s.Get()
	if err != nil {
		return 0, err
	}
	if target == nil {
		return 0, nil
	}
	return math.Round(totalIncome * target.Percentage / 100), nil
}

// HasReached reports whether balance meets the target for totalIncome.
func (s *SavingsTargetStore) HasReached(balance, totalIncome float64) (bool, error) {
	amount, err := s.CalculateTarget(totalIncome)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Difference returns balance minus the target; negative means short of it.
func (s *SavingsTargetStore) Difference(balance, totalIncome float64) (float64, error) {
	amount, err := s.CalculateTarget(totalIncome)
	if err != nil {
		return 0, err
	}
	return balance - amount, nil
}
