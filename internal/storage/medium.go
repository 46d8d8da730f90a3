// Package storage provides the data persistence layer for the ledger.
package storage

import (
	"sort"
	"sync"

	"github.com/Veraticus/dompetku/internal/common"
)

// Medium is a synchronous, size-limited, string-keyed storage medium.
// Set returns common.ErrQuotaExceeded when the write would not fit.
type Medium interface {
	Available() bool
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Keys() ([]string, error)
}

// entrySize is the quota cost of a stored entry.
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}

// MemoryMedium keeps entries in a map. It is the medium used by tests and by
// the "memory" storage backend.
type MemoryMedium struct {
	entries     map[string]string
	quota       int64
	used        int64
	mu          sync.RWMutex
	unavailable bool
}

// NewMemoryMedium creates an empty in-memory medium. A quota of zero or less
// means unlimited.
func NewMemoryMedium(quota int64) *MemoryMedium {
	return &MemoryMedium{
		entries: make(map[string]string),
		quota:   quota,
	}
}

// SetAvailable toggles availability, simulating a blocked medium.
func (m *MemoryMedium) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = !available
}

// Available reports whether the medium accepts reads and writes.
func (m *MemoryMedium) Available() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.unavailable
}

// Get returns the raw value stored under key.
func (m *MemoryMedium) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return "", false, common.ErrStorageUnavailable
	}
	value, ok := m.entries[key]
	return value, ok, nil
}

// Set stores value under key.
func (m *MemoryMedium) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return common.ErrStorageUnavailable
	}

	used := m.used
	if old, ok := m.entries[key]; ok {
		used -= entrySize(key, old)
	}
	used += entrySize(key, value)

	if m.quota > 0 && used > m.quota {
		return common.ErrQuotaExceeded
	}

	m.entries[key] = value
	m.used = used
	return nil
}

// Delete removes key. Removing an absent key is not an error.
func (m *MemoryMedium) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return common.ErrStorageUnavailable
	}
	if old, ok := m.entries[key]; ok {
		m.used -= entrySize(key, old)
		delete(m.entries, key)
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (m *MemoryMedium) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return nil, common.ErrStorageUnavailable
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
