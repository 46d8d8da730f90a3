package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/dompetku/internal/common"
)

// DefaultPrefix namespaces every key the ledger writes.
const DefaultPrefix = "dompetku_"

// Client saves and loads JSON values under namespaced keys of a Medium.
type Client struct {
	medium Medium
	prefix string
}

// NewClient creates a persistence client. An empty prefix falls back to DefaultPrefix.
func NewClient(medium Medium, prefix string) *Client {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Client{medium: medium, prefix: prefix}
}

func (c *Client) key(key string) string {
	return c.prefix + key
}

// Save serializes value as JSON and stores it under key.
func (c *Client) Save(key string, value any) error {
	if !c.medium.Available() {
		return fmt.Errorf("%w: cannot save %q", common.ErrStorageUnavailable, key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize %q: %w", key, err)
	}

	if err := c.medium.Set(c.key(key), string(data)); err != nil {
		if errors.Is(err, common.ErrQuotaExceeded) {
			return fmt.Errorf("%w: delete old data or export a backup before saving %q", common.ErrQuotaExceeded, key)
		}
		return fmt.Errorf("failed to save %q: %w", key, err)
	}

	common.LogDebug("saved key", common.Fields{"key": key, "bytes": len(data)})
	return nil
}

// Load decodes the value stored under key into dest. It returns false when
// the key is absent. A value that fails to decode is deleted and
// common.ErrCorruptData is returned; the data is not recoverable.
func (c *Client) Load(key string, dest any) (bool, error) {
	if !c.medium.Available() {
		slog.Warn("storage unavailable, treating key as absent", "key", key)
		return false, nil
	}

	raw, ok, err := c.medium.Get(c.key(key))
	if err != nil {
		return false, fmt.Errorf("failed to load %q: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		common.LogError(err, "corrupt data, removing key", common.Fields{"key": key})
		if delErr := c.medium.Delete(c.key(key)); delErr != nil {
			slog.Warn("failed to remove corrupt key", "key", key, "error", delErr)
		}
		return false, fmt.Errorf("%w: data for key %q has been removed", common.ErrCorruptData, key)
	}

	return true, nil
}

// Exists reports whether a value is stored under key.
func (c *Client) Exists(key string) bool {
	if !c.medium.Available() {
		return false
	}
	_, ok, err := c.medium.Get(c.key(key))
	return err == nil && ok
}

// Remove deletes key.
func (c *Client) Remove(key string) error {
	if !c.medium.Available() {
		return fmt.Errorf("%w: cannot remove %q", common.ErrStorageUnavailable, key)
	}
	if err := c.medium.Delete(c.key(key)); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

// ClearAll deletes every key under the client's prefix. Keys outside the
// prefix are left alone.
func (c *Client) ClearAll() error {
	if !c.medium.Available() {
		return fmt.Errorf("%w: cannot clear data", common.ErrStorageUnavailable)
	}

	keys, err := c.medium.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	removed := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, c.prefix) {
			continue
		}
		if err := c.medium.Delete(k); err != nil {
			return fmt.Errorf("failed to remove %q: %w", k, err)
		}
		removed++
	}

	slog.Info("cleared stored data", "keys", removed)
	return nil
}

// Keys returns the application's keys with the prefix stripped.
func (c *Client) Keys() []string {
	if !c.medium.Available() {
		return nil
	}
	keys, err := c.medium.Keys()
	if err != nil {
		return nil
	}

	var own []string
	for _, k := range keys {
		if strings.HasPrefix(k, c.prefix) {
			own = append(own, strings.TrimPrefix(k, c.prefix))
		}
	}
	return own
}

// Size estimates the bytes used by the application's keys and values.
func (c *Client) Size() int64 {
	var total int64
	for _, k := range c.Keys() {
		raw, ok, err := c.medium.Get(c.key(k))
		if err != nil || !ok {
			continue
		}
		total += entrySize(c.key(k), raw)
	}
	return total
}
