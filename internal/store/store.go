// Package store owns the ledger's persisted collections: transactions,
// categories and the savings target. Every mutation reads the full
// collection, changes it in memory and writes it back as one unit.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage keys, namespaced further by the persistence client.
const (
	transactionsKey  = "transactions"
	categoriesKey    = "categories"
	savingsTargetKey = "savingsTarget"
)

// Persistence is the key/value contract the stores depend on.
// *storage.Client satisfies it.
type Persistence interface {
	Save(key string, value any) error
	Load(key string, dest any) (bool, error)
}

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator derives a record ID from the creation time.
type IDGenerator func(now time.Time) string

// DefaultIDGenerator produces "<unix-ms>_<random>" IDs.
func DefaultIDGenerator(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d_%s", now.UnixMilli(), random[:9])
}

// Option configures a store.
type Option func(*options)

type options struct {
	now   Clock
	newID IDGenerator
}

// WithClock overrides the time source.
func WithClock(now Clock) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator overrides ID generation.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		o.newID = gen
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: DefaultIDGenerator,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
