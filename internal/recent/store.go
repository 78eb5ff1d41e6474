// Package recent tracks recently visited items: unique by id, newest first,
// capped, with excluded types never stored and stale entries dropped on load.
package recent

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/mattjoyce/hearth/internal/persist"
	"github.com/mattjoyce/hearth/internal/store"
)

const (
	DefaultKey      = "research-tool-recent-items"
	DefaultCapacity = 10
	DefaultMaxAge   = 30 * 24 * time.Hour
)

// Config configures a Store. Zero values take the defaults.
type Config struct {
	Key          string
	Capacity     int
	ExcludeTypes []Type
	MaxAge       time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

// Store is the recent items list.
type Store struct {
	items   *store.Bounded[Item]
	exclude []Type
	logger  *slog.Logger
}

// New builds the store and loads its record, dropping entries older than
// MaxAge. Entries that age out later stay until the next load.
func New(ctx context.Context, kv persist.KV, cfg Config) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Store{
		exclude: slices.Clone(cfg.ExcludeTypes),
		logger:  cfg.Logger,
		items: store.NewBounded(ctx, kv, store.Options[Item]{
			Key:       cfg.Key,
			Capacity:  cfg.Capacity,
			ID:        func(it Item) string { return it.ID },
			Timestamp: func(it Item) time.Time { return it.Timestamp },
			Prepare: func(it Item, now time.Time) Item {
				it.Timestamp = now
				return it
			},
			Clone:  cloneItem,
			MaxAge: cfg.MaxAge,
			Now:    cfg.Now,
			Logger: cfg.Logger,
		}),
	}
}

// AddItem records a visit. Any previous entry with the same id is replaced
// and the item moves to the front, stamped with the current time. Excluded
// types are ignored and reported as false.
func (s *Store) AddItem(it Item) bool {
	if slices.Contains(s.exclude, it.Type) {
		s.logger.Debug("recent item excluded", "type", it.Type, "id", it.ID)
		return false
	}
	s.items.Append(it)
	return true
}

// Items returns every item, most recent first.
func (s *Store) Items() []Item {
	return s.items.Items()
}

// ItemsByType returns the items of type t, most recent first.
func (s *Store) ItemsByType(t Type) []Item {
	return s.items.Query(func(it Item) bool { return it.Type == t })
}

// GroupedByType buckets the items by type in first-encounter order.
func (s *Store) GroupedByType() []store.Group[Item] {
	return s.items.GroupBy(nil, func(it Item) string { return string(it.Type) })
}

// Clear removes every item.
func (s *Store) Clear() {
	s.items.Clear()
}

// ClearByType removes every item of type t.
func (s *Store) ClearByType(t Type) int {
	return s.items.RemoveWhere(func(it Item) bool { return it.Type == t })
}

// RemoveItem removes the item with the given id.
func (s *Store) RemoveItem(id string) bool {
	return s.items.Remove(id)
}

// Subscribe registers fn to receive the full list after every change.
func (s *Store) Subscribe(fn func([]Item)) func() {
	return s.items.Subscribe(fn)
}

// Capacity returns the configured capacity.
func (s *Store) Capacity() int { return s.items.Capacity() }
