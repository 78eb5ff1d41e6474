// Package store implements the bounded observable collection shared by the
// activity feed, recent items and payment profile stores.
//
// A Bounded store keeps entries newest-first, never holds more than its
// capacity, writes the full collection through to its persisted record on
// every mutation and then notifies subscribers synchronously.
package store

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mattjoyce/hearth/internal/persist"
)

// Options configures a Bounded store.
type Options[T any] struct {
	// Key is the namespaced key of the persisted record.
	Key string
	// Capacity bounds the collection; zero or less means unbounded.
	Capacity int
	// ID returns the identity used for upserts and lookups.
	ID func(T) string
	// Timestamp returns the recency instant of an entry. Required for MaxAge
	// filtering and date grouping.
	Timestamp func(T) time.Time
	// Prepare fills in absent fields (id, timestamp) before insertion.
	Prepare func(item T, now time.Time) T
	// Clone deep-copies an entry for snapshots. Shallow copy when nil.
	Clone func(T) T
	// MaxAge drops entries older than this when the record is loaded.
	// Entries are never pruned after load.
	MaxAge time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

// Bounded is a capacity-limited, newest-first, observable collection.
type Bounded[T any] struct {
	opts     Options[T]
	record   *persist.Record[[]T]
	notifier Notifier[[]T]

	// writeMu serializes each mutation with its notification so snapshots
	// reach listeners in mutation order. Listeners may read the store but
	// must not mutate it.
	writeMu sync.Mutex
	mu      sync.Mutex
	items   []T
}

// NewBounded builds the store and loads its persisted record once, applying
// staleness filtering and capacity trimming. A missing or corrupt record
// yields an empty store.
func NewBounded[T any](ctx context.Context, kv persist.KV, opts Options[T]) *Bounded[T] {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	b := &Bounded[T]{
		opts:   opts,
		record: persist.NewRecord[[]T](kv, opts.Key, opts.Logger),
	}
	b.load(ctx)
	return b
}

func (b *Bounded[T]) load(ctx context.Context) {
	items, ok := b.record.Load(ctx)
	if !ok {
		return
	}
	loaded := len(items)
	if b.opts.MaxAge > 0 && b.opts.Timestamp != nil {
		cutoff := b.opts.Now().Add(-b.opts.MaxAge)
		items = slices.DeleteFunc(items, func(it T) bool {
			return !b.opts.Timestamp(it).After(cutoff)
		})
	}
	b.items = b.truncate(items)
	b.opts.Logger.Debug("store loaded", "loaded", loaded, "kept", len(b.items))
}

func (b *Bounded[T]) truncate(items []T) []T {
	if b.opts.Capacity > 0 && len(items) > b.opts.Capacity {
		return items[:b.opts.Capacity]
	}
	return items
}

// Key returns the persisted record key.
func (b *Bounded[T]) Key() string { return b.opts.Key }

// Capacity returns the configured capacity.
func (b *Bounded[T]) Capacity() int { return b.opts.Capacity }

// Append prepares item, removes any entry sharing its id, inserts it at the
// front and drops the oldest entries beyond capacity. The stored item is
// returned.
func (b *Bounded[T]) Append(item T) T {
	if b.opts.Prepare != nil {
		item = b.opts.Prepare(item, b.opts.Now())
	}
	b.mutate(func(items []T) ([]T, bool) {
		if b.opts.ID != nil {
			id := b.opts.ID(item)
			items = slices.DeleteFunc(items, func(it T) bool { return b.opts.ID(it) == id })
		}
		next := make([]T, 0, len(items)+1)
		next = append(next, item)
		next = append(next, items...)
		return b.truncate(next), true
	})
	return b.clone(item)
}

// Items returns a snapshot of every entry, newest first.
func (b *Bounded[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Len returns the number of entries.
func (b *Bounded[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Query returns the entries matching pred, newest first. A nil pred matches
// everything. The store is not modified.
func (b *Bounded[T]) Query(pred func(T) bool) []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, 0, len(b.items))
	for _, it := range b.items {
		if pred == nil || pred(it) {
			out = append(out, b.clone(it))
		}
	}
	return out
}

// Count returns how many entries match pred without copying them.
func (b *Bounded[T]) Count(pred func(T) bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, it := range b.items {
		if pred == nil || pred(it) {
			n++
		}
	}
	return n
}

// Find returns the entry with the given id.
func (b *Bounded[T]) Find(id string) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexLocked(id); i >= 0 {
		return b.clone(b.items[i]), true
	}
	var zero T
	return zero, false
}

// Update applies fn to the entry with the given id. fn reports whether it
// changed the entry; unchanged or missing entries are a no-op.
func (b *Bounded[T]) Update(id string, fn func(*T) bool) bool {
	return b.mutate(func(items []T) ([]T, bool) {
		i := b.indexLocked(id)
		if i < 0 {
			return items, false
		}
		return items, fn(&items[i])
	})
}

// UpdateAll applies fn to every entry, then persists and notifies whether or
// not anything changed. It returns how many entries fn reported changed.
func (b *Bounded[T]) UpdateAll(fn func(*T) bool) int {
	changed := 0
	b.mutate(func(items []T) ([]T, bool) {
		for i := range items {
			if fn(&items[i]) {
				changed++
			}
		}
		return items, true
	})
	return changed
}

// Remove deletes the entry with the given id. Missing ids are a no-op.
func (b *Bounded[T]) Remove(id string) bool {
	return b.mutate(func(items []T) ([]T, bool) {
		i := b.indexLocked(id)
		if i < 0 {
			return items, false
		}
		return slices.Delete(items, i, i+1), true
	})
}

// RemoveWhere deletes every entry matching pred and returns how many went.
func (b *Bounded[T]) RemoveWhere(pred func(T) bool) int {
	removed := 0
	b.mutate(func(items []T) ([]T, bool) {
		before := len(items)
		items = slices.DeleteFunc(items, pred)
		removed = before - len(items)
		return items, removed > 0
	})
	return removed
}

// Clear empties the store.
func (b *Bounded[T]) Clear() {
	b.mutate(func([]T) ([]T, bool) { return nil, true })
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (b *Bounded[T]) Subscribe(fn Listener[[]T]) func() {
	return b.notifier.Subscribe(fn)
}

// GroupByDate buckets matching entries by DateLabel relative to now.
func (b *Bounded[T]) GroupByDate(pred func(T) bool, now time.Time) []Group[T] {
	ts := b.opts.Timestamp
	return GroupBy(b.Query(pred), func(it T) string {
		if ts == nil {
			return ""
		}
		return DateLabel(ts(it), now)
	})
}

// GroupBy buckets matching entries by key.
func (b *Bounded[T]) GroupBy(pred func(T) bool, key func(T) string) []Group[T] {
	return GroupBy(b.Query(pred), key)
}

// mutate runs fn under the lock. When fn reports a change the new collection
// is persisted before the lock is released, and subscribers are notified
// after it is released so they can read the store. Notifications from
// concurrent mutations are delivered one at a time in mutation order.
func (b *Bounded[T]) mutate(fn func(items []T) ([]T, bool)) bool {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	b.mu.Lock()
	next, changed := fn(b.items)
	if !changed {
		b.mu.Unlock()
		return false
	}
	b.items = next
	b.record.Save(b.items)
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.notifier.Notify(snapshot)
	return true
}

func (b *Bounded[T]) indexLocked(id string) int {
	if b.opts.ID == nil {
		return -1
	}
	for i, it := range b.items {
		if b.opts.ID(it) == id {
			return i
		}
	}
	return -1
}

func (b *Bounded[T]) snapshotLocked() []T {
	out := make([]T, len(b.items))
	for i, it := range b.items {
		out[i] = b.clone(it)
	}
	return out
}

func (b *Bounded[T]) clone(it T) T {
	if b.opts.Clone != nil {
		return b.opts.Clone(it)
	}
	return it
}
