// Package activity is the bounded activity feed: newest-first, capped at 100
// entries, persisted under its own key, with read tracking and date grouping.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mattjoyce/hearth/internal/persist"
	"github.com/mattjoyce/hearth/internal/store"
)

const (
	DefaultKey      = "research-tool-activities"
	DefaultCapacity = 100

	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 9
)

// Config configures a Store. Zero values take the defaults.
type Config struct {
	Key      string
	Capacity int
	Now      func() time.Time
	Logger   *slog.Logger
}

// Store is the activity feed.
type Store struct {
	feed   *store.Bounded[Activity]
	now    func() time.Time
	logger *slog.Logger
}

// New builds the feed and loads its persisted record.
func New(ctx context.Context, kv persist.KV, cfg Config) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Store{now: cfg.Now, logger: cfg.Logger}
	s.feed = store.NewBounded(ctx, kv, store.Options[Activity]{
		Key:       cfg.Key,
		Capacity:  cfg.Capacity,
		ID:        func(a Activity) string { return a.ID },
		Timestamp: func(a Activity) time.Time { return a.Timestamp },
		Prepare:   s.prepare,
		Clone:     cloneActivity,
		Now:       cfg.Now,
		Logger:    cfg.Logger,
	})
	return s
}

func (s *Store) prepare(a Activity, now time.Time) Activity {
	if a.Timestamp.IsZero() {
		a.Timestamp = now
	}
	if a.ID == "" {
		a.ID = newID(a.Timestamp)
	}
	return a
}

func newID(at time.Time) string {
	suffix, err := nanoid.Generate(idAlphabet, idLength)
	if err != nil {
		suffix = strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
	}
	return fmt.Sprintf("activity-%d-%s", at.UnixMilli(), suffix)
}

func cloneActivity(a Activity) Activity {
	a.Metadata = maps.Clone(a.Metadata)
	return a
}

// AddActivity records a new unread activity at the front of the feed and
// returns it.
func (s *Store) AddActivity(t Type, c Category, title string, actor Actor, md Metadata, opts Options) Activity {
	a := s.feed.Append(Activity{
		Type:        t,
		Category:    c,
		Title:       title,
		Description: opts.Description,
		Actor:       actor,
		Metadata:    maps.Clone(md),
		IsImportant: opts.IsImportant,
	})
	s.logger.Info("activity added", "type", t, "category", c, "title", title)
	return a
}

// Activities returns the feed, newest first, narrowed by f when non-nil.
func (s *Store) Activities(f *Filter) []Activity {
	return s.feed.Query(f.match)
}

// Grouped returns the filtered feed bucketed by calendar day.
func (s *Store) Grouped(f *Filter) []store.Group[Activity] {
	return s.feed.GroupByDate(f.match, s.now())
}

// MarkAsRead flags one activity as read. Unknown ids are ignored.
func (s *Store) MarkAsRead(id string) bool {
	return s.feed.Update(id, func(a *Activity) bool {
		if a.IsRead {
			return false
		}
		a.IsRead = true
		return true
	})
}

// MarkAllAsRead flags every activity as read.
func (s *Store) MarkAllAsRead() {
	s.feed.UpdateAll(func(a *Activity) bool {
		if a.IsRead {
			return false
		}
		a.IsRead = true
		return true
	})
}

// UnreadCount returns the number of unread activities.
func (s *Store) UnreadCount() int {
	return s.feed.Count(func(a Activity) bool { return !a.IsRead })
}

// Clear empties the feed.
func (s *Store) Clear() {
	s.feed.Clear()
}

// Subscribe registers fn to receive the full feed after every change.
func (s *Store) Subscribe(fn func([]Activity)) func() {
	return s.feed.Subscribe(fn)
}

// Find returns the activity with the given id.
func (s *Store) Find(id string) (Activity, bool) {
	return s.feed.Find(id)
}

// Capacity returns the feed's capacity.
func (s *Store) Capacity() int { return s.feed.Capacity() }

func (f *Filter) match(a Activity) bool {
	if f == nil {
		return true
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, a.Category) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, a.Type) {
		return false
	}
	if len(f.ActorIDs) > 0 && !slices.Contains(f.ActorIDs, a.Actor.ID) {
		return false
	}
	if r := f.DateRange; r != nil {
		if a.Timestamp.Before(r.Start) || a.Timestamp.After(r.End) {
			return false
		}
	}
	if f.UnreadOnly && a.IsRead {
		return false
	}
	if q := strings.TrimSpace(f.Text); q != "" {
		q = strings.ToLower(q)
		hay := strings.ToLower(a.Title + "\n" + a.Description + "\n" + a.Actor.Name)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}
