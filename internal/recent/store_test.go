package recent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/persist"
	"github.com/mattjoyce/hearth/internal/state"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, kv persist.KV, c *clock, cfg Config) *Store {
	t.Helper()
	cfg.Now = c.Now
	cfg.Logger = log.Discard()
	return New(context.Background(), kv, cfg)
}

func itemIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestReAddMovesToFront(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(t, state.NewMemory(), c, Config{})

	s.AddItem(Item{ID: "x", Type: TypePersona, Title: "Persona X", Route: "/personas/x"})
	c.now = c.now.Add(time.Minute)
	s.AddItem(Item{ID: "y", Type: TypeProduct, Title: "Product Y", Route: "/products/y"})
	c.now = c.now.Add(time.Minute)
	s.AddItem(Item{ID: "x", Type: TypePersona, Title: "Persona X renamed", Route: "/personas/x"})

	items := s.Items()
	assert.Equal(t, []string{"x", "y"}, itemIDs(items))
	assert.Equal(t, "Persona X renamed", items[0].Title)
	assert.Equal(t, c.now, items[0].Timestamp)
}

func TestTimestampAlwaysNow(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(t, state.NewMemory(), c, Config{})

	s.AddItem(Item{ID: "x", Type: TypePage, Timestamp: c.now.Add(-48 * time.Hour)})
	assert.Equal(t, c.now, s.Items()[0].Timestamp)
}

func TestCapacity(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(t, state.NewMemory(), c, Config{})

	for i := 1; i <= 12; i++ {
		s.AddItem(Item{ID: fmt.Sprintf("i%d", i), Type: TypeKnowledge})
		c.now = c.now.Add(time.Second)
	}

	items := s.Items()
	require.Len(t, items, DefaultCapacity)
	assert.Equal(t, "i12", items[0].ID)
	assert.Equal(t, "i3", items[9].ID)
}

func TestExcludedTypesNeverStored(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(t, state.NewMemory(), c, Config{ExcludeTypes: []Type{TypePage}})

	notified := 0
	s.Subscribe(func([]Item) { notified++ })

	assert.False(t, s.AddItem(Item{ID: "settings", Type: TypePage}))
	assert.True(t, s.AddItem(Item{ID: "trend-1", Type: TypeTrend}))
	assert.Equal(t, []string{"trend-1"}, itemIDs(s.Items()))
	assert.Equal(t, 1, notified)
}

func TestStalenessAppliedOnlyAtLoad(t *testing.T) {
	kv := state.NewMemory()
	c := &clock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	first := newTestStore(t, kv, c, Config{})
	first.AddItem(Item{ID: "old", Type: TypeTrend})
	c.now = c.now.Add(20 * 24 * time.Hour)
	first.AddItem(Item{ID: "fresh", Type: TypeTrend})

	// 31 days after "old" was visited, 11 after "fresh".
	c.now = c.now.Add(11 * 24 * time.Hour)
	assert.Equal(t, []string{"fresh", "old"}, itemIDs(first.Items()), "no pruning during a session")

	second := newTestStore(t, kv, c, Config{})
	assert.Equal(t, []string{"fresh"}, itemIDs(second.Items()))

	c.now = c.now.Add(60 * 24 * time.Hour)
	assert.Equal(t, []string{"fresh"}, itemIDs(second.Items()))
}

func TestGroupedByTypeAndRemoval(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(t, state.NewMemory(), c, Config{})

	s.AddItem(Item{ID: "p1", Type: TypePersona})
	s.AddItem(Item{ID: "a1", Type: TypeBrandAsset})
	s.AddItem(Item{ID: "p2", Type: TypePersona})

	groups := s.GroupedByType()
	require.Len(t, groups, 2)
	assert.Equal(t, string(TypePersona), groups[0].Label)
	assert.Equal(t, []string{"p2", "p1"}, itemIDs(groups[0].Items))
	assert.Equal(t, []string{"a1"}, itemIDs(groups[1].Items))

	assert.Equal(t, []string{"p2", "p1"}, itemIDs(s.ItemsByType(TypePersona)))

	assert.Equal(t, 2, s.ClearByType(TypePersona))
	assert.Equal(t, []string{"a1"}, itemIDs(s.Items()))

	assert.False(t, s.RemoveItem("missing"))
	assert.True(t, s.RemoveItem("a1"))
	assert.Empty(t, s.Items())
}

func TestMetadataIsCopied(t *testing.T) {
	c := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	s := newTestStore(t, state.NewMemory(), c, Config{})
	progress := 40
	s.AddItem(Item{ID: "plan", Type: TypeResearchPlan, Metadata: &Metadata{Status: "active", Progress: &progress}})

	got := s.Items()
	*got[0].Metadata.Progress = 99
	got[0].Metadata.Status = "done"

	again := s.Items()
	assert.Equal(t, 40, *again[0].Metadata.Progress)
	assert.Equal(t, "active", again[0].Metadata.Status)
}

func TestLookups(t *testing.T) {
	assert.Equal(t, "Palette", TypeIcon(TypeBrandAsset))
	assert.Equal(t, "Circle", TypeIcon("unknown"))
	assert.Equal(t, "Research Method", TypeLabel(TypeResearchMethod))
	assert.Equal(t, "Item", TypeLabel("unknown"))

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", TimeAgo(now.Add(-30*time.Second), now))
	assert.Equal(t, "5m ago", TimeAgo(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2w ago", TimeAgo(now.Add(-15*24*time.Hour), now))
}
