package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/persist"
	"github.com/mattjoyce/hearth/internal/state"
)

func newTestProfile(t *testing.T, kv *state.Memory) *ProfileStore {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return NewProfileStore(context.Background(), kv, Config{
		Now:    func() time.Time { return now },
		Logger: log.Discard(),
	})
}

func defaults(p Profile) int {
	n := 0
	for _, m := range p.Methods {
		if m.IsDefault {
			n++
		}
	}
	return n
}

func TestFirstMethodBecomesDefaultAndActive(t *testing.T) {
	s := newTestProfile(t, state.NewMemory())
	assert.Equal(t, VariantEmpty, s.Variant())

	m := s.AddPaymentMethod(MethodCard, "•••• 4242", "12/26", false)
	assert.True(t, m.IsDefault)
	assert.Equal(t, StatusVerified, m.Status)
	assert.Regexp(t, `^method-[0-9a-f-]{36}$`, m.ID)
	assert.Equal(t, VariantActive, s.Variant())

	require.True(t, s.UpdateMethodStatus(m.ID, StatusExpired))
	assert.Equal(t, VariantExpired, s.Variant())

	require.True(t, s.UpdateMethodStatus(m.ID, StatusError))
	assert.Equal(t, VariantError, s.Variant())
	assert.False(t, s.HasValidProfile())
}

func TestSetAsDefaultClearsOthers(t *testing.T) {
	s := newTestProfile(t, state.NewMemory())
	first := s.AddPaymentMethod(MethodCard, "Card •••• 1111", "01/27", false)
	second := s.AddPaymentMethod(MethodPayPal, "PayPal Account", "", false)
	third := s.AddPaymentMethod(MethodIDEAL, "iDEAL", "", true)

	p := s.Profile()
	require.Len(t, p.Methods, 3)
	assert.Equal(t, 1, defaults(p))
	def, ok := s.DefaultMethod()
	require.True(t, ok)
	assert.Equal(t, third.ID, def.ID)

	assert.True(t, s.SetDefaultMethod(second.ID))
	def, _ = s.DefaultMethod()
	assert.Equal(t, second.ID, def.ID)
	assert.Equal(t, 1, defaults(s.Profile()))

	assert.False(t, s.SetDefaultMethod("method-missing"))
	def, _ = s.DefaultMethod()
	assert.Equal(t, second.ID, def.ID, "unknown id must not clear the default")

	assert.Equal(t, first.ID, s.Profile().Methods[0].ID, "insertion order is kept")
}

func TestRemoveDefaultPromotesFirst(t *testing.T) {
	s := newTestProfile(t, state.NewMemory())
	a := s.AddPaymentMethod(MethodCard, "Card •••• 1111", "", false)
	b := s.AddPaymentMethod(MethodBankTransfer, "Bank Account", "", false)
	c := s.AddPaymentMethod(MethodMobilePay, "Apple Pay", "", true)

	require.True(t, s.RemovePaymentMethod(c.ID))
	p := s.Profile()
	require.Len(t, p.Methods, 2)
	assert.Equal(t, 1, defaults(p))
	assert.Equal(t, a.ID, p.Methods[0].ID)
	assert.True(t, p.Methods[0].IsDefault)

	require.True(t, s.RemovePaymentMethod(a.ID))
	def, ok := s.DefaultMethod()
	require.True(t, ok)
	assert.Equal(t, b.ID, def.ID)

	require.True(t, s.RemovePaymentMethod(b.ID))
	p = s.Profile()
	assert.Empty(t, p.Methods)
	assert.False(t, p.HasProfile)
	assert.Equal(t, VariantEmpty, s.Variant())

	assert.False(t, s.RemovePaymentMethod(b.ID))
}

func TestRemoveNonDefaultKeepsDefault(t *testing.T) {
	s := newTestProfile(t, state.NewMemory())
	a := s.AddPaymentMethod(MethodCard, "Card •••• 1111", "", false)
	b := s.AddPaymentMethod(MethodPayPal, "PayPal Account", "", false)

	require.True(t, s.RemovePaymentMethod(b.ID))
	def, ok := s.DefaultMethod()
	require.True(t, ok)
	assert.Equal(t, a.ID, def.ID)
}

func TestMarkMethodUsed(t *testing.T) {
	kv := state.NewMemory()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := NewProfileStore(context.Background(), kv, Config{Now: func() time.Time { return now }, Logger: log.Discard()})
	m := s.AddPaymentMethod(MethodCard, "Card •••• 1111", "", false)

	now = now.Add(time.Hour)
	require.True(t, s.MarkMethodUsed(m.ID))
	def, _ := s.DefaultMethod()
	assert.Equal(t, now, def.LastUsed)
	assert.False(t, s.MarkMethodUsed("nope"))
}

func TestPersistsAndReloads(t *testing.T) {
	kv := state.NewMemory()
	s := newTestProfile(t, kv)
	m := s.AddPaymentMethod(MethodCard, "Visa •••• 4242", "12/26", true)
	s.UpdateMethodStatus(m.ID, StatusNeedsUpdate)

	reloaded := newTestProfile(t, kv)
	p := reloaded.Profile()
	require.Len(t, p.Methods, 1)
	assert.True(t, p.HasProfile)
	assert.Equal(t, StatusNeedsUpdate, p.Methods[0].Status)
	assert.Equal(t, VariantActive, reloaded.Variant())
}

func TestLoadRepairsDefaults(t *testing.T) {
	kv := state.NewMemory()
	raw, err := persist.Encode(Profile{Methods: []Method{
		{ID: "a", Type: MethodCard, Status: StatusVerified, IsDefault: true},
		{ID: "b", Type: MethodCard, Status: StatusVerified, IsDefault: true},
	}})
	require.NoError(t, err)
	require.NoError(t, kv.Put(context.Background(), DefaultKey, raw))

	p := newTestProfile(t, kv).Profile()
	assert.True(t, p.HasProfile)
	assert.Equal(t, 1, defaults(p))
	assert.True(t, p.Methods[0].IsDefault)
}

func TestClearAndSeedDemo(t *testing.T) {
	kv := state.NewMemory()
	s := newTestProfile(t, kv)

	var seen []Profile
	s.Subscribe(func(p Profile) { seen = append(seen, p) })

	assert.True(t, s.SeedDemo())
	assert.False(t, s.SeedDemo())
	def, ok := s.DefaultMethod()
	require.True(t, ok)
	assert.Equal(t, "Visa •••• 4242", def.DisplayName)
	assert.Equal(t, "12/26", def.ExpiryDate)

	s.Clear()
	assert.Equal(t, VariantEmpty, s.Variant())
	_, err := kv.Get(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, state.ErrNotFound)

	require.Len(t, seen, 2)
	assert.False(t, seen[1].HasProfile)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Card •••• 4242", DisplayName(MethodCard, "4242 4242 4242 4242"))
	assert.Equal(t, "PayPal Account", DisplayName(MethodPayPal, ""))
	assert.Equal(t, "iDEAL", DisplayName(MethodIDEAL, ""))
	assert.Equal(t, "Apple Pay", DisplayName(MethodMobilePay, ""))
	assert.Equal(t, "Bank Account", DisplayName(MethodBankTransfer, ""))
}

func TestSeedDemoConcurrentlyAddsOneCard(t *testing.T) {
	s := newTestProfile(t, state.NewMemory())

	var seeded sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		seeded.Add(1)
		go func(i int) {
			defer seeded.Done()
			results[i] = s.SeedDemo()
		}(i)
	}
	seeded.Wait()

	n := 0
	for _, ok := range results {
		if ok {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.Len(t, s.Profile().Methods, 1)
	assert.Equal(t, 1, defaults(s.Profile()))
}

func TestConcurrentChangesNotifyInOrder(t *testing.T) {
	s := newTestProfile(t, state.NewMemory())

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.Subscribe(func(p Profile) {
		if len(p.Methods) == 1 {
			once.Do(func() { close(entered) })
			<-release
		}
	})

	var mu sync.Mutex
	var counts []int
	s.Subscribe(func(p Profile) {
		mu.Lock()
		counts = append(counts, len(p.Methods))
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.AddPaymentMethod(MethodCard, "Visa •••• 4242", "12/26", true)
	}()
	<-entered
	go func() {
		defer wg.Done()
		s.AddPaymentMethod(MethodPayPal, "PayPal", "", false)
	}()

	assert.Equal(t, VariantActive, s.Variant())
	close(release)
	wg.Wait()

	assert.Equal(t, []int{1, 2}, counts)
}

func TestProfileVariantIsPure(t *testing.T) {
	assert.Equal(t, VariantEmpty, Profile{}.Variant())

	p := Profile{HasProfile: true, Methods: []Method{
		{ID: "a", Status: StatusVerified},
		{ID: "b", Status: StatusError, IsDefault: true},
	}}
	assert.Equal(t, VariantError, p.Variant())

	p.Methods[1].Status = StatusExpired
	assert.Equal(t, VariantExpired, p.Variant())

	p.Methods[1].Status = StatusNeedsUpdate
	assert.Equal(t, VariantActive, p.Variant())
}
