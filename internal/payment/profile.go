// Package payment holds the stored payment profile and the checkout flow
// that pays with it.
package payment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mattjoyce/hearth/internal/persist"
	"github.com/mattjoyce/hearth/internal/store"
)

const DefaultKey = "payment_profile"

// Config configures a ProfileStore. Zero values take the defaults.
type Config struct {
	Key    string
	Now    func() time.Time
	Logger *slog.Logger
}

// ProfileStore keeps the payment methods. Methods are kept in the order they
// were added; exactly one is the default whenever any exist.
type ProfileStore struct {
	record   *persist.Record[Profile]
	notifier store.Notifier[Profile]
	now      func() time.Time
	logger   *slog.Logger

	// writeMu serializes each change with its notification, as in
	// store.Bounded.
	writeMu sync.Mutex
	mu      sync.Mutex
	profile Profile
}

// NewProfileStore builds the store and loads its record. A missing or
// corrupt record yields an empty profile.
func NewProfileStore(ctx context.Context, kv persist.KV, cfg Config) *ProfileStore {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &ProfileStore{
		record: persist.NewRecord[Profile](kv, cfg.Key, cfg.Logger),
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	if p, ok := s.record.Load(ctx); ok {
		s.profile = normalize(p)
	}
	return s
}

// normalize repairs a loaded record so the single-default invariant holds.
func normalize(p Profile) Profile {
	p.HasProfile = len(p.Methods) > 0
	seen := false
	for i := range p.Methods {
		if p.Methods[i].IsDefault {
			if seen {
				p.Methods[i].IsDefault = false
			}
			seen = true
		}
	}
	if !seen && len(p.Methods) > 0 {
		p.Methods[0].IsDefault = true
	}
	return p
}

// Profile returns a copy of the current profile.
func (s *ProfileStore) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.clone()
}

// DefaultMethod returns the default method, if any.
func (s *ProfileStore) DefaultMethod() (Method, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.defaultMethod()
}

// AddPaymentMethod appends a verified method. The first method, or any added
// with setAsDefault, becomes the default.
func (s *ProfileStore) AddPaymentMethod(t MethodType, displayName, expiry string, setAsDefault bool) Method {
	m := s.newMethod(t, displayName, expiry)
	s.mutate(func(p *Profile) bool {
		m.IsDefault = len(p.Methods) == 0 || setAsDefault
		if m.IsDefault {
			for i := range p.Methods {
				p.Methods[i].IsDefault = false
			}
		}
		p.Methods = append(p.Methods, m)
		p.HasProfile = true
		return true
	})
	s.logger.Info("payment method added", "id", m.ID, "type", t, "default", m.IsDefault)
	return m
}

func (s *ProfileStore) newMethod(t MethodType, displayName, expiry string) Method {
	return Method{
		ID:          "method-" + uuid.NewString(),
		Type:        t,
		DisplayName: displayName,
		Status:      StatusVerified,
		ExpiryDate:  expiry,
		LastUsed:    s.now().UTC(),
	}
}

// RemovePaymentMethod deletes a method. Removing the default promotes the
// first remaining method.
func (s *ProfileStore) RemovePaymentMethod(id string) bool {
	return s.mutate(func(p *Profile) bool {
		i := p.index(id)
		if i < 0 {
			return false
		}
		wasDefault := p.Methods[i].IsDefault
		p.Methods = append(p.Methods[:i], p.Methods[i+1:]...)
		if wasDefault && len(p.Methods) > 0 {
			p.Methods[0].IsDefault = true
		}
		p.HasProfile = len(p.Methods) > 0
		return true
	})
}

// SetDefaultMethod makes id the only default. Unknown ids leave the profile
// untouched.
func (s *ProfileStore) SetDefaultMethod(id string) bool {
	return s.mutate(func(p *Profile) bool {
		if p.index(id) < 0 {
			return false
		}
		for i := range p.Methods {
			p.Methods[i].IsDefault = p.Methods[i].ID == id
		}
		return true
	})
}

// UpdateMethodStatus sets the status of a method.
func (s *ProfileStore) UpdateMethodStatus(id string, status Status) bool {
	return s.mutate(func(p *Profile) bool {
		i := p.index(id)
		if i < 0 {
			return false
		}
		p.Methods[i].Status = status
		return true
	})
}

// MarkMethodUsed stamps a method's last use with the current time.
func (s *ProfileStore) MarkMethodUsed(id string) bool {
	now := s.now().UTC()
	return s.mutate(func(p *Profile) bool {
		i := p.index(id)
		if i < 0 {
			return false
		}
		p.Methods[i].LastUsed = now
		return true
	})
}

// HasValidProfile reports whether any stored method is verified.
func (s *ProfileStore) HasValidProfile() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.profile.HasProfile {
		return false
	}
	for _, m := range s.profile.Methods {
		if m.Status == StatusVerified {
			return true
		}
	}
	return false
}

// Variant classifies the profile from the default method's status. It is
// computed on every call and never stored.
func (s *ProfileStore) Variant() Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Variant()
}

// Variant classifies p from its default method's status.
func (p Profile) Variant() Variant {
	if !p.HasProfile || len(p.Methods) == 0 {
		return VariantEmpty
	}
	def, ok := p.defaultMethod()
	if !ok {
		return VariantEmpty
	}
	switch def.Status {
	case StatusError:
		return VariantError
	case StatusExpired:
		return VariantExpired
	}
	return VariantActive
}

// Clear deletes the stored profile.
func (s *ProfileStore) Clear() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.profile = Profile{}
	s.record.Remove()
	s.mu.Unlock()

	s.notifier.Notify(Profile{})
}

// SeedDemo adds a verified demo card when no profile exists. It reports
// whether the card was added.
func (s *ProfileStore) SeedDemo() bool {
	m := s.newMethod(MethodCard, "Visa •••• 4242", "12/26")
	seeded := s.mutate(func(p *Profile) bool {
		if p.HasProfile {
			return false
		}
		m.IsDefault = true
		p.Methods = []Method{m}
		p.HasProfile = true
		return true
	})
	if seeded {
		s.logger.Info("demo payment method seeded", "id", m.ID)
	}
	return seeded
}

// Subscribe registers fn to receive the profile after every change.
func (s *ProfileStore) Subscribe(fn func(Profile)) func() {
	return s.notifier.Subscribe(fn)
}

func (s *ProfileStore) mutate(fn func(p *Profile) bool) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.profile.clone()
	if !fn(&next) {
		s.mu.Unlock()
		return false
	}
	s.profile = next
	s.record.Save(s.profile)
	snapshot := s.profile.clone()
	s.mu.Unlock()

	s.notifier.Notify(snapshot)
	return true
}
