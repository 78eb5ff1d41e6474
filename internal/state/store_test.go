package state

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattjoyce/hearth/internal/storage"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "hearth.db")
	db, err := storage.OpenSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}

func TestStoreGetMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	if _, err := s.Get(context.Background(), "research-tool-activities"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorePutReplacesValue(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	if err := s.Put(ctx, "ns", []byte(`[1]`)); err != nil {
		t.Fatalf("Put (1): %v", err)
	}
	if err := s.Put(ctx, "ns", []byte(`[2]`)); err != nil {
		t.Fatalf("Put (2): %v", err)
	}
	got, err := s.Get(ctx, "ns")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[2]` {
		t.Fatalf("unexpected value: %s", got)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "ns" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	if err := s.Put(ctx, "ns", []byte(`{}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, "ns"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "ns"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "ns"); err != nil {
		t.Fatalf("Delete of missing namespace: %v", err)
	}
}

func TestStoreValueSizeLimit(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	big := []byte("[\"" + strings.Repeat("a", DefaultMaxValueBytes) + "\"]")
	if err := s.Put(context.Background(), "p", big); err == nil {
		t.Fatalf("expected size limit error, got nil")
	}
}

func TestMemoryIsolatesCallerBuffers(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	buf := []byte(`[1]`)
	if err := m.Put(ctx, "ns", buf); err != nil {
		t.Fatalf("Put: %v", err)
	}
	buf[1] = '9'

	got, err := m.Get(ctx, "ns")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `[1]` {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}
	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
