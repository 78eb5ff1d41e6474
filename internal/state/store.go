package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultMaxValueBytes caps a single namespaced record.
const DefaultMaxValueBytes = 1 << 20 // 1 MiB

// ErrNotFound is returned when a namespace has no stored value.
var ErrNotFound = errors.New("state: namespace not found")

// Store is a namespaced key-value store backed by the kv_store SQLite table.
type Store struct {
	db            *sql.DB
	maxValueBytes int
	now           func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:            db,
		maxValueBytes: DefaultMaxValueBytes,
		now:           time.Now,
	}
}

// Get returns the raw value stored under namespace, or ErrNotFound.
func (s *Store) Get(ctx context.Context, namespace string) ([]byte, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is empty")
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_store WHERE namespace = ?;", namespace).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read namespace %q: %w", namespace, err)
	}
	return raw, nil
}

// Put replaces the value stored under namespace.
func (s *Store) Put(ctx context.Context, namespace string, value []byte) error {
	if namespace == "" {
		return fmt.Errorf("namespace is empty")
	}
	if len(value) > s.maxValueBytes {
		return fmt.Errorf("value for %q exceeds max size (%d bytes)", namespace, s.maxValueBytes)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_store(namespace, value, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(namespace) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, namespace, value, now)
	if err != nil {
		return fmt.Errorf("upsert namespace %q: %w", namespace, err)
	}
	return nil
}

// Delete removes namespace. Deleting a missing namespace is not an error.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is empty")
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE namespace = ?;", namespace); err != nil {
		return fmt.Errorf("delete namespace %q: %w", namespace, err)
	}
	return nil
}

// Keys lists stored namespaces in lexical order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT namespace FROM kv_store ORDER BY namespace;")
	if err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var ns string
		if err := rows.Scan(&ns); err != nil {
			return nil, fmt.Errorf("scan namespace: %w", err)
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}
