// Package persist reads and writes one serializable record per namespaced key.
//
// Every failure is logged and degrades to the zero state: a missing, corrupt
// or unreadable record loads as "absent", and a failed write leaves the
// in-memory state authoritative. Nothing here returns an error to store code.
package persist

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"

	"github.com/mattjoyce/hearth/internal/state"
)

//go:generate mockgen -destination=mocks/mock_kv.go -package=mocks github.com/mattjoyce/hearth/internal/persist KV

// KV is the durable key-value store a Record writes through to.
type KV interface {
	Get(ctx context.Context, namespace string) ([]byte, error)
	Put(ctx context.Context, namespace string, value []byte) error
	Delete(ctx context.Context, namespace string) error
}

const envelopeVersion = 1

// DefaultTimeout bounds a single read or write.
const DefaultTimeout = 2 * time.Second

// ErrCorrupt marks a stored record whose digest or payload does not decode.
var ErrCorrupt = errors.New("persist: corrupt record")

type envelope struct {
	Version int             `json:"v"`
	Digest  string          `json:"digest"`
	Data    json.RawMessage `json:"data"`
}

// Record is the persistence adapter for a single namespaced value of type T.
type Record[T any] struct {
	kv      KV
	key     string
	logger  *slog.Logger
	timeout time.Duration
}

func NewRecord[T any](kv KV, key string, logger *slog.Logger) *Record[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Record[T]{
		kv:      kv,
		key:     key,
		logger:  logger,
		timeout: DefaultTimeout,
	}
}

// Key returns the namespaced key the record lives under.
func (r *Record[T]) Key() string { return r.key }

// Load returns the stored value. ok is false when the record is missing or
// could not be read or decoded; the cause is logged.
func (r *Record[T]) Load(ctx context.Context) (v T, ok bool) {
	if r.kv == nil {
		return v, false
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.kv.Get(ctx, r.key)
	if errors.Is(err, state.ErrNotFound) {
		return v, false
	}
	if err != nil {
		r.logger.Warn("persisted record unreadable, starting empty", "error", err)
		return v, false
	}

	v, err = Decode[T](raw)
	if err != nil {
		r.logger.Warn("persisted record discarded, starting empty", "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

// Save writes v through to the durable store.
func (r *Record[T]) Save(v T) {
	if r.kv == nil {
		return
	}
	raw, err := Encode(v)
	if err != nil {
		r.logger.Error("encode record failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.kv.Put(ctx, r.key, raw); err != nil {
		r.logger.Error("save record failed, keeping in-memory state", "error", err)
	}
}

// Remove deletes the record.
func (r *Record[T]) Remove() {
	if r.kv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.kv.Delete(ctx, r.key); err != nil {
		r.logger.Error("remove record failed", "error", err)
	}
}

// Encode wraps v in a checksummed envelope.
func Encode[T any](v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return json.Marshal(envelope{
		Version: envelopeVersion,
		Digest:  digest(data),
		Data:    data,
	})
}

// Decode verifies and unwraps an envelope. Payloads written without an
// envelope are decoded directly.
func Decode[T any](raw []byte) (T, error) {
	var v T
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Version > 0 && env.Digest != "" {
		if digest(env.Data) != env.Digest {
			return v, fmt.Errorf("%w: digest mismatch", ErrCorrupt)
		}
		raw = env.Data
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return v, nil
}

func digest(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
