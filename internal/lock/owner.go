// Package lock makes one process the sole owner of a state database.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// ErrHeld is returned when another process owns the database.
var ErrHeld = errors.New("state database is owned by another process")

// Owner is an exclusive flock(2) on "<db>.lock". The lock lives as long as the
// file descriptor stays open.
type Owner struct {
	path string
	f    *os.File
}

// LockPath returns the lock file guarding dbPath.
func LockPath(dbPath string) string {
	return dbPath + ".lock"
}

// Acquire takes the owner lock for dbPath without blocking and records the
// current PID in the lock file.
func Acquire(dbPath string) (*Owner, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	lockPath := LockPath(dbPath)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			if pid, ok := Holder(dbPath); ok {
				return nil, fmt.Errorf("%w (pid %d)", ErrHeld, pid)
			}
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	if err := writePID(f); err != nil {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
		return nil, err
	}
	return &Owner{path: lockPath, f: f}, nil
}

func writePID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate lock file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("seek lock file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return fmt.Errorf("write pid: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync lock file: %w", err)
	}
	return nil
}

// Holder reads the PID recorded in the lock file for dbPath.
func Holder(dbPath string) (int, bool) {
	data, err := os.ReadFile(LockPath(dbPath))
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

func (o *Owner) Path() string { return o.path }

// Release drops the lock. Calling it more than once is harmless.
func (o *Owner) Release() error {
	if o == nil || o.f == nil {
		return nil
	}
	_ = syscall.Flock(int(o.f.Fd()), syscall.LOCK_UN)
	err := o.f.Close()
	o.f = nil
	return err
}
