package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// remoteFilesystems lists filesystem names on which SQLite file locking is
// unreliable. A state database there could be opened by two owners at once.
var remoteFilesystems = map[string]bool{
	"afpfs":  true,
	"cifs":   true,
	"nfs":    true,
	"smbfs":  true,
	"smb2":   true,
	"webdav": true,
}

// ErrRemoteFilesystem is returned when the state database would live on a
// network mount.
var ErrRemoteFilesystem = errors.New("state database on network filesystem")

type fsDetector func(path string) (string, error)

// CheckLocalFilesystem reports whether path (or its nearest existing parent)
// sits on a local filesystem.
func CheckLocalFilesystem(path string) error {
	return checkLocalFilesystem(path, filesystemName)
}

func checkLocalFilesystem(path string, detect fsDetector) error {
	if path == "" {
		return fmt.Errorf("sqlite path is empty")
	}

	probe, err := existingAncestor(path)
	if err != nil {
		return fmt.Errorf("resolve state path %q: %w", path, err)
	}

	name, err := detect(probe)
	if err != nil {
		return fmt.Errorf("detect filesystem for %q: %w", probe, err)
	}
	if remoteFilesystems[strings.ToLower(strings.TrimSpace(name))] {
		return fmt.Errorf("%w: %q is on %q; point state.path (or --db) at local disk", ErrRemoteFilesystem, path, name)
	}
	return nil
}

func existingAncestor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("absolute path: %w", err)
	}
	for candidate := abs; ; {
		_, err := os.Stat(candidate)
		switch {
		case err == nil:
			return candidate, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(candidate)
		if parent == candidate {
			return "", fmt.Errorf("no existing parent for %q", abs)
		}
		candidate = parent
	}
}
