//go:build !darwin && !linux

package storage

// Detection is unsupported here; report an unknown local filesystem.
func filesystemName(string) (string, error) {
	return "unknown", nil
}
