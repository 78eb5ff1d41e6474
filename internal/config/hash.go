package config

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Fingerprint returns the BLAKE3 hash of raw config bytes. It is logged at
// startup so two runs can be compared.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
