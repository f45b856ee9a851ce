package filechecksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Calculate returns the hex encoded SHA-256 of data.
// Identical files imported under different names share a checksum.
func Calculate(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
