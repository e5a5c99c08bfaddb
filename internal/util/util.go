// Package util holds small internal helpers shared across packages. It lives
// in internal to avoid committing to public API stability prematurely.
package util

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID generates a unique identifier for executions and telemetry records.
func NewID() string { return uuid.NewString() }

// HashBytes returns the hex encoded SHA-256 digest of data. Used as a cheap
// content identity for definitions and schema sources.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Truncate shortens a string to maxLen bytes on a clean UTF-8 boundary,
// appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	end := 0
	for i := range s {
		if i > maxLen {
			break
		}
		end = i
	}
	return s[:end] + "..."
}
