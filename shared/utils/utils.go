package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// HashLength is the length of a hex-encoded object hash.
const HashLength = 40

// HashContent returns the hex SHA-1 of content. Object identity everywhere
// in the repository derives from this one function.
func HashContent(content []byte) string {
	hash := sha1.Sum(content)
	return hex.EncodeToString(hash[:])
}

// IsHash reports whether s is a well-formed object hash.
func IsHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Timestamp returns the current UTC time in the fixed format stored in
// commit records.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// MapToSlice collects the values of m in unspecified order.
func MapToSlice[K comparable, V any](m map[K]V) []V {
	s := make([]V, 0, len(m))
	for _, v := range m {
		s = append(s, v)
	}
	return s
}
