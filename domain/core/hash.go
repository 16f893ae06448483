package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeRequestHash fingerprints a chart request. Set-valued parts are sorted
// so that selection order does not change the fingerprint.
func ComputeRequestHash(parts map[string][]string) Hash {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		values := append([]string(nil), parts[key]...)
		sort.Strings(values)
		data.WriteString(key)
		data.WriteByte('=')
		for _, v := range values {
			data.WriteString(v)
			data.WriteByte('\x1f')
		}
		data.WriteByte('\x1e')
	}

	return NewHash([]byte(data.String()))
}
