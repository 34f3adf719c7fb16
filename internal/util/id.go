package util

import (
	"crypto/rand"
	"encoding/hex"
)

const idByteLen = 16

// NewID returns a random 128-bit hex identifier, optionally prefixed. Used
// for object-storage keys and other identifiers that live outside the
// database sequence space.
func NewID(prefix string) string {
	buf := make([]byte, idByteLen)
	_, _ = rand.Read(buf)
	id := hex.EncodeToString(buf)
	if prefix != "" {
		id = prefix + "_" + id
	}
	return id
}
