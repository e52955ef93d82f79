package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates size random bytes and returns them hex-encoded,
// so the resulting string is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns n cryptographically random bytes.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes b in place. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
