// Package cryptox holds the password hashing used for user credentials.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keyLen   = 32
)

// HashPassword derives an argon2id key from password and salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keyLen)
}

// VerifyPassword reports whether password hashes to want under salt.
// The comparison runs in constant time.
func VerifyPassword(password, salt, want []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, want) == 1
}
