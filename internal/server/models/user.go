// Package models holds the server's persistence records.
package models

import "time"

// User is an account row. PasswordHash is argon2id(password, Salt).
type User struct {
	ID           string
	Email        string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
