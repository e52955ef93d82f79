package models

// User is the identity returned by the auth gateway after a successful sign-in.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
