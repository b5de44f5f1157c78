package domain

import "time"

// User is the canonical stored account record.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Public returns a copy of the user without the credential hash.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
