package models

import "time"

// User is the persisted account record. TokenVersion is a monotonic counter:
// it is snapshotted into every issued token and bumped on revocation, which
// kills all outstanding tokens for the account at once.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
