package models

import "time"

// RefreshToken is the single session slot of a user: the only refresh token
// value currently accepted for that user.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
