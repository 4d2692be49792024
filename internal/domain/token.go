package domain

import "time"

// RefreshToken is a persisted opaque credential that lets a user obtain a new
// access token without re-entering a password. The value is a random UUID.
type RefreshToken struct {
	ID        int64
	Value     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer redeemable at the given time.
func (t RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenPair is what a successful authentication or refresh returns to the
// client. It is never persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
