package models

import "time"

// Token is the cached Discord OAuth token pair for one user.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
