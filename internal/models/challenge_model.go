package models

import "time"

// Challenge is the ephemeral proof-of-ownership state issued when a user
// starts linking a Scratch account. It is never persisted server-side; the
// whole struct round-trips through a signed client-visible token.
type Challenge struct {
	Username string    `json:"username"`
	UserID   int64     `json:"user_id"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}
