package models

// DiscordAccount is a shadow row that anchors referential integrity for
// everything keyed by a Discord user. It is created lazily on first link.
type DiscordAccount struct {
	ID int64 `json:"id"`
}

// ScratchAccount links one Scratch username to the Discord user that owns it.
// A username has at most one owner at any time; one owner may hold many.
type ScratchAccount struct {
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}
