package models

import "time"

// RoleConnectionData holds the derived profile attributes published to
// Discord and cached locally between reconciliations.
type RoleConnectionData struct {
	Scratcher bool      `json:"scratcher"`
	Followers int64     `json:"followers"`
	Joined    time.Time `json:"joined"`
}

// Equal compares the published fields. Joined is compared by instant, not by
// location, because it round-trips through Postgres and JSON.
func (d *RoleConnectionData) Equal(other *RoleConnectionData) bool {
	if other == nil {
		return false
	}
	return d.Scratcher == other.Scratcher &&
		d.Followers == other.Followers &&
		d.Joined.Equal(other.Joined)
}

// RoleConnection is the body of Discord's
// PUT /users/@me/applications/{id}/role-connection.
type RoleConnection struct {
	PlatformName     string             `json:"platform_name"`
	PlatformUsername string             `json:"platform_username"`
	Metadata         RoleConnectionData `json:"metadata"`
}

// Role connection metadata field types, per Discord's documentation.
const (
	MetadataTypeIntegerLessThanOrEqual     = 1
	MetadataTypeIntegerGreaterThanOrEqual  = 2
	MetadataTypeIntegerEqual               = 3
	MetadataTypeIntegerNotEqual            = 4
	MetadataTypeDatetimeLessThanOrEqual    = 5
	MetadataTypeDatetimeGreaterThanOrEqual = 6
	MetadataTypeBooleanEqual               = 7
	MetadataTypeBooleanNotEqual            = 8
)

// MetadataField describes one role-connection metadata key registered with
// Discord for this application.
type MetadataField struct {
	Type        int    `json:"type"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
