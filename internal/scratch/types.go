package scratch

import "time"

// User is the profile shape returned by api.scratch.mit.edu.
type User struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	ScratchTeam bool    `json:"scratchteam"`
	History     History `json:"history"`
	Profile     Profile `json:"profile"`
}

type History struct {
	Joined time.Time `json:"joined"`
}

type Profile struct {
	ID      int64   `json:"id"`
	Status  string  `json:"status"`
	Bio     string  `json:"bio"`
	Country *string `json:"country"`
}

// DBUser is the extended profile shape returned by ScratchDB, carrying the
// follower statistics and Scratcher status the role-connection metadata is
// derived from.
type DBUser struct {
	Username   string      `json:"username"`
	Joined     time.Time   `json:"joined"`
	Status     *string     `json:"status"`
	Country    *string     `json:"country"`
	Statistics *Statistics `json:"statistics"`
}

// StatusScratcher is ScratchDB's value for accounts promoted beyond
// "New Scratcher".
const StatusScratcher = "Scratcher"

func (u *DBUser) IsScratcher() bool {
	return u.Status != nil && *u.Status == StatusScratcher
}

func (u *DBUser) FollowerCount() int64 {
	if u.Statistics == nil {
		return 0
	}
	return u.Statistics.Followers
}

type Statistics struct {
	Loves     int64 `json:"loves"`
	Favorites int64 `json:"favorites"`
	Comments  int64 `json:"comments"`
	Views     int64 `json:"views"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// Comment is one public comment in the verification studio.
type Comment struct {
	ID              int64     `json:"id"`
	Content         string    `json:"content"`
	DatetimeCreated time.Time `json:"datetime_created"`
	Visibility      string    `json:"visibility"`
	Author          Author    `json:"author"`
}

type Author struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	ScratchTeam bool   `json:"scratchteam"`
}
