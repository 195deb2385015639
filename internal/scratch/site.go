package scratch

import (
	"fmt"
	"strings"
)

// ProfileURL returns the public profile page for a username.
func ProfileURL(username string) string {
	return fmt.Sprintf("https://scratch.mit.edu/users/%s", username)
}

// StudioCommentsURL returns the public comment page of a studio.
func StudioCommentsURL(studioID int64) string {
	return fmt.Sprintf("https://scratch.mit.edu/studios/%d/comments", studioID)
}

var usernamePrefixes = []string{
	"https://scratch.mit.edu/users/",
	"https://api.scratch.mit.edu/users/",
	"https://scratchdb.lefty.one/v3/user/info/",
	"https://scratchstats.com/",
}

// ExtractUsername accepts a bare username or any common profile URL form and
// returns the username, or "" when the input is not a valid username.
func ExtractUsername(value string) string {
	username := extract(value, usernamePrefixes)
	if !UsernameIsValid(username) {
		return ""
	}
	return username
}

func extract(value string, prefixes []string) string {
	for _, prefix := range prefixes {
		rest, ok := strings.CutPrefix(value, prefix)
		if !ok {
			continue
		}
		if i := strings.IndexAny(rest, "/?#"); i >= 0 {
			rest = rest[:i]
		}
		return rest
	}
	return value
}

// UsernameIsValid reports whether a string is a possible Scratch username:
// at most 20 characters, ASCII alphanumerics plus dash and underscore.
func UsernameIsValid(username string) bool {
	if len(username) == 0 || len(username) > 20 {
		return false
	}
	for _, ch := range username {
		switch {
		case ch >= 'a' && ch <= 'z':
		case ch >= 'A' && ch <= 'Z':
		case ch >= '0' && ch <= '9':
		case ch == '-' || ch == '_':
		default:
			return false
		}
	}
	return true
}
