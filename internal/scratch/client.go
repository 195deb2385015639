package scratch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	apiBaseURL = "https://api.scratch.mit.edu"
	dbBaseURL  = "https://scratchdb.lefty.one/v3"
)

// ErrUpstream marks transient Scratch failures (network errors and 5xx
// responses). Callers may retry; anything else is terminal.
var ErrUpstream = errors.New("scratch upstream error")

// Client is the read-only surface of the Scratch API and ScratchDB used by
// the linking and reconciliation flows. A 404 means "no such user", not an
// error, so those lookups return nil without an error.
type Client interface {
	GetUser(ctx context.Context, username string) (*User, error)
	GetDBUser(ctx context.Context, username string) (*DBUser, error)
	GetStudioComments(ctx context.Context, studioID int64) ([]Comment, error)
}

type client struct {
	http    *http.Client
	apiBase string
	dbBase  string
}

func NewClient() Client {
	return &client{
		http:    &http.Client{Timeout: 30 * time.Second},
		apiBase: apiBaseURL,
		dbBase:  dbBaseURL,
	}
}

func (c *client) GetUser(ctx context.Context, username string) (*User, error) {
	var user User
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/users/%s", c.apiBase, username), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (c *client) GetDBUser(ctx context.Context, username string) (*DBUser, error) {
	var user DBUser
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/user/info/%s", c.dbBase, username), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (c *client) GetStudioComments(ctx context.Context, studioID int64) ([]Comment, error) {
	var comments []Comment
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/studios/%d/comments", c.apiBase, studioID), &comments)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("studio %d not found", studioID)
	}
	return comments, nil
}

func (c *client) getJSON(ctx context.Context, url string, v any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 500:
		slog.Info(fmt.Sprintf("scratch returned status %d for %s", resp.StatusCode, url))
		return false, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("scratch returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return true, nil
}
