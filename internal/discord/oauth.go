package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	config "github.com/maheshrc27/scratchy/configs"
	"github.com/maheshrc27/scratchy/internal/models"
	"golang.org/x/oauth2"
)

const (
	authURL  = "https://discord.com/api/oauth2/authorize"
	tokenURL = "https://discord.com/api/oauth2/token"
	apiBase  = "https://discord.com/api/v10"
)

// ErrGrantInvalid means Discord rejected the grant itself (revoked or
// expired refresh token / authorization code). The user has to redo consent;
// retrying is pointless.
var ErrGrantInvalid = errors.New("oauth grant invalid or revoked")

// OAuthClient wraps the Discord OAuth2 token endpoint and the identity
// lookup used by the linked-roles web flow.
type OAuthClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*models.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.Token, error)
	CurrentUserID(ctx context.Context, accessToken string) (int64, error)
}

type oauthClient struct {
	cfg  oauth2.Config
	http *http.Client
}

func NewOAuthClient(cfg config.Config) OAuthClient {
	return &oauthClient{
		cfg: oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify", "role_connections.write"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *oauthClient) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (c *oauthClient) ExchangeCode(ctx context.Context, code string) (*models.Token, error) {
	token, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, mapTokenError(err)
	}
	return convertToken(token)
}

func (c *oauthClient) RefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	source := c.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, mapTokenError(err)
	}
	return convertToken(token)
}

func (c *oauthClient) CurrentUserID(ctx context.Context, accessToken string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/users/@me", nil)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("discord /users/@me returned status %d", resp.StatusCode))
		return 0, fmt.Errorf("discord returned status %d", resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return strconv.ParseInt(user.ID, 10, 64)
}

func convertToken(token *oauth2.Token) (*models.Token, error) {
	if token.RefreshToken == "" {
		return nil, errors.New("token response is missing refresh_token")
	}
	return &models.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}, nil
}

func mapTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode == "invalid_grant" {
		return ErrGrantInvalid
	}
	slog.Info(err.Error())
	return err
}
