package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/maheshrc27/scratchy/configs"
	"github.com/maheshrc27/scratchy/internal/models"
)

// RoleConnectionClient publishes per-user role-connection metadata and
// registers the application-wide metadata schema.
type RoleConnectionClient interface {
	PutRoleConnection(ctx context.Context, accessToken string, rc *models.RoleConnection) error
	RegisterMetadata(ctx context.Context, fields []models.MetadataField) error
}

type roleConnectionClient struct {
	cfg  config.Config
	http *http.Client
}

func NewRoleConnectionClient(cfg config.Config) RoleConnectionClient {
	return &roleConnectionClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *roleConnectionClient) PutRoleConnection(ctx context.Context, accessToken string, rc *models.RoleConnection) error {
	url := fmt.Sprintf("%s/users/@me/applications/%s/role-connection", apiBase, c.cfg.DiscordClientID)
	return c.put(ctx, url, "Bearer "+accessToken, rc)
}

func (c *roleConnectionClient) RegisterMetadata(ctx context.Context, fields []models.MetadataField) error {
	url := fmt.Sprintf("%s/applications/%s/role-connections/metadata", apiBase, c.cfg.DiscordClientID)
	return c.put(ctx, url, "Bot "+c.cfg.DiscordBotToken, fields)
}

func (c *roleConnectionClient) put(ctx context.Context, url, authorization string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info(fmt.Sprintf("discord PUT %s returned status %d", url, resp.StatusCode))
		return fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
	return nil
}

// MetadataFields is the schema registered with Discord at startup. Guild
// admins build role requirements on these three keys.
func MetadataFields() []models.MetadataField {
	return []models.MetadataField{
		{
			Type:        models.MetadataTypeBooleanEqual,
			Key:         "scratcher",
			Name:        "Scratcher",
			Description: "At least one of the user's accounts has the Scratcher status",
		},
		{
			Type:        models.MetadataTypeIntegerGreaterThanOrEqual,
			Key:         "followers",
			Name:        "Followers",
			Description: "The highest number of followers among the user's accounts",
		},
		{
			Type:        models.MetadataTypeDatetimeGreaterThanOrEqual,
			Key:         "joined",
			Name:        "Joined",
			Description: "Creation date of the user's oldest account",
		},
	}
}
