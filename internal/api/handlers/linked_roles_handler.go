package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/scratchy/configs"
	"github.com/maheshrc27/scratchy/internal/discord"
	"github.com/maheshrc27/scratchy/internal/queue"
	"github.com/maheshrc27/scratchy/internal/service"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// LinkedRolesHandler implements the Discord linked-roles consent flow:
// redirect to Discord with a state cookie, then exchange the returned code,
// persist the token and kick off a first sync.
type LinkedRolesHandler struct {
	cfg    config.Config
	oauth  discord.OAuthClient
	ts     service.TokenService
	client *asynq.Client
}

func NewLinkedRolesHandler(cfg config.Config, oauth discord.OAuthClient, ts service.TokenService, client *asynq.Client) *LinkedRolesHandler {
	return &LinkedRolesHandler{
		cfg:    cfg,
		oauth:  oauth,
		ts:     ts,
		client: client,
	}
}

func (h *LinkedRolesHandler) RedirectToOAuth(c *fiber.Ctx) error {
	state, err := gonanoid.New()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.StateCookieName,
		Value:    state,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(15 * time.Minute),
	})

	return c.Redirect(h.oauth.AuthCodeURL(state))
}

func (h *LinkedRolesHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(h.cfg.StateCookieName) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "state mismatch",
		})
	}

	token, err := h.oauth.ExchangeCode(c.Context(), c.Query("code"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "authorization failed",
		})
	}

	userID, err := h.oauth.CurrentUserID(c.Context(), token.AccessToken)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "could not resolve discord user",
		})
	}

	if err := h.ts.StoreToken(c.Context(), userID, token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	if err := queue.EnqueueSyncUser(h.client, queue.SyncUserPayload{UserID: userID}); err != nil {
		slog.Info(err.Error())
	}

	return c.JSON(fiber.Map{
		"message": "account connected, you can close this tab",
	})
}
