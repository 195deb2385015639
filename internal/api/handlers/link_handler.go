package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	config "github.com/maheshrc27/scratchy/configs"
	"github.com/maheshrc27/scratchy/internal/queue"
	"github.com/maheshrc27/scratchy/internal/scratch"
	"github.com/maheshrc27/scratchy/internal/service"
	"github.com/maheshrc27/scratchy/pkg/utils"
)

// LinkHandler exposes the two steps of the account-linking flow to the
// interaction layer: start (issue a challenge code) and verify (check the
// studio comment and write the link).
type LinkHandler struct {
	cfg    config.Config
	ls     service.LinkService
	vs     service.VerifyService
	sc     scratch.Client
	client *asynq.Client
}

func NewLinkHandler(
	cfg config.Config,
	ls service.LinkService,
	vs service.VerifyService,
	sc scratch.Client,
	client *asynq.Client) *LinkHandler {
	return &LinkHandler{
		cfg:    cfg,
		ls:     ls,
		vs:     vs,
		sc:     sc,
		client: client,
	}
}

type startLinkRequest struct {
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
}

type verifyLinkRequest struct {
	Challenge string `json:"challenge"`
	UserID    int64  `json:"user_id"`
}

func (h *LinkHandler) StartLink(c *fiber.Ctx) error {
	var req startLinkRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	username := scratch.ExtractUsername(req.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid username",
		})
	}

	existing, err := h.ls.LookupByUsername(c.Context(), username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	if existing != nil {
		if existing.UserID == req.UserID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "account is already linked to you",
			})
		}
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    "account is already linked to another user",
			"owner_id": existing.UserID,
		})
	}

	user, err := h.sc.GetUser(c.Context(), username)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "scratch is unavailable, try again later",
		})
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "scratch user not found",
		})
	}

	// Use the canonical capitalization from the profile, not the input.
	challenge, err := h.vs.Generate(user.Username, req.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	signed, err := utils.SignChallenge(h.cfg.SecretKey, challenge)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.JSON(fiber.Map{
		"code":       challenge.Code,
		"challenge":  signed,
		"studio_url": scratch.StudioCommentsURL(h.cfg.VerifyStudioID),
		"expires_in": int(service.ChallengeTTL.Seconds()),
	})
}

func (h *LinkHandler) VerifyLink(c *fiber.Ctx) error {
	var req verifyLinkRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	challenge, err := utils.ParseChallenge(h.cfg.SecretKey, req.Challenge)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid challenge",
		})
	}
	if challenge.UserID != req.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "this challenge belongs to another user",
		})
	}

	comments, err := h.sc.GetStudioComments(c.Context(), h.cfg.VerifyStudioID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "scratch is unavailable, try again later",
		})
	}

	result := h.vs.Validate(comments, challenge, time.Now())
	switch result.Status {
	case service.StatusExpired:
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "code expired, request a new one",
		})
	case service.StatusWrongAccount:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "the code was posted by a different account",
			"author": result.Author,
		})
	case service.StatusWrongCode:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "the comment does not match the code",
			"text":  result.Text,
		})
	case service.StatusCommentNotFound:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "no matching comment found",
		})
	}

	moved := []string{challenge.Username}

	err = h.ls.Link(c.Context(), challenge.Username, req.UserID)
	if err != nil {
		// The account verified fine but already belongs to someone else:
		// this is the re-verification path, so every account of the previous
		// owner moves to the verified user.
		var linkedToOther *service.AlreadyLinkedToOtherError
		if errors.As(err, &linkedToOther) {
			_, moved, err = h.ls.Transfer(c.Context(), challenge.Username, req.UserID)
		}
		if err != nil {
			if errors.Is(err, service.ErrAlreadyLinkedToYou) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "account is already linked to you",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	if err := queue.EnqueueSyncUser(h.client, queue.SyncUserPayload{UserID: req.UserID}); err != nil {
		slog.Info(err.Error())
	}

	return c.JSON(fiber.Map{
		"linked": moved,
	})
}
