package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/maheshrc27/scratchy/internal/discord"
	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/repository"
)

// ErrUserNotAuthorized means there is no usable OAuth token for the user:
// either none was ever stored or Discord revoked the grant. The user has to
// go through the linked-roles consent flow again.
var ErrUserNotAuthorized = errors.New("user has not authorized the application")

// TokenService manages the cached Discord OAuth token of each user.
type TokenService interface {
	// GetActiveToken returns a non-expired access token, refreshing it
	// against Discord first when needed. Read, refresh and persist happen in
	// one transaction; the row lock keeps two concurrent refreshes from both
	// spending the same single-use refresh token.
	GetActiveToken(ctx context.Context, userID int64) (*models.Token, error)
	// StoreToken persists a token obtained from the authorization-code
	// grant, creating the shadow account row and seeding the metadata row so
	// the background scheduler notices the user.
	StoreToken(ctx context.Context, userID int64, token *models.Token) error
}

type tokenService struct {
	tx    repository.Transactor
	ar    repository.AccountRepository
	tr    repository.TokenRepository
	mr    repository.MetadataRepository
	oauth discord.OAuthClient
	now   func() time.Time
}

func NewTokenService(
	tx repository.Transactor,
	ar repository.AccountRepository,
	tr repository.TokenRepository,
	mr repository.MetadataRepository,
	oauth discord.OAuthClient) TokenService {
	return &tokenService{
		tx:    tx,
		ar:    ar,
		tr:    tr,
		mr:    mr,
		oauth: oauth,
		now:   time.Now,
	}
}

func (s *tokenService) GetActiveToken(ctx context.Context, userID int64) (*models.Token, error) {
	var active *models.Token

	err := s.tx.WithinTx(ctx, func(q repository.Querier) error {
		token, err := s.tr.GetForUpdate(ctx, q, userID)
		if err != nil {
			return err
		}
		if token == nil {
			return ErrUserNotAuthorized
		}

		if !token.Expired(s.now()) {
			active = token
			return nil
		}

		refreshed, err := s.oauth.RefreshToken(ctx, token.RefreshToken)
		if err != nil {
			if errors.Is(err, discord.ErrGrantInvalid) {
				// The grant is gone for good; drop the cached token and
				// commit so the user is asked to redo consent.
				if deleteErr := s.tr.Delete(ctx, q, userID); deleteErr != nil {
					return deleteErr
				}
				return nil
			}
			// Transient failure: roll back and leave the cached token alone.
			return err
		}

		if err := s.tr.Upsert(ctx, q, userID, refreshed); err != nil {
			return err
		}
		active = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if active == nil {
		slog.Info("deleted token with revoked grant")
		return nil, ErrUserNotAuthorized
	}
	return active, nil
}

func (s *tokenService) StoreToken(ctx context.Context, userID int64, token *models.Token) error {
	return s.tx.WithinTx(ctx, func(q repository.Querier) error {
		account, err := s.ar.GetDiscordAccount(ctx, q, userID)
		if err != nil {
			return err
		}
		if account == nil {
			if _, err := s.ar.CreateDiscordAccount(ctx, q, userID); err != nil {
				return err
			}
		}

		if err := s.tr.Upsert(ctx, q, userID, token); err != nil {
			return err
		}
		return s.mr.Ensure(ctx, q, userID)
	})
}
