package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/scratchy/internal/models"
)

type TokenRepository interface {
	Get(ctx context.Context, q Querier, userID int64) (*models.Token, error)
	// GetForUpdate locks the token row for the rest of the transaction so
	// two concurrent refreshes cannot both consume a single-use refresh token.
	GetForUpdate(ctx context.Context, q Querier, userID int64) (*models.Token, error)
	Upsert(ctx context.Context, q Querier, userID int64, token *models.Token) error
	Delete(ctx context.Context, q Querier, userID int64) error
}

type tokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) querier(q Querier) Querier {
	if q != nil {
		return q
	}
	return r.db
}

func (r *tokenRepository) get(ctx context.Context, q Querier, userID int64, forUpdate bool) (*models.Token, error) {
	query := `SELECT access_token, refresh_token, expires_at FROM tokens WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var token models.Token
	err := r.querier(q).QueryRowContext(ctx, query, userID).
		Scan(&token.AccessToken, &token.RefreshToken, &token.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Get(ctx context.Context, q Querier, userID int64) (*models.Token, error) {
	return r.get(ctx, q, userID, false)
}

func (r *tokenRepository) GetForUpdate(ctx context.Context, q Querier, userID int64) (*models.Token, error) {
	return r.get(ctx, q, userID, true)
}

func (r *tokenRepository) Upsert(ctx context.Context, q Querier, userID int64, token *models.Token) error {
	query := `
		INSERT INTO tokens (id, access_token, refresh_token, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at
	`

	_, err := r.querier(q).ExecContext(ctx, query, userID, token.AccessToken, token.RefreshToken, token.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *tokenRepository) Delete(ctx context.Context, q Querier, userID int64) error {
	query := `DELETE FROM tokens WHERE id = $1`

	_, err := r.querier(q).ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
