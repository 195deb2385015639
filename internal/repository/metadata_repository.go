package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/scratchy/internal/models"
)

type MetadataRepository interface {
	Get(ctx context.Context, q Querier, userID int64) (*models.RoleConnectionData, error)
	// Upsert writes the metadata row and always bumps updated_at, even when
	// the values are unchanged. The background scheduler's fairness depends
	// on updated_at meaning "last checked", not "last changed".
	Upsert(ctx context.Context, q Querier, userID int64, data *models.RoleConnectionData) error
	// Ensure seeds an empty row with updated_at at the epoch so a freshly
	// authorized user is picked up by the next scheduler pass.
	Ensure(ctx context.Context, q Querier, userID int64) error
	// GetOldest returns the user whose metadata was checked least recently.
	GetOldest(ctx context.Context, q Querier) (int64, time.Time, bool, error)
}

type metadataRepository struct {
	db *sql.DB
}

func NewMetadataRepository(db *sql.DB) MetadataRepository {
	return &metadataRepository{db: db}
}

func (r *metadataRepository) querier(q Querier) Querier {
	if q != nil {
		return q
	}
	return r.db
}

func (r *metadataRepository) Get(ctx context.Context, q Querier, userID int64) (*models.RoleConnectionData, error) {
	query := `SELECT scratcher, followers, joined FROM metadata WHERE id = $1`

	var data models.RoleConnectionData
	err := r.querier(q).QueryRowContext(ctx, query, userID).
		Scan(&data.Scratcher, &data.Followers, &data.Joined)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &data, nil
}

func (r *metadataRepository) Upsert(ctx context.Context, q Querier, userID int64, data *models.RoleConnectionData) error {
	query := `
		INSERT INTO metadata (id, scratcher, followers, joined, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			scratcher = EXCLUDED.scratcher,
			followers = EXCLUDED.followers,
			joined = EXCLUDED.joined,
			updated_at = now()
	`

	_, err := r.querier(q).ExecContext(ctx, query, userID, data.Scratcher, data.Followers, data.Joined)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *metadataRepository) Ensure(ctx context.Context, q Querier, userID int64) error {
	query := `
		INSERT INTO metadata (id, scratcher, followers, joined, updated_at)
		VALUES ($1, false, 0, now(), to_timestamp(0))
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.querier(q).ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *metadataRepository) GetOldest(ctx context.Context, q Querier) (int64, time.Time, bool, error) {
	query := `SELECT id, updated_at FROM metadata ORDER BY updated_at ASC LIMIT 1`

	var (
		userID    int64
		updatedAt time.Time
	)
	err := r.querier(q).QueryRowContext(ctx, query).Scan(&userID, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, time.Time{}, false, nil
		}
		slog.Info(err.Error())
		return 0, time.Time{}, false, err
	}
	return userID, updatedAt, true, nil
}
