package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/scratchy/internal/models"
)

type AccountRepository interface {
	GetDiscordAccount(ctx context.Context, q Querier, id int64) (*models.DiscordAccount, error)
	CreateDiscordAccount(ctx context.Context, q Querier, id int64) (*models.DiscordAccount, error)
	GetScratchAccount(ctx context.Context, q Querier, username string) (*models.ScratchAccount, error)
	ListScratchAccounts(ctx context.Context, q Querier, userID int64) ([]*models.ScratchAccount, error)
	CreateScratchAccount(ctx context.Context, q Querier, username string, userID int64) (*models.ScratchAccount, error)
	TransferScratchAccounts(ctx context.Context, q Querier, fromID, toID int64) ([]string, error)
}

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) querier(q Querier) Querier {
	if q != nil {
		return q
	}
	return r.db
}

func (r *accountRepository) GetDiscordAccount(ctx context.Context, q Querier, id int64) (*models.DiscordAccount, error) {
	query := `SELECT id FROM discord_accounts WHERE id = $1`

	var account models.DiscordAccount
	err := r.querier(q).QueryRowContext(ctx, query, id).Scan(&account.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) CreateDiscordAccount(ctx context.Context, q Querier, id int64) (*models.DiscordAccount, error) {
	query := `INSERT INTO discord_accounts (id) VALUES ($1) RETURNING id`

	var account models.DiscordAccount
	err := r.querier(q).QueryRowContext(ctx, query, id).Scan(&account.ID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) GetScratchAccount(ctx context.Context, q Querier, username string) (*models.ScratchAccount, error) {
	query := `SELECT username, user_id FROM scratch_accounts WHERE lower(username) = lower($1)`

	var account models.ScratchAccount
	err := r.querier(q).QueryRowContext(ctx, query, username).Scan(&account.Username, &account.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) ListScratchAccounts(ctx context.Context, q Querier, userID int64) ([]*models.ScratchAccount, error) {
	query := `SELECT username, user_id FROM scratch_accounts WHERE user_id = $1`

	rows, err := r.querier(q).QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.ScratchAccount
	for rows.Next() {
		var account models.ScratchAccount
		if err := rows.Scan(&account.Username, &account.UserID); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return accounts, nil
}

func (r *accountRepository) CreateScratchAccount(ctx context.Context, q Querier, username string, userID int64) (*models.ScratchAccount, error) {
	query := `INSERT INTO scratch_accounts (username, user_id) VALUES ($1, $2) RETURNING username, user_id`

	var account models.ScratchAccount
	err := r.querier(q).QueryRowContext(ctx, query, username, userID).Scan(&account.Username, &account.UserID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) TransferScratchAccounts(ctx context.Context, q Querier, fromID, toID int64) ([]string, error) {
	query := `
		UPDATE scratch_accounts
		SET user_id = $2
		WHERE user_id = $1
		RETURNING username
	`

	rows, err := r.querier(q).QueryContext(ctx, query, fromID, toID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		usernames = append(usernames, username)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return usernames, nil
}
