package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/repository"
	"github.com/maheshrc27/scratchy/internal/scratch"
)

// In-memory doubles for the repository and client interfaces. Transactions
// are collapsed to direct calls; the transactional invariants themselves are
// enforced by the database and exercised here only at the logic level.

type fakeTransactor struct{}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(q repository.Querier) error) error {
	return fn(nil)
}

type fakeAccountRepository struct {
	discord map[int64]bool
	scratch map[string]*models.ScratchAccount
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		discord: make(map[int64]bool),
		scratch: make(map[string]*models.ScratchAccount),
	}
}

func (r *fakeAccountRepository) GetDiscordAccount(ctx context.Context, q repository.Querier, id int64) (*models.DiscordAccount, error) {
	if !r.discord[id] {
		return nil, nil
	}
	return &models.DiscordAccount{ID: id}, nil
}

func (r *fakeAccountRepository) CreateDiscordAccount(ctx context.Context, q repository.Querier, id int64) (*models.DiscordAccount, error) {
	r.discord[id] = true
	return &models.DiscordAccount{ID: id}, nil
}

func (r *fakeAccountRepository) GetScratchAccount(ctx context.Context, q repository.Querier, username string) (*models.ScratchAccount, error) {
	account, ok := r.scratch[strings.ToLower(username)]
	if !ok {
		return nil, nil
	}
	return account, nil
}

func (r *fakeAccountRepository) ListScratchAccounts(ctx context.Context, q repository.Querier, userID int64) ([]*models.ScratchAccount, error) {
	var accounts []*models.ScratchAccount
	for _, account := range r.scratch {
		if account.UserID == userID {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

func (r *fakeAccountRepository) CreateScratchAccount(ctx context.Context, q repository.Querier, username string, userID int64) (*models.ScratchAccount, error) {
	key := strings.ToLower(username)
	if _, exists := r.scratch[key]; exists {
		return nil, errors.New("duplicate key value violates unique constraint")
	}
	account := &models.ScratchAccount{Username: username, UserID: userID}
	r.scratch[key] = account
	return account, nil
}

func (r *fakeAccountRepository) TransferScratchAccounts(ctx context.Context, q repository.Querier, fromID, toID int64) ([]string, error) {
	var usernames []string
	for _, account := range r.scratch {
		if account.UserID == fromID {
			account.UserID = toID
			usernames = append(usernames, account.Username)
		}
	}
	return usernames, nil
}

type fakeTokenRepository struct {
	tokens map[int64]*models.Token
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{tokens: make(map[int64]*models.Token)}
}

func (r *fakeTokenRepository) Get(ctx context.Context, q repository.Querier, userID int64) (*models.Token, error) {
	token, ok := r.tokens[userID]
	if !ok {
		return nil, nil
	}
	copied := *token
	return &copied, nil
}

func (r *fakeTokenRepository) GetForUpdate(ctx context.Context, q repository.Querier, userID int64) (*models.Token, error) {
	return r.Get(ctx, q, userID)
}

func (r *fakeTokenRepository) Upsert(ctx context.Context, q repository.Querier, userID int64, token *models.Token) error {
	copied := *token
	r.tokens[userID] = &copied
	return nil
}

func (r *fakeTokenRepository) Delete(ctx context.Context, q repository.Querier, userID int64) error {
	delete(r.tokens, userID)
	return nil
}

type metadataRow struct {
	data      models.RoleConnectionData
	updatedAt time.Time
}

type fakeMetadataRepository struct {
	rows map[int64]*metadataRow
	now  func() time.Time
}

func newFakeMetadataRepository() *fakeMetadataRepository {
	return &fakeMetadataRepository{
		rows: make(map[int64]*metadataRow),
		now:  time.Now,
	}
}

func (r *fakeMetadataRepository) Get(ctx context.Context, q repository.Querier, userID int64) (*models.RoleConnectionData, error) {
	row, ok := r.rows[userID]
	if !ok {
		return nil, nil
	}
	copied := row.data
	return &copied, nil
}

func (r *fakeMetadataRepository) Upsert(ctx context.Context, q repository.Querier, userID int64, data *models.RoleConnectionData) error {
	r.rows[userID] = &metadataRow{data: *data, updatedAt: r.now()}
	return nil
}

func (r *fakeMetadataRepository) Ensure(ctx context.Context, q repository.Querier, userID int64) error {
	if _, ok := r.rows[userID]; !ok {
		r.rows[userID] = &metadataRow{updatedAt: time.Unix(0, 0)}
	}
	return nil
}

func (r *fakeMetadataRepository) GetOldest(ctx context.Context, q repository.Querier) (int64, time.Time, bool, error) {
	var (
		oldestID int64
		oldestAt time.Time
		found    bool
	)
	for id, row := range r.rows {
		if !found || row.updatedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = row.updatedAt
			found = true
		}
	}
	return oldestID, oldestAt, found, nil
}

type fakeOAuthClient struct {
	refreshFunc func(refreshToken string) (*models.Token, error)
}

func (c *fakeOAuthClient) AuthCodeURL(state string) string { return "https://example.com/" + state }

func (c *fakeOAuthClient) ExchangeCode(ctx context.Context, code string) (*models.Token, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeOAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*models.Token, error) {
	return c.refreshFunc(refreshToken)
}

func (c *fakeOAuthClient) CurrentUserID(ctx context.Context, accessToken string) (int64, error) {
	return 0, errors.New("not implemented")
}

type fakeRoleConnectionClient struct {
	puts []*models.RoleConnection
	err  error
}

func (c *fakeRoleConnectionClient) PutRoleConnection(ctx context.Context, accessToken string, rc *models.RoleConnection) error {
	if c.err != nil {
		return c.err
	}
	c.puts = append(c.puts, rc)
	return nil
}

func (c *fakeRoleConnectionClient) RegisterMetadata(ctx context.Context, fields []models.MetadataField) error {
	return nil
}

type fakeScratchClient struct {
	dbUsers  map[string]*scratch.DBUser
	err      error
	comments []scratch.Comment
}

func (c *fakeScratchClient) GetUser(ctx context.Context, username string) (*scratch.User, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeScratchClient) GetDBUser(ctx context.Context, username string) (*scratch.DBUser, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.dbUsers[strings.ToLower(username)], nil
}

func (c *fakeScratchClient) GetStudioComments(ctx context.Context, studioID int64) ([]scratch.Comment, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.comments, nil
}
