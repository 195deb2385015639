package service

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/scratchy/internal/discord"
	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/repository"
	"github.com/maheshrc27/scratchy/internal/scratch"
)

const platformName = "Scratch"

// SyncService recomputes one user's role-connection metadata from their
// linked Scratch accounts and pushes it to Discord when it changed.
type SyncService interface {
	Reconcile(ctx context.Context, userID int64) (*models.RoleConnection, error)
}

type syncService struct {
	tx repository.Transactor
	mr repository.MetadataRepository
	ls LinkService
	ts TokenService
	ps ProfileService
	rc discord.RoleConnectionClient
}

func NewSyncService(
	tx repository.Transactor,
	mr repository.MetadataRepository,
	ls LinkService,
	ts TokenService,
	ps ProfileService,
	rc discord.RoleConnectionClient) SyncService {
	return &syncService{
		tx: tx,
		mr: mr,
		ls: ls,
		ts: ts,
		ps: ps,
		rc: rc,
	}
}

// ComputeMetadata derives the published attributes from a non-empty profile
// set. Scratcher status and join date aggregate across all accounts (any
// Scratcher, oldest join date); followers and the displayed username come
// from the single account with the most followers. On a follower tie the
// first profile wins.
func ComputeMetadata(profiles []*scratch.DBUser) *models.RoleConnection {
	scratcher := false
	joined := profiles[0].Joined
	representative := profiles[0]

	for _, profile := range profiles {
		if profile.IsScratcher() {
			scratcher = true
		}
		if profile.Joined.Before(joined) {
			joined = profile.Joined
		}
		if profile.FollowerCount() > representative.FollowerCount() {
			representative = profile
		}
	}

	return &models.RoleConnection{
		PlatformName:     platformName,
		PlatformUsername: representative.Username,
		Metadata: models.RoleConnectionData{
			Scratcher: scratcher,
			Followers: representative.FollowerCount(),
			Joined:    joined,
		},
	}
}

func (s *syncService) Reconcile(ctx context.Context, userID int64) (*models.RoleConnection, error) {
	token, err := s.ts.GetActiveToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.ls.ListLinkedAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.ps.Fetch(ctx, accounts)
	if err != nil {
		return nil, err
	}

	roleConnection := ComputeMetadata(profiles)

	// The local row is written even when nothing changed: updated_at must
	// record "last checked" or the scheduler would revisit this user first
	// forever.
	var previous *models.RoleConnectionData
	err = s.tx.WithinTx(ctx, func(q repository.Querier) error {
		previous, err = s.mr.Get(ctx, q, userID)
		if err != nil {
			return err
		}
		return s.mr.Upsert(ctx, q, userID, &roleConnection.Metadata)
	})
	if err != nil {
		return nil, err
	}

	if roleConnection.Metadata.Equal(previous) {
		slog.Info("role connection metadata unchanged, skipping publish")
		return roleConnection, nil
	}

	if err := s.rc.PutRoleConnection(ctx, token.AccessToken, roleConnection); err != nil {
		return nil, err
	}
	return roleConnection, nil
}
