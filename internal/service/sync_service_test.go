package service

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/scratch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scratcher(s string) *string { return &s }

func TestComputeMetadata(t *testing.T) {
	joined2020 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	joined2021 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	profiles := []*scratch.DBUser{
		{Username: "p1", Joined: joined2020, Statistics: &scratch.Statistics{Followers: 10}},
		{Username: "p2", Joined: joined2021, Status: scratcher(scratch.StatusScratcher), Statistics: &scratch.Statistics{Followers: 50}},
	}

	rc := ComputeMetadata(profiles)

	assert.True(t, rc.Metadata.Scratcher, "any Scratcher account sets the flag")
	assert.Equal(t, joined2020, rc.Metadata.Joined, "oldest join date wins")
	assert.Equal(t, int64(50), rc.Metadata.Followers, "followers come from the representative")
	assert.Equal(t, "p2", rc.PlatformUsername, "username comes from the representative")
	assert.Equal(t, "Scratch", rc.PlatformName)
}

func TestComputeMetadataFollowerTieFirstWins(t *testing.T) {
	joined := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	profiles := []*scratch.DBUser{
		{Username: "first", Joined: joined, Statistics: &scratch.Statistics{Followers: 10}},
		{Username: "second", Joined: joined, Statistics: &scratch.Statistics{Followers: 10}},
	}

	rc := ComputeMetadata(profiles)
	assert.Equal(t, "first", rc.PlatformUsername)
}

func TestComputeMetadataMissingStatistics(t *testing.T) {
	joined := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	profiles := []*scratch.DBUser{
		{Username: "only", Joined: joined},
	}

	rc := ComputeMetadata(profiles)
	assert.Equal(t, int64(0), rc.Metadata.Followers)
	assert.False(t, rc.Metadata.Scratcher)
}

type syncFixture struct {
	service  SyncService
	metadata *fakeMetadataRepository
	putter   *fakeRoleConnectionClient
}

func newSyncFixture(t *testing.T, profiles map[string]*scratch.DBUser) *syncFixture {
	t.Helper()

	accountRepo := newFakeAccountRepository()
	linkService := NewLinkService(&fakeTransactor{}, accountRepo)
	for username := range profiles {
		require.NoError(t, linkService.Link(context.Background(), username, 100))
	}

	tokenRepo := newFakeTokenRepository()
	tokenRepo.tokens[100] = &models.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	metadataRepo := newFakeMetadataRepository()
	tokenService := NewTokenService(&fakeTransactor{}, accountRepo, tokenRepo, metadataRepo, &fakeOAuthClient{})

	putter := &fakeRoleConnectionClient{}

	return &syncFixture{
		service: NewSyncService(
			&fakeTransactor{},
			metadataRepo,
			linkService,
			tokenService,
			NewProfileService(&fakeScratchClient{dbUsers: profiles}),
			putter,
		),
		metadata: metadataRepo,
		putter:   putter,
	}
}

func TestReconcilePublishesOnChangeOnly(t *testing.T) {
	f := newSyncFixture(t, map[string]*scratch.DBUser{
		"alice": {
			Username:   "alice",
			Joined:     time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
			Status:     scratcher(scratch.StatusScratcher),
			Statistics: &scratch.Statistics{Followers: 42},
		},
	})

	_, err := f.service.Reconcile(context.Background(), 100)
	require.NoError(t, err)
	firstCheckedAt := f.metadata.rows[100].updatedAt

	_, err = f.service.Reconcile(context.Background(), 100)
	require.NoError(t, err)
	secondCheckedAt := f.metadata.rows[100].updatedAt

	assert.Len(t, f.putter.puts, 1, "unchanged metadata must not be re-published")
	assert.True(t, secondCheckedAt.After(firstCheckedAt), "updated_at must advance on every pass")
	assert.Equal(t, int64(42), f.putter.puts[0].Metadata.Followers)
}

func TestReconcileNotAuthorized(t *testing.T) {
	f := newSyncFixture(t, map[string]*scratch.DBUser{
		"alice": {Username: "alice", Joined: time.Now()},
	})

	_, err := f.service.Reconcile(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotAuthorized)
	assert.Empty(t, f.putter.puts)
}

func TestReconcileNoProfiles(t *testing.T) {
	f := newSyncFixture(t, map[string]*scratch.DBUser{})

	// Authorized but without any linked account resolving upstream.
	_, err := f.service.Reconcile(context.Background(), 100)
	assert.ErrorIs(t, err, ErrNoAccountsFound)
	assert.NotContains(t, f.metadata.rows, int64(100), "failed pass must not advance updated_at")
}
