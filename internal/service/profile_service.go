package service

import (
	"context"
	"errors"
	"sync"

	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/scratch"
)

// ErrNoAccountsFound means none of the linked usernames resolved to an
// existing Scratch profile.
var ErrNoAccountsFound = errors.New("no scratch accounts found")

// ProfileService fetches the extended Scratch profile for every linked
// account of one user, one request per account.
type ProfileService interface {
	Fetch(ctx context.Context, accounts []*models.ScratchAccount) ([]*scratch.DBUser, error)
}

type profileService struct {
	sc scratch.Client
}

func NewProfileService(sc scratch.Client) ProfileService {
	return &profileService{sc: sc}
}

func (s *profileService) Fetch(ctx context.Context, accounts []*models.ScratchAccount) ([]*scratch.DBUser, error) {
	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	var mu sync.Mutex
	var profiles []*scratch.DBUser
	var fetchErr error

	for _, account := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(account *models.ScratchAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			profile, err := s.sc.GetDBUser(ctx, account.Username)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if fetchErr == nil {
					fetchErr = err
				}
				return
			}
			// A nil profile means the account does not exist upstream yet;
			// it is skipped rather than failing the whole aggregation.
			if profile != nil {
				profiles = append(profiles, profile)
			}
		}(account)
	}

	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(profiles) == 0 {
		return nil, ErrNoAccountsFound
	}
	return profiles, nil
}
