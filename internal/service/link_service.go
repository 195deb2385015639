package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/repository"
)

var (
	// ErrAlreadyLinkedToYou means the username already resolves to the
	// requesting user.
	ErrAlreadyLinkedToYou = errors.New("account is already linked to you")
	// ErrNotLinked means a transfer was requested for a username nobody owns.
	ErrNotLinked = errors.New("account is not linked to anyone")
)

// AlreadyLinkedToOtherError means the username is owned by a different user.
type AlreadyLinkedToOtherError struct {
	OwnerID int64
}

func (e *AlreadyLinkedToOtherError) Error() string {
	return fmt.Sprintf("account is already linked to user %d", e.OwnerID)
}

// LinkService owns the "one Scratch account, one owner" invariant. Every
// mutating operation runs inside a single transaction so the uniqueness
// check and the insert/reassign cannot be split by a concurrent call.
type LinkService interface {
	Link(ctx context.Context, username string, userID int64) error
	// Transfer reassigns every account owned by username's current owner to
	// userID, returning the previous owner and the moved usernames.
	Transfer(ctx context.Context, username string, userID int64) (int64, []string, error)
	ListLinkedAccounts(ctx context.Context, userID int64) ([]*models.ScratchAccount, error)
	LookupByUsername(ctx context.Context, username string) (*models.ScratchAccount, error)
}

type linkService struct {
	tx repository.Transactor
	ar repository.AccountRepository
}

func NewLinkService(tx repository.Transactor, ar repository.AccountRepository) LinkService {
	return &linkService{
		tx: tx,
		ar: ar,
	}
}

func (s *linkService) Link(ctx context.Context, username string, userID int64) error {
	return s.tx.WithinTx(ctx, func(q repository.Querier) error {
		existing, err := s.ar.GetScratchAccount(ctx, q, username)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.UserID == userID {
				return ErrAlreadyLinkedToYou
			}
			return &AlreadyLinkedToOtherError{OwnerID: existing.UserID}
		}

		if err := s.ensureDiscordAccount(ctx, q, userID); err != nil {
			return err
		}

		_, err = s.ar.CreateScratchAccount(ctx, q, username, userID)
		return err
	})
}

func (s *linkService) Transfer(ctx context.Context, username string, userID int64) (int64, []string, error) {
	var (
		oldOwnerID int64
		moved      []string
	)

	err := s.tx.WithinTx(ctx, func(q repository.Querier) error {
		existing, err := s.ar.GetScratchAccount(ctx, q, username)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotLinked
		}
		if existing.UserID == userID {
			return ErrAlreadyLinkedToYou
		}
		oldOwnerID = existing.UserID

		if err := s.ensureDiscordAccount(ctx, q, userID); err != nil {
			return err
		}

		moved, err = s.ar.TransferScratchAccounts(ctx, q, oldOwnerID, userID)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return oldOwnerID, moved, nil
}

func (s *linkService) ListLinkedAccounts(ctx context.Context, userID int64) ([]*models.ScratchAccount, error) {
	return s.ar.ListScratchAccounts(ctx, nil, userID)
}

func (s *linkService) LookupByUsername(ctx context.Context, username string) (*models.ScratchAccount, error) {
	return s.ar.GetScratchAccount(ctx, nil, username)
}

func (s *linkService) ensureDiscordAccount(ctx context.Context, q repository.Querier, userID int64) error {
	account, err := s.ar.GetDiscordAccount(ctx, q, userID)
	if err != nil {
		return err
	}
	if account == nil {
		if _, err := s.ar.CreateDiscordAccount(ctx, q, userID); err != nil {
			return err
		}
	}
	return nil
}
