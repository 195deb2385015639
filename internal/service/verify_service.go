package service

import (
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/scratch"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// ChallengeTTL is how long a user has to post the code after it is
	// generated.
	ChallengeTTL = 5 * time.Minute

	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	codeLength   = 20
)

type VerifyStatus int

const (
	// StatusVerified: a comment with the exact code was posted by the
	// claimed account after the challenge was issued.
	StatusVerified VerifyStatus = iota
	// StatusExpired: the challenge TTL ran out before validation.
	StatusExpired
	// StatusWrongAccount: the code was posted, but by a different account.
	StatusWrongAccount
	// StatusWrongCode: the claimed account commented, but not the code.
	StatusWrongCode
	// StatusCommentNotFound: nothing relevant was posted since issuance.
	StatusCommentNotFound
)

// VerifyResult carries the status plus the mismatching author or text for
// the user-facing message.
type VerifyResult struct {
	Status VerifyStatus
	// Author is the actual comment author when Status is StatusWrongAccount.
	Author string
	// Text is the actual comment text when Status is StatusWrongCode.
	Text string
}

// VerifyService implements the public-comment ownership proof. It is
// stateless; the challenge round-trips through a signed token held by the
// client.
type VerifyService interface {
	Generate(username string, userID int64) (*models.Challenge, error)
	Validate(comments []scratch.Comment, challenge *models.Challenge, now time.Time) VerifyResult
}

type verifyService struct{}

func NewVerifyService() VerifyService {
	return &verifyService{}
}

func (s *verifyService) Generate(username string, userID int64) (*models.Challenge, error) {
	code, err := gonanoid.Generate(codeAlphabet, codeLength)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &models.Challenge{
		Username: username,
		UserID:   userID,
		Code:     code,
		IssuedAt: time.Now(),
	}, nil
}

// Validate checks the comment feed against the challenge. Mismatches are
// ranked: a code match under the wrong account outranks a comment by the
// right account with the wrong text, so a user pasting the code from the
// wrong login hears about the account, not the code.
func (s *verifyService) Validate(comments []scratch.Comment, challenge *models.Challenge, now time.Time) VerifyResult {
	if now.After(challenge.IssuedAt.Add(ChallengeTTL)) {
		return VerifyResult{Status: StatusExpired}
	}

	var (
		codeAuthor   string
		codeFound    bool
		accountText  string
		accountFound bool
	)

	for _, comment := range comments {
		// Comments from before the challenge cannot prove anything; an old
		// code sitting in the feed must not be replayable.
		if !comment.DatetimeCreated.After(challenge.IssuedAt) {
			continue
		}

		text := strings.TrimSpace(comment.Content)
		matchesCode := text == challenge.Code
		matchesAccount := strings.EqualFold(comment.Author.Username, challenge.Username)

		if matchesCode && matchesAccount {
			return VerifyResult{Status: StatusVerified}
		}
		if matchesCode && !codeFound {
			codeFound = true
			codeAuthor = comment.Author.Username
		}
		if matchesAccount && !accountFound {
			accountFound = true
			accountText = text
		}
	}

	if codeFound {
		return VerifyResult{Status: StatusWrongAccount, Author: codeAuthor}
	}
	if accountFound {
		return VerifyResult{Status: StatusWrongCode, Text: accountText}
	}
	return VerifyResult{Status: StatusCommentNotFound}
}
