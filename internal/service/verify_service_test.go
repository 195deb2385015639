package service

import (
	"testing"
	"time"

	"github.com/maheshrc27/scratchy/internal/models"
	"github.com/maheshrc27/scratchy/internal/scratch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comment(text, author string, postedAt time.Time) scratch.Comment {
	return scratch.Comment{
		Content:         text,
		DatetimeCreated: postedAt,
		Author:          scratch.Author{Username: author},
	}
}

func TestGenerateCode(t *testing.T) {
	s := NewVerifyService()

	first, err := s.Generate("u1", 100)
	require.NoError(t, err)
	second, err := s.Generate("u1", 100)
	require.NoError(t, err)

	assert.Len(t, first.Code, 20)
	for _, ch := range first.Code {
		isAlnum := (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		assert.True(t, isAlnum, "code contains %q", ch)
	}
	assert.NotEqual(t, first.Code, second.Code)
	assert.WithinDuration(t, time.Now(), first.IssuedAt, time.Second)
}

func TestValidateVerified(t *testing.T) {
	s := NewVerifyService()
	issued := time.Now()
	ch := &models.Challenge{Username: "u1", Code: "c1", IssuedAt: issued}

	comments := []scratch.Comment{
		comment("  c1  ", "U1", issued.Add(time.Minute)),
	}

	result := s.Validate(comments, ch, issued.Add(2*time.Minute))
	assert.Equal(t, StatusVerified, result.Status)
}

func TestValidateExpired(t *testing.T) {
	s := NewVerifyService()
	issued := time.Now()
	ch := &models.Challenge{Username: "u1", Code: "c1", IssuedAt: issued}

	comments := []scratch.Comment{
		comment("c1", "u1", issued.Add(time.Minute)),
	}

	result := s.Validate(comments, ch, issued.Add(ChallengeTTL).Add(time.Second))
	assert.Equal(t, StatusExpired, result.Status)
}

func TestValidateIgnoresOlderComments(t *testing.T) {
	s := NewVerifyService()
	issued := time.Now()
	ch := &models.Challenge{Username: "u1", Code: "c1", IssuedAt: issued}

	// A matching comment from before (or at) issuance must not count.
	comments := []scratch.Comment{
		comment("c1", "u1", issued.Add(-time.Minute)),
		comment("c1", "u1", issued),
	}

	result := s.Validate(comments, ch, issued.Add(time.Minute))
	assert.Equal(t, StatusCommentNotFound, result.Status)
}

func TestValidateWrongAccountPrecedence(t *testing.T) {
	s := NewVerifyService()
	issued := time.Now()
	ch := &models.Challenge{Username: "u1", Code: "c1", IssuedAt: issued}

	// Both a code match by the wrong account and a comment by the right
	// account exist; the account mismatch is reported.
	comments := []scratch.Comment{
		comment("c1", "u2", issued.Add(time.Minute)),
		comment("c2", "u1", issued.Add(time.Minute)),
	}

	result := s.Validate(comments, ch, issued.Add(2*time.Minute))
	assert.Equal(t, StatusWrongAccount, result.Status)
	assert.Equal(t, "u2", result.Author)
}

func TestValidateWrongCode(t *testing.T) {
	s := NewVerifyService()
	issued := time.Now()
	ch := &models.Challenge{Username: "u1", Code: "c1", IssuedAt: issued}

	comments := []scratch.Comment{
		comment("oops", "u1", issued.Add(time.Minute)),
	}

	result := s.Validate(comments, ch, issued.Add(2*time.Minute))
	assert.Equal(t, StatusWrongCode, result.Status)
	assert.Equal(t, "oops", result.Text)
}

func TestValidateCommentNotFound(t *testing.T) {
	s := NewVerifyService()
	issued := time.Now()
	ch := &models.Challenge{Username: "u1", Code: "c1", IssuedAt: issued}

	comments := []scratch.Comment{
		comment("hello", "u2", issued.Add(time.Minute)),
	}

	result := s.Validate(comments, ch, issued.Add(2*time.Minute))
	assert.Equal(t, StatusCommentNotFound, result.Status)
}
