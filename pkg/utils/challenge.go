package utils

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/scratchy/internal/models"
)

// challengeVersion tags the claim layout so old tokens are rejected outright
// after a format change instead of being misread.
const challengeVersion = 1

type ChallengeClaims struct {
	Version  int    `json:"ver"`
	Username string `json:"usr"`
	Code     string `json:"cod"`
	jwt.RegisteredClaims
}

// SignChallenge encodes a verification challenge as a compact signed token.
// The token is the only place the challenge lives; nothing is stored
// server-side between issuing the code and verifying the comment.
func SignChallenge(secretKey string, challenge *models.Challenge) (string, error) {
	claims := ChallengeClaims{
		Version:  challengeVersion,
		Username: challenge.Username,
		Code:     challenge.Code,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(challenge.UserID, 10),
			IssuedAt: jwt.NewNumericDate(challenge.IssuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return signed, nil
}

// ParseChallenge validates the signature and version and returns the carried
// challenge. Expiry is not enforced here; the validator reports Expired
// itself so the caller can tell the user to request a new code.
func ParseChallenge(secretKey, tokenString string) (*models.Challenge, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ChallengeClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	claims, ok := token.Claims.(*ChallengeClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid challenge token")
	}
	if claims.Version != challengeVersion {
		return nil, errors.New("unsupported challenge token version")
	}
	if claims.IssuedAt == nil {
		return nil, errors.New("challenge token is missing issued-at")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errors.New("challenge token has an invalid subject")
	}

	return &models.Challenge{
		Username: claims.Username,
		UserID:   userID,
		Code:     claims.Code,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}
