// Package auth implements the token service: issuing and verifying the two
// signed token classes (access and refresh). Both carry the same claims; the
// caller picks the secret and lifetime. Revocation is not handled here — it
// is the per-user TokenVersion counter owned by the users repository.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/avoronins/inkpost/internal/common"
)

// Claims embeds the registered claims and adds the user id and the
// TokenVersion snapshot taken at issuance.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"uid"`
	TokenVersion int    `json:"tv"`
}

// IssueToken signs a token for userID with the given secret and validity.
// The current TokenVersion is embedded so that verification can detect
// revocation by comparing it against the stored value. No side effects.
func IssueToken(userID string, tokenVersion int, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:       userID,
		TokenVersion: tokenVersion,
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns
// the decoded claims. Malformed, tampered or expired input yields a sentinel
// error (common.ErrTokenExpired or common.ErrInvalidToken), never a panic;
// callers must treat any error as unauthenticated.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
