// Package auth verifies the access tokens clients present on join-room.
package auth

import (
	"errors"
	"fmt"

	"github.com/dkeye/telesync/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret       = errors.New("jwt secret is empty")
	ErrInvalidToken   = errors.New("invalid access token")
	ErrInvalidSubject = errors.New("token subject is not a user id")
)

// AccessClaims carries the user id in the standard subject claim.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// JWTVerifier checks HMAC-signed access tokens issued by the account
// service.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

func (v *JWTVerifier) VerifyToken(token string) (domain.UserID, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := domain.ParseUserID(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSubject, err)
	}
	return id, nil
}
