// Package auth issues and verifies JWT bearer tokens and provides the
// request middleware that resolves them to accounts.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"shuddhudara/internal/config"
)

var (
	// ErrInvalidToken is returned for malformed, forged, or expired tokens
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenIssuer creates and verifies bearer tokens for account identifiers.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer from JWT_SECRET and JWT_EXPIRE env vars.
func NewTokenIssuer() *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(config.MustGetEnv("JWT_SECRET")),
		ttl:    config.GetEnvDuration("JWT_EXPIRE", 7*24*time.Hour),
	}
}

// NewTokenIssuerWithSecret creates an issuer with an explicit secret; used in
// tests and by callers that manage configuration themselves.
func NewTokenIssuerWithSecret(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given account identifier.
func (t *TokenIssuer) Issue(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the account identifier it carries.
func (t *TokenIssuer) Verify(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.secret, nil
		})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
