package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"bookkeeping/internal/domain"
)

// Claims is the payload of an access token: sub, id and exp.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Username returns the sub claim.
func (c Claims) Username() string { return c.Subject }

// NewClaims returns claims for the given identity. Expiry is filled in by
// IssueToken.
func NewClaims(username, userID string) Claims {
	return Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: username},
	}
}

// IssueToken signs claims with the configured secret. The expiry is always
// reset to now plus the configured lifetime.
func (c *Credentials) IssueToken(claims Claims) (string, error) {
	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies tokenStr. Every failure, including an
// expired token or missing sub/id, is reported as domain.ErrUnauthorized.
func (c *Credentials) ValidateToken(tokenStr string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return Claims{}, fmt.Errorf("%w: %s", domain.ErrUnauthorized, err.Error())
	}
	if !token.Valid {
		return Claims{}, domain.ErrUnauthorized
	}
	if claims.Subject == "" || claims.UserID == "" {
		return Claims{}, fmt.Errorf("%w: missing identity claims", domain.ErrUnauthorized)
	}
	return claims, nil
}
