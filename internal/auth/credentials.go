// Package auth hashes passwords, signs and validates bearer tokens, and
// decides whether a principal may touch a resource.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bookkeeping/internal/config"
)

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// Credentials is the credential store: bcrypt for passwords, HMAC-signed JWT
// for access tokens. It is safe for concurrent use.
type Credentials struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

// NewCredentials builds a Credentials from the token section of the config.
func NewCredentials(cfg config.TokenConfig) (*Credentials, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("token secret is empty")
	}
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	return &Credentials{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}, nil
}

// HashPassword returns a salted bcrypt hash of password.
func (c *Credentials) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is a
// mismatch.
func (c *Credentials) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
