// Package auth implements the stateless credentials gophauth hands out:
// signed session tokens, CSRF double-submit tokens, and email verification
// tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionCodec issues and validates HS256 session tokens whose subject is
// the account ID. It holds the signing secret and is safe for concurrent use.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCodec returns a codec signing with secret. Tokens expire ttl
// after issue.
func NewSessionCodec(secret []byte, ttl time.Duration) (*SessionCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return &SessionCodec{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL reports the lifetime given to new tokens.
func (c *SessionCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for accountID.
func (c *SessionCodec) Issue(accountID uuid.UUID) (string, time.Time, error) {
	now := c.now()
	expiresAt := now.Add(c.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Truncate(time.Second), nil
}

// Validate checks the signature, algorithm and expiry of token and returns
// the account ID it was issued for. Expired tokens yield
// common.ErrTokenExpired; every other failure yields common.ErrInvalidToken.
func (c *SessionCodec) Validate(token string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, common.ErrTokenExpired
		}
		return uuid.Nil, common.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, common.ErrInvalidToken
	}
	return id, nil
}
