package auth

import (
	"crypto/subtle"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
)

const (
	CSRFTokenLength = 32
	DefaultCSRFTTL  = 24 * time.Hour
)

// CSRFPair is one issued double-submit token. Server is delivered in the
// HttpOnly cookie and Client in the script-readable one; both carry the
// same value.
type CSRFPair struct {
	Server    string
	Client    string
	ExpiresAt time.Time
}

// CSRFManager issues and checks double-submit CSRF tokens. The server keeps
// no record of issued tokens: expiry is carried by the cookie lifetime, so
// an expired ambient cookie is simply absent at validation time.
type CSRFManager struct {
	ttl      time.Duration
	now      func() time.Time
	generate func(int) (string, error)
}

func NewCSRFManager(ttl time.Duration) *CSRFManager {
	if ttl <= 0 {
		ttl = DefaultCSRFTTL
	}
	return &CSRFManager{ttl: ttl, now: time.Now, generate: cryptox.RandomAlphanumeric}
}

func (m *CSRFManager) TTL() time.Duration { return m.ttl }

// Issue returns a fresh token pair.
func (m *CSRFManager) Issue() (CSRFPair, error) {
	token, err := m.generate(CSRFTokenLength)
	if err != nil {
		return CSRFPair{}, err
	}
	return CSRFPair{Server: token, Client: token, ExpiresAt: m.now().Add(m.ttl)}, nil
}

// Validate reports whether the ambient (cookie) copy and the claimed
// (header) copy are both present and identical.
func (m *CSRFManager) Validate(ambient, claimed string) bool {
	if ambient == "" || claimed == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(ambient), []byte(claimed)) == 1
}
