package auth

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
)

const VerificationTokenLength = 8

// VerificationTokens produces the short codes embedded in verification
// links and compares submitted codes against stored ones.
type VerificationTokens struct {
	generate func(int) (string, error)
}

func NewVerificationTokens() *VerificationTokens {
	return &VerificationTokens{generate: cryptox.RandomAlphanumeric}
}

func (v *VerificationTokens) Generate() (string, error) {
	return v.generate(VerificationTokenLength)
}

// Matches compares in constant time. An empty stored token (already
// consumed) never matches.
func (v *VerificationTokens) Matches(stored, submitted string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
