package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cheapConfig() HasherConfig {
	return HasherConfig{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(cheapConfig())
	require.NoError(t, err)
	return h
}

func TestHash_VerifyRoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=8192,t=1,p=1$"), digest)
	assert.True(t, h.Verify("correct horse battery staple", digest))
	assert.False(t, h.Verify("correct horse battery stapler", digest))
}

func TestHash_SaltedPerCall(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	a, err := h.Hash("pw")
	require.NoError(t, err)
	b, err := h.Hash("pw")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("pw", a))
	assert.True(t, h.Verify("pw", b))
}

func TestHash_EmptyPasswordStillHashes(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	digest, err := h.Hash("")
	require.NoError(t, err)
	assert.True(t, h.Verify("", digest))
	assert.False(t, h.Verify(" ", digest))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestHash_RandomFailureIsError(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)
	h.rand = failingReader{}

	_, err := h.Hash("pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestVerify_DigestFromOtherParamsStillChecks(t *testing.T) {
	t.Parallel()
	cfg := cheapConfig()
	cfg.Time = 2
	other, err := NewPasswordHasher(cfg)
	require.NoError(t, err)

	digest, err := other.Hash("pw")
	require.NoError(t, err)

	assert.True(t, newTestHasher(t).Verify("pw", digest))
}

func TestVerify_FailsClosed(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	good, err := h.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"garbage", "not-a-digest"},
		{"wrong algorithm", strings.Replace(good, "argon2id", "argon2i", 1)},
		{"wrong version", strings.Replace(good, "v=19", "v=16", 1)},
		{"unknown param", "$argon2id$v=19$m=8192,t=1,x=1$" + parts[4] + "$" + parts[5]},
		{"zero memory", "$argon2id$v=19$m=0,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"parallelism overflow", "$argon2id$v=19$m=8192,t=1,p=300$" + parts[4] + "$" + parts[5]},
		{"bad salt", "$argon2id$v=19$m=8192,t=1,p=1$!!!$" + parts[5]},
		{"empty key", "$argon2id$v=19$m=8192,t=1,p=1$" + parts[4] + "$"},
		{"too many fields", good + "$extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, h.Verify("pw", tt.digest))
		})
	}
}

func TestVerify_TamperedKeyFails(t *testing.T) {
	t.Parallel()
	h := newTestHasher(t)

	digest, err := h.Hash("pw")
	require.NoError(t, err)

	b := []byte(digest)
	first := strings.LastIndex(digest, "$") + 1
	if b[first] == 'A' {
		b[first] = 'B'
	} else {
		b[first] = 'A'
	}
	assert.False(t, h.Verify("pw", string(b)))
}

func TestNewPasswordHasher_RejectsWeakParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*HasherConfig)
	}{
		{"memory", func(c *HasherConfig) { c.Memory = 1024 }},
		{"time", func(c *HasherConfig) { c.Time = 0 }},
		{"parallelism", func(c *HasherConfig) { c.Parallelism = 0 }},
		{"salt", func(c *HasherConfig) { c.SaltLength = 8 }},
		{"key", func(c *HasherConfig) { c.KeyLength = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultHasherConfig()
			tt.mutate(&cfg)
			_, err := NewPasswordHasher(cfg)
			assert.ErrorIs(t, err, ErrInvalidHasherConfig)
		})
	}
}

func TestDefaultHasherConfig_IsAccepted(t *testing.T) {
	t.Parallel()
	_, err := NewPasswordHasher(DefaultHasherConfig())
	require.NoError(t, err)
}
