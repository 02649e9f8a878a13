// Package cryptox holds the cryptographic primitives used by gophauth:
// Argon2id password hashing in PHC string format and random token material.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKB    uint32 = 8 * 1024
	minTime        uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

var (
	ErrInvalidHasherConfig = errors.New("invalid argon2 parameters")
	errMalformedDigest     = errors.New("malformed password digest")
)

// HasherConfig holds the Argon2id cost parameters. Memory is in KiB.
type HasherConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHasherConfig returns m=64MiB, t=1, p=4 with a 16 byte salt and a
// 32 byte derived key.
func DefaultHasherConfig() HasherConfig {
	return HasherConfig{
		Memory:      64 * 1024,
		Time:        1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher derives and checks Argon2id password digests.
// It holds no mutable state and is safe for concurrent use.
type PasswordHasher struct {
	cfg  HasherConfig
	rand io.Reader
}

// NewPasswordHasher validates cfg and returns a hasher using crypto/rand for salts.
func NewPasswordHasher(cfg HasherConfig) (*PasswordHasher, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, fmt.Errorf("%w: memory below %d KiB", ErrInvalidHasherConfig, minMemoryKB)
	case cfg.Time < minTime:
		return nil, fmt.Errorf("%w: time cost below %d", ErrInvalidHasherConfig, minTime)
	case cfg.Parallelism < minParallelism:
		return nil, fmt.Errorf("%w: parallelism below %d", ErrInvalidHasherConfig, minParallelism)
	case cfg.SaltLength < minSaltLength:
		return nil, fmt.Errorf("%w: salt shorter than %d bytes", ErrInvalidHasherConfig, minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return nil, fmt.Errorf("%w: key shorter than %d bytes", ErrInvalidHasherConfig, minKeyLength)
	}
	return &PasswordHasher{cfg: cfg, rand: rand.Reader}, nil
}

// Hash derives a digest of password with a fresh salt and encodes it as
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<parallelism>$<salt>$<key>
//
// Salt and key use unpadded standard base64. Hashing the same password twice
// yields different strings.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.cfg.Memory, h.cfg.Time, h.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches digest. Any digest that cannot be
// parsed, or that names another algorithm or version, yields false.
func (h *PasswordHasher) Verify(password, digest string) bool {
	p, err := parseDigest(digest)
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1
}

type digestParts struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parseDigest(digest string) (*digestParts, error) {
	fields := strings.Split(digest, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != algorithmID {
		return nil, errMalformedDigest
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, errMalformedDigest
	}

	p := &digestParts{}
	for _, kv := range strings.Split(fields[3], ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, errMalformedDigest
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return nil, errMalformedDigest
		}
		switch name {
		case "m":
			p.memory = uint32(n)
		case "t":
			p.time = uint32(n)
		case "p":
			if n > 255 {
				return nil, errMalformedDigest
			}
			p.parallelism = uint8(n)
		default:
			return nil, errMalformedDigest
		}
	}
	if p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return nil, errMalformedDigest
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil || len(p.salt) == 0 {
		return nil, errMalformedDigest
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil || len(p.key) == 0 {
		return nil, errMalformedDigest
	}
	return p, nil
}
