package cryptox

import (
	"crypto/rand"
	"io"
	"math/big"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randReader is a test seam for the entropy source.
var randReader io.Reader = rand.Reader

// RandomAlphanumeric returns n characters drawn uniformly from [A-Za-z0-9]
// using a cryptographically secure source.
func RandomAlphanumeric(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}

	max := big.NewInt(int64(len(alphanumeric)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(randReader, max)
		if err != nil {
			return "", err
		}
		out[i] = alphanumeric[idx.Int64()]
	}
	return string(out), nil
}

// WipeBytes overwrites b with zeros. Nil is a no-op.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
