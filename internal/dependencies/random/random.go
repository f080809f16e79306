package random

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"time"
)

// Random provides randomness for lock tokens and retry jitter
type Random interface {
	// Token returns an unguessable hex token built from n random bytes
	Token(n int) string

	// Jitter returns a random duration in [0, max)
	Jitter(max time.Duration) time.Duration
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Token returns a hex-encoded random token
func (r *CryptoRandom) Token(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// Jitter returns a random duration in [0, max)
func (r *CryptoRandom) Jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}
