package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/mcoot/deckduel/internal/dependencies/random"
)

// MockRandom is a deterministic Random for testing
type MockRandom struct {
	mu     sync.Mutex
	tokens int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Token returns token-1, token-2, ...
func (r *MockRandom) Token(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens++
	return fmt.Sprintf("token-%d", r.tokens)
}

// Jitter always returns zero
func (r *MockRandom) Jitter(max time.Duration) time.Duration {
	return 0
}
