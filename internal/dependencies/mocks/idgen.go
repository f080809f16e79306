package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/deckduel/internal/dependencies/idgen"
)

// SequentialIDs issues predictable identifiers: id-1, id-2, ...
type SequentialIDs struct {
	mu     sync.Mutex
	Prefix string
	next   int
}

// Ensure SequentialIDs implements Generator
var _ idgen.Generator = (*SequentialIDs)(nil)

// NewSequentialIDs creates a generator with the "id" prefix
func NewSequentialIDs() *SequentialIDs {
	return &SequentialIDs{Prefix: "id"}
}

// NewID returns the next identifier in sequence
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.Prefix, g.next)
}
