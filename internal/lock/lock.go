// Package lock serializes work on a key, such as every ledger write for one user.
package lock

import (
	"context"
	"fmt"
	"slices"

	"github.com/mcoot/deckduel/internal/model"
)

// Manager acquires exclusive locks on keys
type Manager interface {
	// Acquire blocks until key is held or ctx is done. The returned release
	// function must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// AcquireAll locks every key in sorted order, skipping duplicates, so that
// two callers locking the same set can never deadlock. On failure any locks
// already taken are released.
func AcquireAll(ctx context.Context, m Manager, keys ...string) (release func(), err error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range sorted {
		r, err := m.Acquire(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, r)
	}
	return releaseAll, nil
}

// UserKey is the lock key guarding a user's ledger state
func UserKey(id model.UserID) string {
	return "user:" + string(id)
}

func unavailable(ctx context.Context, key string) error {
	return fmt.Errorf("%w: waiting for lock %s: %v", model.ErrUnavailable, key, ctx.Err())
}
