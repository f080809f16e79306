package storage

import (
	"slices"
	"time"
)

// SortNewestFirst orders records by creation time, newest first.
// The sort is stable so records sharing a timestamp keep their relative order.
func SortNewestFirst[T any](items []T, createdAt func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return createdAt(b).Compare(createdAt(a))
	})
}
