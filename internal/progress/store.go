// Package progress provides storage for per-user progress records.
// Two implementations exist: a TTL-cache-backed in-memory store (the
// default) and a PostgreSQL-backed store for deployments that want
// progress to survive restarts.
package progress

import (
	"context"
	"errors"

	"memory-game-bot/internal/model"
)

// ErrNotFound is returned when no progress record exists for a user.
var ErrNotFound = errors.New("progress record not found")

// Store is the persistence boundary for UserProgress. Implementations
// must return snapshots from Get/GetOrCreate: mutating a returned
// record must not change stored state until Save is called. Callers
// are responsible for serializing the read-modify-write cycle per
// user (see internal/pkg/lock).
type Store interface {
	// Get returns a snapshot of the user's progress, or ErrNotFound.
	Get(ctx context.Context, userID int64) (*model.UserProgress, error)

	// GetOrCreate returns the user's progress, creating an empty
	// record with the given display name if none exists.
	GetOrCreate(ctx context.Context, userID int64, displayName string) (*model.UserProgress, error)

	// Save writes the record back, overwriting the stored state.
	Save(ctx context.Context, p *model.UserProgress) error
}
