package progress

import (
	"context"
	"time"

	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/cache"
)

// MemoryStore keeps progress records in a TTL cache. Every Save
// refreshes the TTL, so only users who go completely inactive for the
// full period lose their record.
type MemoryStore struct {
	entries *cache.Store[int64, *model.UserProgress]
}

// NewMemoryStore creates a MemoryStore whose records expire ttl after
// their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: cache.New[int64, *model.UserProgress](ttl),
	}
}

// Get returns a snapshot of the user's progress, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, userID int64) (*model.UserProgress, error) {
	p, ok := s.entries.Get(userID)
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// GetOrCreate returns the user's progress, creating an empty record if
// none exists. The new record is not stored until the first Save, so a
// pure read never allocates cache entries.
func (s *MemoryStore) GetOrCreate(ctx context.Context, userID int64, displayName string) (*model.UserProgress, error) {
	p, err := s.Get(ctx, userID)
	if err == nil {
		if displayName != "" && p.DisplayName != displayName {
			p.DisplayName = displayName
		}
		return p, nil
	}
	return model.NewUserProgress(userID, displayName), nil
}

// Save stores a snapshot of the record and refreshes its TTL.
func (s *MemoryStore) Save(_ context.Context, p *model.UserProgress) error {
	stored := p.Clone()
	stored.UpdatedAt = time.Now()
	s.entries.Set(p.UserID, stored)
	return nil
}

// StartSweeper runs the underlying cache sweeper; see cache.StartSweeper.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	s.entries.StartSweeper(ctx, interval)
}
