package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"memory-game-bot/internal/model"
)

// PostgresStore persists progress records in a user_progress table,
// with counters and the unlocked set as JSONB columns.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on top of an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the user_progress table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_progress (
			user_id BIGINT PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			total_points BIGINT NOT NULL DEFAULT 0,
			counters JSONB NOT NULL DEFAULT '{}',
			unlocked JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_user_progress_points ON user_progress(total_points DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate user_progress: %w", err)
	}
	return nil
}

// Get returns a snapshot of the user's progress, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, userID int64) (*model.UserProgress, error) {
	const query = `
		SELECT user_id, display_name, total_points, counters, unlocked, updated_at
		FROM user_progress
		WHERE user_id = $1
	`

	var (
		p        model.UserProgress
		counters []byte
		unlocked []byte
	)
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.DisplayName,
		&p.TotalPoints,
		&counters,
		&unlocked,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if err := json.Unmarshal(counters, &p.Counters); err != nil {
		return nil, fmt.Errorf("failed to decode counters: %w", err)
	}
	if err := json.Unmarshal(unlocked, &p.Unlocked); err != nil {
		return nil, fmt.Errorf("failed to decode unlocked set: %w", err)
	}
	if p.Counters == nil {
		p.Counters = make(map[string]int64)
	}
	if p.Unlocked == nil {
		p.Unlocked = make(map[string]bool)
	}

	return &p, nil
}

// GetOrCreate returns the user's progress, creating an empty record if
// none exists. Like MemoryStore, the empty record is only persisted by
// the first Save.
func (s *PostgresStore) GetOrCreate(ctx context.Context, userID int64, displayName string) (*model.UserProgress, error) {
	p, err := s.Get(ctx, userID)
	if err == nil {
		if displayName != "" && p.DisplayName != displayName {
			p.DisplayName = displayName
		}
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return model.NewUserProgress(userID, displayName), nil
}

// Save upserts the record.
func (s *PostgresStore) Save(ctx context.Context, p *model.UserProgress) error {
	counters, err := json.Marshal(p.Counters)
	if err != nil {
		return fmt.Errorf("failed to encode counters: %w", err)
	}
	unlocked, err := json.Marshal(p.Unlocked)
	if err != nil {
		return fmt.Errorf("failed to encode unlocked set: %w", err)
	}

	const query = `
		INSERT INTO user_progress (user_id, display_name, total_points, counters, unlocked, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    total_points = EXCLUDED.total_points,
		    counters = EXCLUDED.counters,
		    unlocked = EXCLUDED.unlocked,
		    updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, p.UserID, p.DisplayName, p.TotalPoints, counters, unlocked); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}
