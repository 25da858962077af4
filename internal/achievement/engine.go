// Package achievement implements the progress and unlock engine: it is
// the sole writer of user progress counters and grants each
// achievement's point reward exactly once.
package achievement

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/lock"
	"memory-game-bot/internal/progress"
)

// Engine evaluates unlock rules against user progress. Every mutation
// runs as a read-modify-write under the user's key lock, so unlock
// checks and set insertions form one atomic step.
type Engine struct {
	defs  []Definition
	store progress.Store
	locks *lock.KeyLock[int64]
}

// NewEngine validates the definition table and creates the engine.
func NewEngine(defs []Definition, store progress.Store, locks *lock.KeyLock[int64]) (*Engine, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, fmt.Errorf("invalid achievement definitions: %w", err)
	}
	return &Engine{defs: defs, store: store, locks: locks}, nil
}

// Definitions returns the static achievement table.
func (e *Engine) Definitions() []Definition {
	return e.defs
}

// EnsureUser creates the user's progress record on first contact and
// keeps the display name current.
func (e *Engine) EnsureUser(ctx context.Context, userID int64, displayName string) error {
	return e.locks.WithLock(userID, func() error {
		p, err := e.store.GetOrCreate(ctx, userID, displayName)
		if err != nil {
			return fmt.Errorf("failed to ensure user %d: %w", userID, err)
		}
		if displayName != "" {
			p.DisplayName = displayName
		}
		return e.store.Save(ctx, p)
	})
}

// RecordEvent increments the named counter by delta. It is the only
// mutation entry point for progress counters; game code reports events
// here instead of touching stored progress directly.
func (e *Engine) RecordEvent(ctx context.Context, userID int64, metric string, delta int64) error {
	return e.locks.WithLock(userID, func() error {
		p, err := e.store.GetOrCreate(ctx, userID, "")
		if err != nil {
			return fmt.Errorf("failed to load progress for event: %w", err)
		}
		p.Counters[metric] += delta
		return e.store.Save(ctx, p)
	})
}

// AwardPoints adds game reward points to the user's total and, when
// scoreMetric is non-empty, mirrors them into a per-game score counter.
func (e *Engine) AwardPoints(ctx context.Context, userID int64, points int64, scoreMetric string) error {
	return e.locks.WithLock(userID, func() error {
		p, err := e.store.GetOrCreate(ctx, userID, "")
		if err != nil {
			return fmt.Errorf("failed to load progress for award: %w", err)
		}
		p.TotalPoints += points
		if scoreMetric != "" {
			p.Counters[scoreMetric] += points
		}
		return e.store.Save(ctx, p)
	})
}

// EvaluateUnlocks checks every not-yet-unlocked definition against the
// current progress and returns the newly unlocked ones, possibly none.
// Each newly satisfied achievement is marked unlocked and its reward
// added to the total within the same atomic step, so re-evaluation can
// never re-award points or report the same achievement twice.
func (e *Engine) EvaluateUnlocks(ctx context.Context, userID int64) ([]Definition, error) {
	var newly []Definition
	err := e.locks.WithLock(userID, func() error {
		p, err := e.store.GetOrCreate(ctx, userID, "")
		if err != nil {
			return fmt.Errorf("failed to load progress for unlock evaluation: %w", err)
		}

		newly = e.unlockLocked(p)
		if len(newly) == 0 {
			return nil
		}
		return e.store.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return newly, nil
}

// Track records an event and evaluates unlocks in one lock hold, so
// callers cannot interleave another operation between the two.
func (e *Engine) Track(ctx context.Context, userID int64, metric string, delta int64) ([]Definition, error) {
	var newly []Definition
	err := e.locks.WithLock(userID, func() error {
		p, err := e.store.GetOrCreate(ctx, userID, "")
		if err != nil {
			return fmt.Errorf("failed to load progress for event: %w", err)
		}
		p.Counters[metric] += delta
		newly = e.unlockLocked(p)
		return e.store.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return newly, nil
}

// unlockLocked applies unlock rules to p in place and returns the newly
// satisfied definitions. Callers must hold the user's key lock.
// Rewards can push TotalPoints over a point-milestone threshold, so
// rules are re-run until a pass unlocks nothing.
func (e *Engine) unlockLocked(p *model.UserProgress) []Definition {
	var newly []Definition
	for {
		unlockedThisPass := false
		for _, d := range e.defs {
			if p.HasUnlocked(d.ID) {
				continue
			}
			if !d.Unlock(p) {
				continue
			}
			p.Unlocked[d.ID] = true
			p.TotalPoints += d.Reward
			newly = append(newly, d)
			unlockedThisPass = true
			log.Info().
				Int64("user_id", p.UserID).
				Str("achievement", d.ID).
				Int64("reward", d.Reward).
				Msg("Achievement unlocked")
		}
		if !unlockedThisPass {
			return newly
		}
	}
}

// GetProgress returns a snapshot of the user's progress. A user who
// never generated an event gets an empty record, not an error.
func (e *Engine) GetProgress(ctx context.Context, userID int64) (*model.UserProgress, error) {
	p, err := e.store.GetOrCreate(ctx, userID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return p, nil
}
