// Package model defines the data models for the memory game bot.
package model

import "time"

// GameSession is the per-user state of one in-progress memory round.
// It lives in the TTL cache keyed by the user's Telegram ID; an expired
// session simply counts as an abandoned round.
type GameSession struct {
	Secret       string // concatenated secret digits, e.g. "40917"
	AttemptsLeft int    // remaining guesses; 0 means unlimited
	CreatedAt    time.Time
}

// UserProgress tracks a user's points, event counters and unlocked
// achievements. Values read out of a store are snapshots; updates go
// back through the store, never through in-place mutation of a copy.
type UserProgress struct {
	UserID      int64            `db:"user_id"`
	DisplayName string           `db:"display_name"`
	TotalPoints int64            `db:"total_points"`
	Counters    map[string]int64 `db:"counters"`
	Unlocked    map[string]bool  `db:"unlocked"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

// NewUserProgress creates an empty progress record for a user.
func NewUserProgress(userID int64, displayName string) *UserProgress {
	return &UserProgress{
		UserID:      userID,
		DisplayName: displayName,
		Counters:    make(map[string]int64),
		Unlocked:    make(map[string]bool),
		UpdatedAt:   time.Now(),
	}
}

// Counter returns the value of a named counter, 0 if never incremented.
func (p *UserProgress) Counter(name string) int64 {
	return p.Counters[name]
}

// HasUnlocked reports whether the achievement id has been unlocked.
func (p *UserProgress) HasUnlocked(id string) bool {
	return p.Unlocked[id]
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the underlying maps.
func (p *UserProgress) Clone() *UserProgress {
	c := *p
	c.Counters = make(map[string]int64, len(p.Counters))
	for k, v := range p.Counters {
		c.Counters[k] = v
	}
	c.Unlocked = make(map[string]bool, len(p.Unlocked))
	for k, v := range p.Unlocked {
		c.Unlocked[k] = v
	}
	return &c
}

// Metric names for progress counters.
const (
	MetricSequenceStarts   = "sequence_starts"   // memory rounds started
	MetricSequenceWins     = "sequence_wins"     // memory rounds won
	MetricSequenceAttempts = "sequence_attempts" // answers submitted (right or wrong)
	MetricSequenceScore    = "sequence_score"    // points earned from the memory game
	MetricRollPlays        = "roll_plays"        // dice rolls played
	MetricRollWins         = "roll_wins"         // winning dice rolls
	MetricRollScore        = "roll_score"        // points earned from rolling
)
