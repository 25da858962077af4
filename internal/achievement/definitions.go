package achievement

import (
	"errors"
	"fmt"

	"memory-game-bot/internal/model"
)

// Rule decides whether a user's progress satisfies an achievement.
// Rules must be pure: deterministic over the snapshot, no side effects.
type Rule func(p *model.UserProgress) bool

// Definition is a static achievement description. The full set is
// loaded once at startup and never mutated.
type Definition struct {
	ID          string
	DisplayName string
	Description string
	Reward      int64 // points granted once, on unlock
	Unlock      Rule
}

// Errors for definition validation.
var (
	ErrEmptyID        = errors.New("achievement id must not be empty")
	ErrDuplicateID    = errors.New("duplicate achievement id")
	ErrNegativeReward = errors.New("achievement reward must not be negative")
	ErrNilRule        = errors.New("achievement unlock rule must not be nil")
)

// ValidateDefinitions checks a definition set for the invariants the
// engine relies on. A failure here is fatal at startup: the process
// must not serve requests with an inconsistent rule table.
func ValidateDefinitions(defs []Definition) error {
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("definition %d: %w", i, ErrEmptyID)
		}
		if seen[d.ID] {
			return fmt.Errorf("definition %q: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = true
		if d.Reward < 0 {
			return fmt.Errorf("definition %q: %w", d.ID, ErrNegativeReward)
		}
		if d.Unlock == nil {
			return fmt.Errorf("definition %q: %w", d.ID, ErrNilRule)
		}
	}
	return nil
}

// CounterAtLeast builds a rule satisfied once a counter reaches n.
func CounterAtLeast(metric string, n int64) Rule {
	return func(p *model.UserProgress) bool {
		return p.Counter(metric) >= n
	}
}

// PointsAtLeast builds a rule satisfied once total points reach n.
func PointsAtLeast(n int64) Rule {
	return func(p *model.UserProgress) bool {
		return p.TotalPoints >= n
	}
}

// AllOf builds a rule satisfied when every given rule is satisfied.
func AllOf(rules ...Rule) Rule {
	return func(p *model.UserProgress) bool {
		for _, r := range rules {
			if !r(p) {
				return false
			}
		}
		return true
	}
}

// DefaultDefinitions returns the built-in achievement table.
func DefaultDefinitions() []Definition {
	return []Definition{
		// Memory game wins
		{ID: "first_win", DisplayName: "First Recall", Description: "Win your first memory round", Reward: 25, Unlock: CounterAtLeast(model.MetricSequenceWins, 1)},
		{ID: "five_wins", DisplayName: "Warming Up", Description: "Win 5 memory rounds", Reward: 50, Unlock: CounterAtLeast(model.MetricSequenceWins, 5)},
		{ID: "ten_wins", DisplayName: "Sharp Memory", Description: "Win 10 memory rounds", Reward: 100, Unlock: CounterAtLeast(model.MetricSequenceWins, 10)},
		{ID: "twenty_five_wins", DisplayName: "Mnemonist", Description: "Win 25 memory rounds", Reward: 250, Unlock: CounterAtLeast(model.MetricSequenceWins, 25)},
		{ID: "fifty_wins", DisplayName: "Photographic", Description: "Win 50 memory rounds", Reward: 500, Unlock: CounterAtLeast(model.MetricSequenceWins, 50)},
		{ID: "hundred_wins", DisplayName: "Total Recall", Description: "Win 100 memory rounds", Reward: 1000, Unlock: CounterAtLeast(model.MetricSequenceWins, 100)},

		// Participation
		{ID: "first_round", DisplayName: "Newcomer", Description: "Start your first memory round", Reward: 10, Unlock: CounterAtLeast(model.MetricSequenceStarts, 1)},
		{ID: "ten_rounds", DisplayName: "Regular", Description: "Start 10 memory rounds", Reward: 30, Unlock: CounterAtLeast(model.MetricSequenceStarts, 10)},
		{ID: "fifty_rounds", DisplayName: "Devotee", Description: "Start 50 memory rounds", Reward: 150, Unlock: CounterAtLeast(model.MetricSequenceStarts, 50)},
		{ID: "hundred_rounds", DisplayName: "Fixture", Description: "Start 100 memory rounds", Reward: 300, Unlock: CounterAtLeast(model.MetricSequenceStarts, 100)},

		// Persistence, counted on every submitted answer
		{ID: "persistent", DisplayName: "Persistent", Description: "Submit 50 answers", Reward: 40, Unlock: CounterAtLeast(model.MetricSequenceAttempts, 50)},
		{ID: "grinder", DisplayName: "Grinder", Description: "Submit 250 answers", Reward: 200, Unlock: CounterAtLeast(model.MetricSequenceAttempts, 250)},

		// Point milestones
		{ID: "points_100", DisplayName: "Pocket Change", Description: "Reach 100 points", Reward: 10, Unlock: PointsAtLeast(100)},
		{ID: "points_500", DisplayName: "Saver", Description: "Reach 500 points", Reward: 50, Unlock: PointsAtLeast(500)},
		{ID: "points_1000", DisplayName: "Collector", Description: "Reach 1000 points", Reward: 100, Unlock: PointsAtLeast(1000)},
		{ID: "points_5000", DisplayName: "Hoarder", Description: "Reach 5000 points", Reward: 500, Unlock: PointsAtLeast(5000)},

		// Dice roll game
		{ID: "first_roll_win", DisplayName: "Beginner's Luck", Description: "Win your first dice roll", Reward: 15, Unlock: CounterAtLeast(model.MetricRollWins, 1)},
		{ID: "ten_roll_wins", DisplayName: "Hot Hand", Description: "Win 10 dice rolls", Reward: 75, Unlock: CounterAtLeast(model.MetricRollWins, 10)},
		{ID: "fifty_roll_wins", DisplayName: "Loaded Dice", Description: "Win 50 dice rolls", Reward: 400, Unlock: CounterAtLeast(model.MetricRollWins, 50)},

		// Cross-game
		{ID: "all_rounder", DisplayName: "All-Rounder", Description: "Win at least once in every game", Reward: 120, Unlock: AllOf(
			CounterAtLeast(model.MetricSequenceWins, 1),
			CounterAtLeast(model.MetricRollWins, 1),
		)},
	}
}
