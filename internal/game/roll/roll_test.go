package roll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/lock"
	"memory-game-bot/internal/progress"
)

// TestCalculatePoints covers the payout table for every total.
func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name     string
		die1     int
		die2     int
		reward   int64
		expected int64
	}{
		{"total 2 scores nothing", 1, 1, 20, 0},
		{"total 5 scores nothing", 2, 3, 20, 0},
		{"total 9 scores nothing", 4, 5, 20, 0},
		{"total 10 wins", 4, 6, 20, 20},
		{"total 11 wins", 5, 6, 20, 20},
		{"total 12 pays double", 6, 6, 20, 40},
		{"total 12 with larger reward", 6, 6, 50, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculatePoints(tt.die1, tt.die2, tt.reward))
		})
	}
}

// TestGame_Play checks that every roll records a play, wins award
// points and losses do not.
func TestGame_Play(t *testing.T) {
	locks := lock.NewKeyLock[int64]()
	engine, err := achievement.NewEngine(achievement.DefaultDefinitions(), progress.NewMemoryStore(time.Hour), locks)
	require.NoError(t, err)
	g := New(Config{Reward: 20}, engine)
	ctx := context.Background()

	const rolls = 50
	var wonPoints int64
	for i := 0; i < rolls; i++ {
		result, err := g.Play(ctx, 1, "bob")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Message)
		if result.Won {
			assert.Positive(t, result.Points)
			wonPoints += result.Points
		} else {
			assert.Zero(t, result.Points)
		}
	}

	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(rolls), p.Counter(model.MetricRollPlays))
	assert.Equal(t, wonPoints, p.Counter(model.MetricRollScore))
}

// TestGame_Defaults checks the fallback reward.
func TestGame_Defaults(t *testing.T) {
	locks := lock.NewKeyLock[int64]()
	engine, err := achievement.NewEngine(nil, progress.NewMemoryStore(time.Hour), locks)
	require.NoError(t, err)

	g := New(Config{}, engine)
	assert.Equal(t, int64(DefaultReward), g.reward)
	assert.Equal(t, "roll", g.Command())
}
