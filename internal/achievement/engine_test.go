package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/lock"
	"memory-game-bot/internal/progress"
)

func newTestEngine(t *testing.T, defs []Definition) *Engine {
	t.Helper()
	engine, err := NewEngine(defs, progress.NewMemoryStore(time.Hour), lock.NewKeyLock[int64]())
	require.NoError(t, err)
	return engine
}

// TestDefaultDefinitions_Valid ensures the built-in table passes the
// startup validation and has the expected size.
func TestDefaultDefinitions_Valid(t *testing.T) {
	defs := DefaultDefinitions()
	require.NoError(t, ValidateDefinitions(defs))
	assert.GreaterOrEqual(t, len(defs), 20)
}

// TestNewEngine_RejectsBadDefinitions covers the fatal-at-startup
// configuration errors.
func TestNewEngine_RejectsBadDefinitions(t *testing.T) {
	rule := CounterAtLeast("x", 1)

	tests := []struct {
		name string
		defs []Definition
	}{
		{"empty id", []Definition{{ID: "", Unlock: rule}}},
		{"duplicate id", []Definition{
			{ID: "a", Unlock: rule},
			{ID: "a", Unlock: rule},
		}},
		{"negative reward", []Definition{{ID: "a", Reward: -1, Unlock: rule}}},
		{"nil rule", []Definition{{ID: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.defs, progress.NewMemoryStore(time.Hour), lock.NewKeyLock[int64]())
			assert.Error(t, err)
		})
	}
}

// TestEngine_ExactlyOnceUnlock checks that a satisfied rule unlocks
// once, is never re-reported, and its reward is granted exactly once.
func TestEngine_ExactlyOnceUnlock(t *testing.T) {
	engine := newTestEngine(t, []Definition{
		{ID: "first_win", DisplayName: "First Win", Reward: 25, Unlock: CounterAtLeast("wins", 1)},
	})
	ctx := context.Background()

	newly, err := engine.Track(ctx, 1, "wins", 1)
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "first_win", newly[0].ID)

	// Unchanged counters: no new unlocks, no extra points.
	newly, err = engine.EvaluateUnlocks(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, newly)

	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(25), p.TotalPoints)
	assert.True(t, p.HasUnlocked("first_win"))
}

// TestEngine_WinScenario replays the ten-win scenario: first-win after
// event 1 only, ten-wins after event 10 only, points equal the sum of
// both rewards at the end.
func TestEngine_WinScenario(t *testing.T) {
	engine := newTestEngine(t, []Definition{
		{ID: "first_win", Reward: 25, Unlock: CounterAtLeast("wins", 1)},
		{ID: "ten_wins", Reward: 100, Unlock: CounterAtLeast("wins", 10)},
	})
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		require.NoError(t, engine.RecordEvent(ctx, 1, "wins", 1))
		newly, err := engine.EvaluateUnlocks(ctx, 1)
		require.NoError(t, err)

		switch i {
		case 1:
			require.Len(t, newly, 1, "call %d", i)
			assert.Equal(t, "first_win", newly[0].ID)
		case 10:
			require.Len(t, newly, 1, "call %d", i)
			assert.Equal(t, "ten_wins", newly[0].ID)
		default:
			assert.Empty(t, newly, "call %d", i)
		}
	}

	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(125), p.TotalPoints)
	assert.Equal(t, int64(10), p.Counter("wins"))
}

// TestEngine_UnknownUserIsEmptySnapshot checks the total-function
// contract: an unknown user maps to an empty snapshot, not an error.
func TestEngine_UnknownUserIsEmptySnapshot(t *testing.T) {
	engine := newTestEngine(t, DefaultDefinitions())

	p, err := engine.GetProgress(context.Background(), 999)
	require.NoError(t, err)
	assert.Zero(t, p.TotalPoints)
	assert.Empty(t, p.Counters)
	assert.Empty(t, p.Unlocked)
}

// TestEngine_AwardPoints checks that game rewards land in the total
// and in the per-game score counter, and can trigger point milestones.
func TestEngine_AwardPoints(t *testing.T) {
	engine := newTestEngine(t, []Definition{
		{ID: "points_100", Reward: 10, Unlock: PointsAtLeast(100)},
	})
	ctx := context.Background()

	require.NoError(t, engine.AwardPoints(ctx, 1, 60, model.MetricSequenceScore))
	newly, err := engine.EvaluateUnlocks(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, newly)

	require.NoError(t, engine.AwardPoints(ctx, 1, 60, model.MetricSequenceScore))
	newly, err = engine.EvaluateUnlocks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "points_100", newly[0].ID)

	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(130), p.TotalPoints) // 120 awarded + 10 reward
	assert.Equal(t, int64(120), p.Counter(model.MetricSequenceScore))
}

// TestEngine_CascadingUnlocks checks that a reward pushing the total
// past a milestone unlocks the milestone in the same evaluation.
func TestEngine_CascadingUnlocks(t *testing.T) {
	engine := newTestEngine(t, []Definition{
		{ID: "big_reward", Reward: 100, Unlock: CounterAtLeast("wins", 1)},
		{ID: "points_100", Reward: 10, Unlock: PointsAtLeast(100)},
	})
	ctx := context.Background()

	newly, err := engine.Track(ctx, 1, "wins", 1)
	require.NoError(t, err)
	require.Len(t, newly, 2)
	assert.Equal(t, "big_reward", newly[0].ID)
	assert.Equal(t, "points_100", newly[1].ID)

	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(110), p.TotalPoints)
}

// TestEngine_EnsureUser checks record creation and display-name updates.
func TestEngine_EnsureUser(t *testing.T) {
	engine := newTestEngine(t, DefaultDefinitions())
	ctx := context.Background()

	require.NoError(t, engine.EnsureUser(ctx, 1, "alice"))
	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.DisplayName)

	require.NoError(t, engine.EnsureUser(ctx, 1, "alice_renamed"))
	p, err = engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", p.DisplayName)
}

// TestEngine_ProgressIsSnapshot checks that mutating a returned
// snapshot does not leak into stored state.
func TestEngine_ProgressIsSnapshot(t *testing.T) {
	engine := newTestEngine(t, DefaultDefinitions())
	ctx := context.Background()

	require.NoError(t, engine.RecordEvent(ctx, 1, "wins", 1))

	p, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	p.Counters["wins"] = 999
	p.TotalPoints = 999

	fresh, err := engine.GetProgress(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.Counter("wins"))
	assert.Zero(t, fresh.TotalPoints)
}
