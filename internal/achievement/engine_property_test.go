// Property-based tests for unlock bookkeeping.
package achievement

import (
	"context"
	"sync"
	"testing"
	"time"

	"pgregory.net/rapid"

	"memory-game-bot/internal/pkg/lock"
	"memory-game-bot/internal/progress"
)

// TestUnlockBookkeepingProperty checks that over any random event
// stream, every achievement is reported at most once and the total
// points equal exactly the sum of the rewards of the unlocked set.
func TestUnlockBookkeepingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		defs := []Definition{
			{ID: "wins_1", Reward: 10, Unlock: CounterAtLeast("wins", 1)},
			{ID: "wins_5", Reward: 20, Unlock: CounterAtLeast("wins", 5)},
			{ID: "plays_3", Reward: 5, Unlock: CounterAtLeast("plays", 3)},
			{ID: "points_25", Reward: 50, Unlock: PointsAtLeast(25)},
		}
		engine, err := NewEngine(defs, progress.NewMemoryStore(time.Hour), lock.NewKeyLock[int64]())
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}

		ctx := context.Background()
		userID := rapid.Int64Range(1, 1_000_000).Draw(t, "userID")
		numEvents := rapid.IntRange(1, 40).Draw(t, "numEvents")

		seen := make(map[string]int)
		for i := 0; i < numEvents; i++ {
			metric := []string{"wins", "plays"}[rapid.IntRange(0, 1).Draw(t, "metric")]
			newly, err := engine.Track(ctx, userID, metric, 1)
			if err != nil {
				t.Fatalf("Track failed: %v", err)
			}
			for _, d := range newly {
				seen[d.ID]++
			}
		}

		var wantPoints int64
		for _, d := range defs {
			if seen[d.ID] > 1 {
				t.Fatalf("achievement %q reported %d times", d.ID, seen[d.ID])
			}
			if seen[d.ID] == 1 {
				wantPoints += d.Reward
			}
		}

		p, err := engine.GetProgress(ctx, userID)
		if err != nil {
			t.Fatalf("GetProgress failed: %v", err)
		}
		if p.TotalPoints != wantPoints {
			t.Fatalf("TotalPoints = %d, want %d (unlocked %v)", p.TotalPoints, wantPoints, seen)
		}
		if len(p.Unlocked) != len(seen) {
			t.Fatalf("stored unlocked set has %d ids, reported %d", len(p.Unlocked), len(seen))
		}
	})
}

// TestConcurrentTrackingProperty checks that concurrent events for the
// same user never double-unlock or lose counter increments.
func TestConcurrentTrackingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		engine, err := NewEngine([]Definition{
			{ID: "wins_1", Reward: 10, Unlock: CounterAtLeast("wins", 1)},
			{ID: "wins_10", Reward: 30, Unlock: CounterAtLeast("wins", 10)},
		}, progress.NewMemoryStore(time.Hour), lock.NewKeyLock[int64]())
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}

		ctx := context.Background()
		userID := rapid.Int64Range(1, 1_000_000).Draw(t, "userID")
		numEvents := rapid.IntRange(10, 30).Draw(t, "numEvents")

		var (
			mu       sync.Mutex
			unlocked []string
			trackErr error
			wg       sync.WaitGroup
		)
		for i := 0; i < numEvents; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				newly, err := engine.Track(ctx, userID, "wins", 1)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					trackErr = err
					return
				}
				for _, d := range newly {
					unlocked = append(unlocked, d.ID)
				}
			}()
		}
		wg.Wait()
		if trackErr != nil {
			t.Fatalf("Track failed: %v", trackErr)
		}

		counts := make(map[string]int)
		for _, id := range unlocked {
			counts[id]++
		}
		for id, n := range counts {
			if n > 1 {
				t.Fatalf("achievement %q unlocked %d times under concurrency", id, n)
			}
		}

		p, err := engine.GetProgress(ctx, userID)
		if err != nil {
			t.Fatalf("GetProgress failed: %v", err)
		}
		if got := p.Counter("wins"); got != int64(numEvents) {
			t.Fatalf("wins counter = %d, want %d", got, numEvents)
		}
		if p.TotalPoints != 40 { // both rewards exactly once
			t.Fatalf("TotalPoints = %d, want 40", p.TotalPoints)
		}
	})
}
