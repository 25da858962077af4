// Property-based tests for the memory game state machine.
package sequence

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/cache"
	"memory-game-bot/internal/pkg/lock"
	"memory-game-bot/internal/progress"
)

// TestSecretShapeProperty checks that for any configured length the
// secret is exactly that many digits.
func TestSecretShapeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(1, 12).Draw(t, "length")

		locks := lock.NewKeyLock[int64]()
		engine, err := achievement.NewEngine(nil, progress.NewMemoryStore(time.Hour), locks)
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}
		sessions := cache.New[int64, model.GameSession](time.Hour)
		g := New(Config{Length: length}, sessions, locks, engine)

		userID := rapid.Int64Range(1, 1_000_000).Draw(t, "userID")
		if _, err := g.Start(context.Background(), userID, "u"); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		session, ok := sessions.Get(userID)
		if !ok {
			t.Fatal("no session after Start")
		}
		if len(session.Secret) != length {
			t.Fatalf("secret %q has length %d, want %d", session.Secret, len(session.Secret), length)
		}
		for _, c := range session.Secret {
			if c < '0' || c > '9' {
				t.Fatalf("secret %q contains non-digit %q", session.Secret, c)
			}
		}
	})
}

// TestMissStreakPreservesSessionProperty checks that any number of
// wrong answers (unlimited attempts) leaves the original secret
// winnable, and the attempt counter reflects every submission.
func TestMissStreakPreservesSessionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		locks := lock.NewKeyLock[int64]()
		engine, err := achievement.NewEngine(nil, progress.NewMemoryStore(time.Hour), locks)
		if err != nil {
			t.Fatalf("NewEngine failed: %v", err)
		}
		sessions := cache.New[int64, model.GameSession](time.Hour)
		g := New(Config{}, sessions, locks, engine)

		ctx := context.Background()
		userID := rapid.Int64Range(1, 1_000_000).Draw(t, "userID")
		if _, err := g.Start(ctx, userID, "u"); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		session, _ := sessions.Get(userID)
		secret := session.Secret

		misses := rapid.IntRange(1, 15).Draw(t, "misses")
		for i := 0; i < misses; i++ {
			// A guess one digit longer can never equal the secret.
			result, err := g.Check(ctx, userID, "u", secret+"0")
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if result.Won {
				t.Fatal("wrong answer reported as a win")
			}
		}

		result, err := g.Check(ctx, userID, "u", secret)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !result.Won {
			t.Fatal("original secret no longer wins after misses")
		}

		p, err := engine.GetProgress(ctx, userID)
		if err != nil {
			t.Fatalf("GetProgress failed: %v", err)
		}
		if got := p.Counter(model.MetricSequenceAttempts); got != int64(misses+1) {
			t.Fatalf("attempts counter = %d, want %d", got, misses+1)
		}
	})
}
