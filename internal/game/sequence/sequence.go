// Package sequence implements the memory challenge: the bot shows a
// short digit sequence and the user has to recall it. Session state
// lives in a TTL cache keyed by user ID, so an abandoned round simply
// expires with no penalty.
package sequence

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/game"
	"memory-game-bot/internal/model"
	"memory-game-bot/internal/pkg/cache"
	"memory-game-bot/internal/pkg/lock"
)

const (
	// DefaultLength is the number of secret digits per round.
	DefaultLength = 5

	// DefaultReward is the points awarded for a correct recall.
	DefaultReward = 50
)

// Config holds configuration for the memory game.
type Config struct {
	Length      int   // secret digits per round
	Reward      int64 // points per win
	MaxAttempts int   // guesses per round; 0 = unlimited
}

// Game implements the sequence-recall memory game. All session
// operations for one user serialize on the shared key lock, so a
// guess can never score against a session that was already consumed
// or superseded.
type Game struct {
	cfg      Config
	sessions *cache.Store[int64, model.GameSession]
	locks    *lock.KeyLock[int64]
	engine   *achievement.Engine
}

// New creates the memory game on top of a session cache, the shared
// per-user lock and the achievement engine.
func New(cfg Config, sessions *cache.Store[int64, model.GameSession], locks *lock.KeyLock[int64], engine *achievement.Engine) *Game {
	if cfg.Length <= 0 {
		cfg.Length = DefaultLength
	}
	if cfg.Reward <= 0 {
		cfg.Reward = DefaultReward
	}
	return &Game{
		cfg:      cfg,
		sessions: sessions,
		locks:    locks,
		engine:   engine,
	}
}

// Name returns the game's display name.
func (g *Game) Name() string {
	return "Memory Challenge"
}

// Command returns the command that triggers this game.
func (g *Game) Command() string {
	return "memory"
}

// Description returns a brief description of the game.
func (g *Game) Description() string {
	return fmt.Sprintf("Memorize a %d-digit sequence and type it back with /answer", g.cfg.Length)
}

// newSecret draws independent random digits, repetition allowed.
func (g *Game) newSecret() string {
	var b strings.Builder
	b.Grow(g.cfg.Length)
	for range g.cfg.Length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// Start begins a new round for the user, silently discarding any
// unfinished one, and returns the secret for display.
func (g *Game) Start(ctx context.Context, userID int64, displayName string) (*game.Result, error) {
	secret := g.newSecret()

	g.locks.Lock(userID)
	g.sessions.Set(userID, model.GameSession{
		Secret:       secret,
		AttemptsLeft: g.cfg.MaxAttempts,
		CreatedAt:    time.Now(),
	})
	g.locks.Unlock(userID)

	if err := g.engine.EnsureUser(ctx, userID, displayName); err != nil {
		return nil, err
	}
	unlocked, err := g.engine.Track(ctx, userID, model.MetricSequenceStarts, 1)
	if err != nil {
		return nil, err
	}

	return &game.Result{
		Message:  fmt.Sprintf("🧠 Memorize this sequence: %s\nType /answer <digits> when you are ready!", secret),
		Unlocked: unlocked,
	}, nil
}

// checkOutcome classifies one answer attempt.
type checkOutcome int

const (
	outcomeNoSession checkOutcome = iota
	outcomeWin
	outcomeMiss
	outcomeRoundOver // attempt limit reached, session discarded
)

// Check evaluates an answer against the user's active session.
// "No active round" and "wrong answer" are ordinary results, not errors.
func (g *Game) Check(ctx context.Context, userID int64, displayName, answer string) (*game.Result, error) {
	answer = strings.TrimSpace(answer)

	// Session read-modify-write is one atomic unit under the user's
	// lock; the engine calls below run after it, each serialized on
	// the same lock.
	var outcome checkOutcome
	g.locks.Lock(userID)
	session, ok := g.sessions.Get(userID)
	switch {
	case !ok:
		outcome = outcomeNoSession
	case answer == session.Secret:
		outcome = outcomeWin
		g.sessions.Delete(userID)
	default:
		outcome = outcomeMiss
		if session.AttemptsLeft > 0 {
			session.AttemptsLeft--
			if session.AttemptsLeft == 0 {
				outcome = outcomeRoundOver
				g.sessions.Delete(userID)
			} else {
				g.sessions.Set(userID, session)
			}
		}
	}
	g.locks.Unlock(userID)

	switch outcome {
	case outcomeNoSession:
		return &game.Result{
			Message: "ℹ️ No active round. Start one with /memory.",
		}, nil

	case outcomeWin:
		if err := g.engine.AwardPoints(ctx, userID, g.cfg.Reward, model.MetricSequenceScore); err != nil {
			return nil, err
		}
		if err := g.engine.RecordEvent(ctx, userID, model.MetricSequenceAttempts, 1); err != nil {
			return nil, err
		}
		unlocked, err := g.engine.Track(ctx, userID, model.MetricSequenceWins, 1)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Message:  fmt.Sprintf("🎉 Correct, %s! You earned %d points.", displayName, g.cfg.Reward),
			Points:   g.cfg.Reward,
			Won:      true,
			Unlocked: unlocked,
		}, nil

	case outcomeRoundOver:
		unlocked, err := g.engine.Track(ctx, userID, model.MetricSequenceAttempts, 1)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Message:  "😢 Out of attempts, the round is over. Start a fresh one with /memory.",
			Unlocked: unlocked,
		}, nil

	default: // outcomeMiss
		unlocked, err := g.engine.Track(ctx, userID, model.MetricSequenceAttempts, 1)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Message:  "❌ Not quite. Try again with /answer <digits>.",
			Unlocked: unlocked,
		}, nil
	}
}

// Score returns the user's accumulated memory game score, 0 if the
// user never played. Read-only, no state change.
func (g *Game) Score(ctx context.Context, userID int64) (int64, error) {
	p, err := g.engine.GetProgress(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.Counter(model.MetricSequenceScore), nil
}
