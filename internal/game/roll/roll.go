// Package roll implements a stateless luck game: roll two dice, score
// points on a high total. There is no session; each roll resolves
// immediately and only reports events to the achievement engine.
package roll

import (
	"context"
	"fmt"
	"math/rand/v2"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/game"
	"memory-game-bot/internal/model"
)

// DefaultReward is the points for a winning roll.
const DefaultReward = 20

// Config holds configuration for the roll game.
type Config struct {
	Reward int64
}

// Game implements the dice roll game.
type Game struct {
	reward int64
	engine *achievement.Engine
}

// New creates a new roll game.
func New(cfg Config, engine *achievement.Engine) *Game {
	reward := int64(DefaultReward)
	if cfg.Reward > 0 {
		reward = cfg.Reward
	}
	return &Game{reward: reward, engine: engine}
}

// Name returns the game's display name.
func (g *Game) Name() string {
	return "Lucky Roll"
}

// Command returns the command that triggers this game.
func (g *Game) Command() string {
	return "roll"
}

// Description returns a brief description of the game.
func (g *Game) Description() string {
	return "Roll two dice: total 10-11 wins points, double sixes pay double"
}

// CalculatePoints returns the points for a roll of two dice.
// Totals 2-9 score nothing, 10 and 11 score the reward, 12 pays double.
func CalculatePoints(die1, die2 int, reward int64) int64 {
	switch total := die1 + die2; {
	case total < 10:
		return 0
	case total < 12:
		return reward
	default:
		return reward * 2
	}
}

// Play rolls the dice for a user and reports the outcome.
func (g *Game) Play(ctx context.Context, userID int64, displayName string) (*game.Result, error) {
	die1 := 1 + rand.IntN(6)
	die2 := 1 + rand.IntN(6)
	points := CalculatePoints(die1, die2, g.reward)

	if err := g.engine.EnsureUser(ctx, userID, displayName); err != nil {
		return nil, err
	}
	if err := g.engine.RecordEvent(ctx, userID, model.MetricRollPlays, 1); err != nil {
		return nil, err
	}

	if points == 0 {
		unlocked, err := g.engine.EvaluateUnlocks(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Message:  fmt.Sprintf("🎲🎲 You rolled %d + %d = %d. No points this time!", die1, die2, die1+die2),
			Unlocked: unlocked,
		}, nil
	}

	if err := g.engine.AwardPoints(ctx, userID, points, model.MetricRollScore); err != nil {
		return nil, err
	}
	unlocked, err := g.engine.Track(ctx, userID, model.MetricRollWins, 1)
	if err != nil {
		return nil, err
	}
	return &game.Result{
		Message:  fmt.Sprintf("🎲🎲 You rolled %d + %d = %d. %s wins %d points!", die1, die2, die1+die2, displayName, points),
		Points:   points,
		Won:      true,
		Unlocked: unlocked,
	}, nil
}
