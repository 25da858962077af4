// Package game defines the common game interface, result type and
// registry for the bot's mini-games. New games plug in by implementing
// the Game interface and registering themselves at startup.
package game

import "memory-game-bot/internal/achievement"

// Result is the outcome of a game operation, returned for the message
// layer to render. Negative outcomes (no active round, wrong answer)
// are Results too, never errors.
type Result struct {
	Message  string                   // ready-to-send reply text
	Points   int64                    // points this operation awarded, 0 if none
	Won      bool                     // whether this was a winning outcome
	Unlocked []achievement.Definition // achievements unlocked as a side effect
}

// Game is the minimal surface a mini-game exposes to the registry.
type Game interface {
	// Name returns the game's display name (e.g. "Memory Challenge")
	Name() string

	// Command returns the command that triggers this game (e.g. "memory")
	Command() string

	// Description returns a brief description shown in the games list
	Description() string
}
