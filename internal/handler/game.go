// Package handler provides Telegram bot command handlers. Handlers
// parse the inbound message, call into the game or achievement layer
// and render the returned result; they never mutate state themselves.
package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"memory-game-bot/internal/game"
	"memory-game-bot/internal/game/roll"
	"memory-game-bot/internal/game/sequence"
)

// handlerTimeout bounds a single command's work against the progress
// store; the in-memory path never gets near it.
const handlerTimeout = 5 * time.Second

// GameHandler handles game-related commands.
type GameHandler struct {
	sequenceGame *sequence.Game
	rollGame     *roll.Game
	registry     *game.Registry
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(sequenceGame *sequence.Game, rollGame *roll.Game, registry *game.Registry) *GameHandler {
	return &GameHandler{
		sequenceGame: sequenceGame,
		rollGame:     rollGame,
		registry:     registry,
	}
}

// displayName picks the best available name for a sender.
func displayName(sender *tele.User) string {
	if sender.Username != "" {
		return sender.Username
	}
	return sender.FirstName
}

// replyResult renders a game result, appending any achievement unlocks.
func replyResult(c tele.Context, r *game.Result) error {
	msg := r.Message
	for _, d := range r.Unlocked {
		msg += fmt.Sprintf("\n🏅 Achievement unlocked: %s (+%d points) — %s", d.DisplayName, d.Reward, d.Description)
	}
	return c.Reply(msg)
}

// replyInternalError logs an internal fault and sends a generic
// apology; the user never sees the underlying error.
func replyInternalError(c tele.Context, err error) error {
	sender := c.Sender()
	var userID int64
	if sender != nil {
		userID = sender.ID
	}
	log.Error().Err(err).Int64("user_id", userID).Str("command", c.Text()).Msg("Handler failed")
	return c.Reply("😵 Something went wrong on our side, please try again later.")
}

// HandleMemory starts a new memory round.
func (h *GameHandler) HandleMemory(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	result, err := h.sequenceGame.Start(ctx, sender.ID, displayName(sender))
	if err != nil {
		return replyInternalError(c, err)
	}
	return replyResult(c, result)
}

// HandleAnswer checks an /answer <digits> guess against the active round.
func (h *GameHandler) HandleAnswer(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	// Everything after the command is the guess; Check trims it and an
	// empty or wrong-length guess is simply a wrong answer.
	answer := strings.Join(c.Args(), " ")

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	result, err := h.sequenceGame.Check(ctx, sender.ID, displayName(sender), answer)
	if err != nil {
		return replyInternalError(c, err)
	}
	return replyResult(c, result)
}

// HandleRoll plays one dice roll.
func (h *GameHandler) HandleRoll(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	result, err := h.rollGame.Play(ctx, sender.ID, displayName(sender))
	if err != nil {
		return replyInternalError(c, err)
	}
	return replyResult(c, result)
}

// HandleScore shows the user's memory game score.
func (h *GameHandler) HandleScore(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	score, err := h.sequenceGame.Score(ctx, sender.ID)
	if err != nil {
		return replyInternalError(c, err)
	}
	return c.Reply(fmt.Sprintf("🧠 Your memory game score: %d points", score))
}

// HandleGames lists all registered games.
func (h *GameHandler) HandleGames(c tele.Context) error {
	var b strings.Builder
	b.WriteString("🎮 Available games:\n")
	for _, g := range h.registry.List() {
		fmt.Fprintf(&b, "/%s — %s: %s\n", g.Command(), g.Name(), g.Description())
	}
	return c.Reply(b.String())
}
