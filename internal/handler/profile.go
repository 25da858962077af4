package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/model"
)

// ProfileHandler renders progress and achievement views.
type ProfileHandler struct {
	engine *achievement.Engine
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(engine *achievement.Engine) *ProfileHandler {
	return &ProfileHandler{engine: engine}
}

// HandleStart greets the user and creates their progress record.
func (h *ProfileHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := h.engine.EnsureUser(ctx, sender.ID, displayName(sender)); err != nil {
		return replyInternalError(c, err)
	}
	return c.Reply(fmt.Sprintf(
		"👋 Welcome, %s!\nPlay /memory to test your recall, /roll to try your luck.\nSee /games for the full list and /profile for your progress.",
		displayName(sender),
	))
}

// HandleProfile shows the user's points, counters and unlock count.
func (h *ProfileHandler) HandleProfile(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := h.engine.GetProgress(ctx, sender.ID)
	if err != nil {
		return replyInternalError(c, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n⭐ Total points: %d\n", displayName(sender), p.TotalPoints)
	fmt.Fprintf(&b, "🏅 Achievements: %d/%d\n", len(p.Unlocked), len(h.engine.Definitions()))
	fmt.Fprintf(&b, "🧠 Memory rounds: %d started, %d won\n",
		p.Counter(model.MetricSequenceStarts), p.Counter(model.MetricSequenceWins))
	fmt.Fprintf(&b, "🎲 Dice rolls: %d played, %d won",
		p.Counter(model.MetricRollPlays), p.Counter(model.MetricRollWins))
	return c.Reply(b.String())
}

// HandleAchievements lists every achievement with its unlock state.
func (h *ProfileHandler) HandleAchievements(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := h.engine.GetProgress(ctx, sender.ID)
	if err != nil {
		return replyInternalError(c, err)
	}

	var b strings.Builder
	b.WriteString("🏅 Achievements:\n")
	for _, d := range h.engine.Definitions() {
		mark := "🔒"
		if p.HasUnlocked(d.ID) {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %s (+%d) — %s\n", mark, d.DisplayName, d.Reward, d.Description)
	}
	return c.Reply(b.String())
}
