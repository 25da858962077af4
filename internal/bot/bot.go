// Package bot provides the Telegram bot initialization and handler
// registration. The bot is the only component that sends messages; the
// game and achievement layers just return result values for it to
// render.
package bot

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"memory-game-bot/internal/achievement"
	"memory-game-bot/internal/config"
	"memory-game-bot/internal/game"
	"memory-game-bot/internal/game/roll"
	"memory-game-bot/internal/game/sequence"
	"memory-game-bot/internal/handler"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	gameHandler    *handler.GameHandler
	profileHandler *handler.ProfileHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config       *config.Config
	Engine       *achievement.Engine
	SequenceGame *sequence.Game
	RollGame     *roll.Game
	GameRegistry *game.Registry
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		gameHandler:    handler.NewGameHandler(deps.SequenceGame, deps.RollGame, deps.GameRegistry),
		profileHandler: handler.NewProfileHandler(deps.Engine),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoverMiddleware())
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", b.profileHandler.HandleStart)
	b.bot.Handle("/help", b.gameHandler.HandleGames)
	b.bot.Handle("/games", b.gameHandler.HandleGames)

	b.bot.Handle("/memory", b.gameHandler.HandleMemory)
	b.bot.Handle("/answer", b.gameHandler.HandleAnswer)
	b.bot.Handle("/roll", b.gameHandler.HandleRoll)
	b.bot.Handle("/score", b.gameHandler.HandleScore)

	b.bot.Handle("/profile", b.profileHandler.HandleProfile)
	b.bot.Handle("/achievements", b.profileHandler.HandleAchievements)
}

// Start begins polling for updates. Blocks until Stop is called.
func (b *Bot) Start() {
	b.bot.Start()
}

// Stop gracefully stops the bot.
func (b *Bot) Stop() {
	b.bot.Stop()
}
