// Package bot is the Telegram transport: it routes commands and replies to
// the exercise engine and renders its results as chat messages.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/exercise"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// CardsPageSize is how many cards /cards shows
const CardsPageSize = 10

// BotSender sends messages to Telegram
type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Engine is the exercise engine driven by the bot
type Engine interface {
	Register(ctx context.Context, chatID int64, username string) (models.UserStats, bool, error)
	Today(ctx context.Context, chatID int64) ([]models.Card, error)
	Progress(ctx context.Context, chatID int64) (models.Progress, error)
	Cards(ctx context.Context, chatID int64, level models.Level, limit int) ([]models.Card, int, error)
	StartQuiz(ctx context.Context, chatID int64) (exercise.QuizPrompt, error)
	StartMatch(ctx context.Context, chatID int64) (exercise.MatchPrompt, error)
	StartReview(ctx context.Context, chatID int64) (exercise.ReviewPrompt, error)
	BeginInput(ctx context.Context, chatID int64, kind session.InputKind) (session.Kind, error)
	SubmitInput(ctx context.Context, chatID int64, kind session.InputKind, text string) (session.Kind, exercise.Outcome, error)
	Cancel(chatID int64) (session.Kind, bool)
	HandleReply(ctx context.Context, chatID int64, text string) (exercise.Outcome, error)
}

// DefaultWorkers is the number of update workers started by Run
const DefaultWorkers = 8

// queueSize bounds the backlog of one worker
const queueSize = 64

// Bot represents the Telegram bot application
type Bot struct {
	api     BotSender
	engine  Engine
	log     *zap.Logger
	workers int
}

// Option configures a Bot
type Option func(*Bot)

// WithWorkers sets how many chats are served in parallel
func WithWorkers(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.workers = n
		}
	}
}

// New creates a new bot instance
func New(api BotSender, engine Engine, log *zap.Logger, opts ...Option) *Bot {
	b := &Bot{api: api, engine: engine, log: log, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewTelegramAPI connects to the Bot API with the given token
func NewTelegramAPI(token, env string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = env == "development"
	return api, nil
}

// Run handles updates until the channel is closed or ctx is done, then
// waits for the queued ones. Updates of one chat always go to the same
// worker, so they are handled one at a time in arrival order.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	queues := make([]chan tgbotapi.Update, b.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, queueSize)
		wg.Add(1)
		go func(queue <-chan tgbotapi.Update) {
			defer wg.Done()
			for update := range queue {
				b.HandleUpdate(ctx, update)
			}
		}(queues[i])
	}
	defer func() {
		for _, queue := range queues {
			close(queue)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			select {
			case queues[shard(update, len(queues))] <- update:
			case <-ctx.Done():
				return
			}
		}
	}
}

// shard picks the worker of the chat an update belongs to
func shard(update tgbotapi.Update, n int) int {
	chat := update.FromChat()
	if chat == nil {
		return 0
	}
	return int(uint64(chat.ID) % uint64(n))
}

// Notify implements scheduler.Notifier
func (b *Bot) Notify(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	b.log.Debug("reminder sent", zap.Int64("chat_id", chatID))
	return nil
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	b.send(msg)
}
