package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/exercise"
	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// HandleUpdate handles one incoming update from Telegram
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	if message.IsCommand() {
		b.HandleCommand(ctx, message)
		return
	}
	b.handleText(ctx, message.Chat.ID, message.Text)
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.reply(chatID, textHelp, mainKeyboard())
	case "today":
		b.handleToday(ctx, chatID)
	case "progress":
		b.handleProgress(ctx, chatID)
	case "cards":
		b.handleCards(ctx, chatID, args)
	case "add":
		b.beginInput(ctx, chatID, session.InputAddCard, textPromptAdd, args)
	case "edit":
		b.beginInput(ctx, chatID, session.InputEditWord, textPromptEdit, args)
	case "delete":
		b.beginInput(ctx, chatID, session.InputDeleteWord, textPromptDelete, args)
	case "set_reminder":
		b.beginInput(ctx, chatID, session.InputSetReminderTime, textPromptReminder, args)
	case "test":
		b.handleQuiz(ctx, chatID)
	case "match":
		b.handleMatch(ctx, chatID)
	case "review":
		b.handleReview(ctx, chatID)
	case "cancel":
		b.handleCancel(chatID)
	default:
		b.reply(chatID, textUnknown, mainKeyboard())
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	var username, firstName string
	if message.From != nil {
		username, firstName = message.From.UserName, message.From.FirstName
	}

	_, created, err := b.engine.Register(ctx, message.Chat.ID, username)
	if err != nil {
		b.replyError(message.Chat.ID, "start", err)
		return
	}

	if created {
		b.reply(message.Chat.ID, welcomeText(firstName), mainKeyboard())
	} else {
		b.reply(message.Chat.ID, textWelcomeBack, mainKeyboard())
	}
	b.reply(message.Chat.ID, textHelp, nil)
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) {
	cards, err := b.engine.Today(ctx, chatID)
	if err != nil {
		b.replyError(chatID, "today", err)
		return
	}
	if len(cards) == 0 {
		b.reply(chatID, textNothingDue, nil)
		return
	}
	b.reply(chatID, todayText(cards), nil)
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64) {
	p, err := b.engine.Progress(ctx, chatID)
	if err != nil {
		b.replyError(chatID, "progress", err)
		return
	}
	b.reply(chatID, progressText(p), nil)
}

func (b *Bot) handleCards(ctx context.Context, chatID int64, args string) {
	level, err := models.ParseLevel(args)
	if err != nil {
		b.reply(chatID, "Неизвестный уровень. Доступны: beginner, intermediate, advanced.", nil)
		return
	}
	if args == "" {
		level = ""
	}

	cards, total, err := b.engine.Cards(ctx, chatID, level, CardsPageSize)
	if err != nil {
		b.replyError(chatID, "cards", err)
		return
	}
	if total == 0 {
		b.reply(chatID, textNoCards, nil)
		return
	}
	b.reply(chatID, cardsText(cards, total), nil)
}

// beginInput registers a pending command. Arguments given with the command
// are consumed right away as the awaited input, within the same turn.
func (b *Bot) beginInput(ctx context.Context, chatID int64, kind session.InputKind, prompt, args string) {
	if args != "" {
		replaced, out, err := b.engine.SubmitInput(ctx, chatID, kind, args)
		if !out.Handled {
			b.replyError(chatID, string(kind), err)
			return
		}
		b.renderInput(chatID, replaced, out, err)
		return
	}

	replaced, err := b.engine.BeginInput(ctx, chatID, kind)
	if err != nil {
		b.replyError(chatID, string(kind), err)
		return
	}
	b.reply(chatID, withReplaced(replaced, prompt), tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleQuiz(ctx context.Context, chatID int64) {
	p, err := b.engine.StartQuiz(ctx, chatID)
	if errors.Is(err, models.ErrNotEnoughCards) {
		b.reply(chatID, fmt.Sprintf("Нужно хотя бы %d слова с разными переводами.", exercise.QuizMinCards), nil)
		return
	}
	if err != nil {
		b.replyError(chatID, "quiz", err)
		return
	}
	text := fmt.Sprintf("🎯 Тест: что означает «%s»?", p.Word)
	b.reply(chatID, withReplaced(p.Replaced, text), quizKeyboard(p))
}

func (b *Bot) handleMatch(ctx context.Context, chatID int64) {
	p, err := b.engine.StartMatch(ctx, chatID)
	if errors.Is(err, models.ErrNotEnoughCards) {
		b.reply(chatID, fmt.Sprintf("Нужно хотя бы %d слова.", exercise.MatchMinCards), nil)
		return
	}
	if err != nil {
		b.replyError(chatID, "match", err)
		return
	}
	text := fmt.Sprintf("🧠 Сопоставь: «%s»", p.Target)
	b.reply(chatID, withReplaced(p.Replaced, text), matchKeyboard(p))
}

func (b *Bot) handleReview(ctx context.Context, chatID int64) {
	p, err := b.engine.StartReview(ctx, chatID)
	if err != nil {
		b.replyError(chatID, "review", err)
		return
	}
	text := fmt.Sprintf("🔁 Повторение (%d к повторению):\n\n%s?", p.Due, p.Card.Word)
	b.reply(chatID, withReplaced(p.Replaced, text), reviewKeyboard())
}

func (b *Bot) handleCancel(chatID int64) {
	kind, ok := b.engine.Cancel(chatID)
	if !ok {
		b.reply(chatID, textNothingCancel, mainKeyboard())
		return
	}
	b.reply(chatID, cancelledText(kind), mainKeyboard())
}

// handleText routes free text to the active session
func (b *Bot) handleText(ctx context.Context, chatID int64, text string) {
	out, err := b.engine.HandleReply(ctx, chatID, text)

	if !out.Handled {
		if err != nil {
			b.replyError(chatID, "reply", err)
			return
		}
		switch out.Kind {
		case session.KindReview:
			b.reply(chatID, textReviewHint, reviewKeyboard())
		case session.KindMatch:
			b.reply(chatID, textMatchHint, nil)
		default:
			b.reply(chatID, textUnknown, mainKeyboard())
		}
		return
	}

	switch out.Kind {
	case session.KindQuiz, session.KindMatch:
		b.renderAnswer(chatID, out)
	case session.KindReview:
		b.renderReview(chatID, out, err)
	case session.KindPendingInput:
		b.renderInput(chatID, 0, out, err)
	}
}

func (b *Bot) renderAnswer(chatID int64, out exercise.Outcome) {
	switch {
	case out.Unverified:
		b.reply(chatID, textUnverified, nil)
	case out.Correct:
		b.reply(chatID, textCorrect, mainKeyboard())
	default:
		b.reply(chatID, wrongText(out.Expected), mainKeyboard())
	}
}

func (b *Bot) renderReview(chatID int64, out exercise.Outcome, err error) {
	switch {
	case err == nil:
		b.reply(chatID, reviewDoneText(out.Schedule.Interval), mainKeyboard())
	case errors.Is(err, models.ErrNotFound):
		b.reply(chatID, textCardGone, mainKeyboard())
	case out.Retry:
		b.log.Error("review failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.reply(chatID, textReviewRetry, reviewKeyboard())
	default:
		b.replyError(chatID, "review answer", err)
	}
}

func (b *Bot) renderInput(chatID int64, replaced session.Kind, out exercise.Outcome, err error) {
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			b.reply(chatID, withReplaced(replaced, inputErrorText(out.Input)), nil)
		case errors.Is(err, models.ErrNotFound):
			b.reply(chatID, withReplaced(replaced, textCardNotFound), mainKeyboard())
		default:
			b.replyError(chatID, string(out.Input), err)
		}
		return
	}

	var text string
	switch out.Input {
	case session.InputAddCard:
		text = cardLine("✅ Карточка добавлена:", out.Card)
	case session.InputEditWord:
		text = cardLine("✏️ Карточка обновлена:", out.Card)
	case session.InputDeleteWord:
		text = fmt.Sprintf("🗑 Карточка «%s» удалена.", out.Card.Word)
	case session.InputSetReminderTime:
		text = fmt.Sprintf("✅ Напоминания установлены на %s.", out.Reminder)
	}
	b.reply(chatID, withReplaced(replaced, text), mainKeyboard())
}

func inputErrorText(kind session.InputKind) string {
	switch kind {
	case session.InputAddCard:
		return textBadCardFormat
	case session.InputEditWord:
		return textBadEditFormat
	case session.InputDeleteWord:
		return textBadWord
	case session.InputSetReminderTime:
		return textBadTime
	}
	return textGenericError
}

// replyError reports err to the user. Unexpected errors are logged.
func (b *Bot) replyError(chatID int64, op string, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotRegistered):
		b.reply(chatID, textNotRegistered, nil)
	case errors.Is(err, models.ErrNothingDue):
		b.reply(chatID, textNothingDue, mainKeyboard())
	case errors.Is(err, models.ErrNotFound):
		b.reply(chatID, textCardNotFound, mainKeyboard())
	default:
		b.log.Error("request failed", zap.String("op", op), zap.Int64("chat_id", chatID), zap.Error(err))
		b.reply(chatID, textGenericError, mainKeyboard())
	}
}
