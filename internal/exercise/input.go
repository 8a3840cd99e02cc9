package exercise

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// BeginInput registers a multi-step command awaiting the user's next message
func (e *Engine) BeginInput(ctx context.Context, chatID int64, kind session.InputKind) (session.Kind, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	_, replaced, err := e.beginInput(ctx, chatID, kind)
	return replaced, err
}

// SubmitInput registers a multi-step command and answers it with text in
// the same turn, as if text were the user's next message.
func (e *Engine) SubmitInput(ctx context.Context, chatID int64, kind session.InputKind, text string) (session.Kind, Outcome, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	s, replaced, err := e.beginInput(ctx, chatID, kind)
	if err != nil {
		return 0, Outcome{}, err
	}
	out, err := e.answerInput(ctx, chatID, s, session.PendingInput{Input: kind}, text)
	return replaced, out, err
}

func (e *Engine) beginInput(ctx context.Context, chatID int64, kind session.InputKind) (session.Session, session.Kind, error) {
	switch kind {
	case session.InputAddCard, session.InputEditWord, session.InputDeleteWord, session.InputSetReminderTime:
	default:
		return session.Session{}, 0, fmt.Errorf("%w: unknown input kind %q", models.ErrValidation, kind)
	}

	if _, err := e.user(ctx, chatID); err != nil {
		return session.Session{}, 0, err
	}

	s, replaced := e.sessions.Set(chatID, session.PendingInput{Input: kind})
	return s, replacedKind(replaced), nil
}

// answerInput interprets text according to the pending command. The reminder
// time stays pending until it is set; the card commands are consumed by any attempt.
func (e *Engine) answerInput(ctx context.Context, chatID int64, s session.Session, st session.PendingInput, text string) (Outcome, error) {
	out := Outcome{Handled: true, Kind: session.KindPendingInput, Input: st.Input}

	if st.Input != session.InputSetReminderTime {
		e.sessions.ClearIf(chatID, s.ID)
	}

	stats, err := e.user(ctx, chatID)
	if err != nil {
		e.sessions.ClearIf(chatID, s.ID)
		return out, err
	}

	switch st.Input {
	case session.InputAddCard:
		in, err := ParseCardInput(text)
		if err != nil {
			return out, err
		}
		card, err := e.store.CreateCard(ctx, stats.UserID, in)
		if err != nil {
			return out, fmt.Errorf("add card: %w", err)
		}
		out.Card = card
		e.log.Info("card added", zap.Int64("user_id", stats.UserID), zap.Int64("card_id", card.ID))

	case session.InputEditWord:
		edit, err := ParseCardEdit(text)
		if err != nil {
			return out, err
		}
		card, err := e.store.FindCardByWord(ctx, stats.UserID, edit.Word)
		if err != nil {
			return out, fmt.Errorf("edit card %q: %w", edit.Word, err)
		}
		in := edit.Apply(card)
		if err := in.Validate(); err != nil {
			return out, err
		}
		if err := e.store.UpdateCard(ctx, card.ID, stats.UserID, in); err != nil {
			return out, fmt.Errorf("edit card %q: %w", edit.Word, err)
		}
		card.Translation, card.Example, card.Note, card.Level = in.Translation, in.Example, in.Note, in.Level
		out.Card = card

	case session.InputDeleteWord:
		word := strings.TrimSpace(text)
		if word == "" {
			return out, fmt.Errorf("%w: word cannot be empty", models.ErrValidation)
		}
		card, err := e.store.FindCardByWord(ctx, stats.UserID, word)
		if err != nil {
			return out, fmt.Errorf("delete card %q: %w", word, err)
		}
		if err := e.store.DeleteCard(ctx, card.ID, stats.UserID); err != nil {
			return out, fmt.Errorf("delete card %q: %w", word, err)
		}
		out.Card = card
		e.log.Info("card deleted", zap.Int64("user_id", stats.UserID), zap.Int64("card_id", card.ID))

	case session.InputSetReminderTime:
		t, err := models.ParseTimeOfDay(text)
		if err != nil {
			out.Retry = true
			return out, err
		}
		if err := e.store.SetReminderTime(ctx, stats.UserID, t); err != nil {
			out.Retry = true
			return out, fmt.Errorf("set reminder: %w", err)
		}
		e.sessions.ClearIf(chatID, s.ID)
		out.Reminder = t
	}

	return out, nil
}
