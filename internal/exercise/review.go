package exercise

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// StartReview asks for a grade of the most overdue card
func (e *Engine) StartReview(ctx context.Context, chatID int64) (ReviewPrompt, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.user(ctx, chatID)
	if err != nil {
		return ReviewPrompt{}, err
	}
	due, err := e.store.ListDueCards(ctx, stats.UserID, e.now())
	if err != nil {
		return ReviewPrompt{}, err
	}
	if len(due) == 0 {
		return ReviewPrompt{}, models.ErrNothingDue
	}

	card := due[0]
	_, replaced := e.sessions.Set(chatID, session.Review{CardID: card.ID, Word: card.Word})

	return ReviewPrompt{Card: card, Due: len(due), Replaced: replacedKind(replaced)}, nil
}

func (e *Engine) answerReview(ctx context.Context, chatID int64, s session.Session, st session.Review, text string) (Outcome, error) {
	grade, ok := ParseReviewAnswer(text)
	if !ok {
		return Outcome{Kind: session.KindReview}, nil
	}

	out := Outcome{Handled: true, Kind: session.KindReview, Grade: grade}

	stats, err := e.user(ctx, chatID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotRegistered) {
			e.sessions.ClearIf(chatID, s.ID)
			return out, err
		}
		out.Retry = true
		return out, err
	}

	card, err := e.store.GetCard(ctx, st.CardID, stats.UserID)
	if err != nil {
		return e.reviewFailed(chatID, s, out, err)
	}
	out.Card = card

	now := e.now()
	sched, err := e.store.UpdateSchedule(ctx, card.ID, func(cur models.Schedule) (models.Schedule, error) {
		return e.policy.Process(cur, grade, now), nil
	})
	if err != nil {
		return e.reviewFailed(chatID, s, out, err)
	}
	out.Schedule = sched

	// The schedule is already persisted, so a failed streak update must not
	// leave the card open for a second grading.
	if err := e.store.RecordReview(ctx, stats.UserID, now); err != nil {
		e.log.Warn("review streak not recorded",
			zap.Int64("user_id", stats.UserID),
			zap.Int64("card_id", card.ID),
			zap.Error(err),
		)
	}

	e.sessions.ClearIf(chatID, s.ID)
	e.log.Debug("card reviewed",
		zap.Int64("card_id", card.ID),
		zap.String("grade", string(grade)),
		zap.Int("interval", sched.Interval),
		zap.Time("next_review", sched.NextReview),
	)
	return out, nil
}

// reviewFailed clears the session when the card is gone and keeps it for retry otherwise
func (e *Engine) reviewFailed(chatID int64, s session.Session, out Outcome, err error) (Outcome, error) {
	if errors.Is(err, models.ErrNotFound) {
		e.sessions.ClearIf(chatID, s.ID)
		return out, fmt.Errorf("review card: %w", err)
	}
	e.log.Error("review not saved", zap.Int64("chat_id", chatID), zap.Error(err))
	out.Retry = true
	return out, fmt.Errorf("review card: %w", err)
}
