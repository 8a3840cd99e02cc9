package exercise

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// StartQuiz picks a random card and offers its translation among three others
func (e *Engine) StartQuiz(ctx context.Context, chatID int64) (QuizPrompt, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.user(ctx, chatID)
	if err != nil {
		return QuizPrompt{}, err
	}
	cards, err := e.store.ListCards(ctx, stats.UserID, "")
	if err != nil {
		return QuizPrompt{}, err
	}
	if len(cards) < QuizMinCards {
		return QuizPrompt{}, fmt.Errorf("%w: quiz needs %d cards, have %d", models.ErrNotEnoughCards, QuizMinCards, len(cards))
	}

	target, options, err := buildQuiz(cards)
	if err != nil {
		return QuizPrompt{}, err
	}

	_, replaced := e.sessions.Set(chatID, session.Quiz{
		Word:          target.Word,
		CorrectAnswer: target.Translation,
		Options:       options,
	})

	e.log.Debug("quiz started", zap.Int64("chat_id", chatID), zap.Int64("card_id", target.ID))
	return QuizPrompt{Word: target.Word, Options: options, Replaced: replacedKind(replaced)}, nil
}

// buildQuiz shuffles cards, takes the first as target and collects three
// distinct distractor translations from the rest.
func buildQuiz(cards []models.Card) (models.Card, []string, error) {
	shuffled := lo.Shuffle(append([]models.Card(nil), cards...))
	target := shuffled[0]

	distractors := lo.Uniq(lo.FilterMap(shuffled[1:], func(c models.Card, _ int) (string, bool) {
		return c.Translation, c.Translation != target.Translation
	}))
	if len(distractors) < QuizOptions-1 {
		return models.Card{}, nil, fmt.Errorf("%w: only %d distinct translations besides %q",
			models.ErrNotEnoughCards, len(distractors), target.Translation)
	}

	options := append(distractors[:QuizOptions-1:QuizOptions-1], target.Translation)
	return target, lo.Shuffle(options), nil
}

func (e *Engine) answerQuiz(chatID int64, s session.Session, st session.Quiz, text string) Outcome {
	e.sessions.ClearIf(chatID, s.ID)
	return Outcome{
		Handled:  true,
		Kind:     session.KindQuiz,
		Correct:  text == st.CorrectAnswer,
		Expected: st.CorrectAnswer,
	}
}
