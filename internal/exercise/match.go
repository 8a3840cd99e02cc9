package exercise

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

// StartMatch samples up to four cards and asks for the translation of one of them
func (e *Engine) StartMatch(ctx context.Context, chatID int64) (MatchPrompt, error) {
	unlock := e.sessions.Lock(chatID)
	defer unlock()

	stats, err := e.user(ctx, chatID)
	if err != nil {
		return MatchPrompt{}, err
	}
	cards, err := e.store.ListCards(ctx, stats.UserID, "")
	if err != nil {
		return MatchPrompt{}, err
	}
	cards = matchable(cards)
	if len(cards) < MatchMinCards {
		return MatchPrompt{}, fmt.Errorf("%w: matching needs %d cards, have %d", models.ErrNotEnoughCards, MatchMinCards, len(cards))
	}

	sample := lo.Samples(cards, MatchSample)
	pairs := make(map[string]string, len(sample))
	for _, c := range sample {
		pairs[c.Word] = c.Translation
	}
	target := sample[0].Word
	options := lo.Shuffle(lo.Map(sample, func(c models.Card, _ int) string { return c.Translation }))

	_, replaced := e.sessions.Set(chatID, session.Match{Target: target, Pairs: pairs})

	e.log.Debug("match started", zap.Int64("chat_id", chatID), zap.Int("sample", len(sample)))
	return MatchPrompt{Target: target, Options: options, Replaced: replacedKind(replaced)}, nil
}

// matchable drops cards that cannot be written as one match answer and keeps
// the first card of each word.
func matchable(cards []models.Card) []models.Card {
	cards = lo.Filter(cards, func(c models.Card, _ int) bool {
		return !strings.Contains(c.Word, MatchSeparator) && !strings.Contains(c.Translation, MatchSeparator)
	})
	return lo.UniqBy(cards, func(c models.Card) string { return c.Word })
}

func (e *Engine) answerMatch(chatID int64, s session.Session, st session.Match, text string) Outcome {
	word, given, ok := ParseMatchAnswer(text)
	if !ok {
		return Outcome{Kind: session.KindMatch}
	}

	expected, ok := st.Pairs[word]
	if !ok {
		return Outcome{Handled: true, Kind: session.KindMatch, Unverified: true, Retry: true}
	}

	e.sessions.ClearIf(chatID, s.ID)
	return Outcome{
		Handled:  true,
		Kind:     session.KindMatch,
		Correct:  given == expected,
		Expected: expected,
	}
}
