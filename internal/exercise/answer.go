package exercise

import (
	"fmt"
	"strings"

	"github.com/example/linguabot/internal/spaced_repetition"
	"github.com/example/linguabot/pkg/models"
)

// MatchSeparator splits a matching reply into word and chosen translation
const MatchSeparator = "→"

// FieldSeparator splits the fields of add and edit input
const FieldSeparator = "|"

// Review answer tokens, in the order they are offered
const (
	AnswerForgot = "🔴 Забыл"
	AnswerHard   = "🟡 Сложно"
	AnswerEasy   = "🟢 Легко"
)

// ReviewAnswers lists the accepted review tokens
var ReviewAnswers = []string{AnswerForgot, AnswerHard, AnswerEasy}

var reviewGrades = map[string]spaced_repetition.Grade{
	AnswerForgot: spaced_repetition.GradeHard,
	AnswerHard:   spaced_repetition.GradeGood,
	AnswerEasy:   spaced_repetition.GradeEasy,
}

// ParseReviewAnswer maps a review token to its grade. Anything else is rejected.
func ParseReviewAnswer(text string) (spaced_repetition.Grade, bool) {
	g, ok := reviewGrades[strings.TrimSpace(text)]
	return g, ok
}

// ParseMatchAnswer splits "word → translation". The separator must occur exactly once.
func ParseMatchAnswer(text string) (word, translation string, ok bool) {
	if strings.Count(text, MatchSeparator) != 1 {
		return "", "", false
	}
	word, translation, _ = strings.Cut(text, MatchSeparator)
	return strings.TrimSpace(word), strings.TrimSpace(translation), true
}

// FormatMatchAnswer is the inverse of ParseMatchAnswer
func FormatMatchAnswer(word, translation string) string {
	return word + " " + MatchSeparator + " " + translation
}

func splitFields(text string) []string {
	parts := strings.Split(text, FieldSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseCardInput parses "word | translation | example | note | level".
// Example, note and level may be omitted.
func ParseCardInput(text string) (models.CardInput, error) {
	parts := splitFields(text)
	if len(parts) < 2 || len(parts) > 5 {
		return models.CardInput{}, fmt.Errorf("%w: expected 2 to 5 fields, got %d", models.ErrValidation, len(parts))
	}

	in := models.CardInput{Word: parts[0], Translation: parts[1]}
	if len(parts) > 2 {
		in.Example = parts[2]
	}
	if len(parts) > 3 {
		in.Note = parts[3]
	}
	if len(parts) > 4 {
		level, err := models.ParseLevel(parts[4])
		if err != nil {
			return models.CardInput{}, err
		}
		in.Level = level
	}
	if err := in.Validate(); err != nil {
		return models.CardInput{}, err
	}
	return in, nil
}

// CardEdit is a parsed edit request. Nil fields keep their stored values.
type CardEdit struct {
	Word        string
	Translation string
	Example     *string
	Note        *string
	Level       *models.Level
}

// ParseCardEdit parses "word | translation [| example | note | level]"
func ParseCardEdit(text string) (CardEdit, error) {
	parts := splitFields(text)
	if len(parts) < 2 || len(parts) > 5 {
		return CardEdit{}, fmt.Errorf("%w: expected 2 to 5 fields, got %d", models.ErrValidation, len(parts))
	}
	if parts[0] == "" {
		return CardEdit{}, fmt.Errorf("%w: word cannot be empty", models.ErrValidation)
	}
	if parts[1] == "" {
		return CardEdit{}, fmt.Errorf("%w: translation cannot be empty", models.ErrValidation)
	}

	edit := CardEdit{Word: parts[0], Translation: parts[1]}
	if len(parts) > 2 {
		edit.Example = &parts[2]
	}
	if len(parts) > 3 {
		edit.Note = &parts[3]
	}
	if len(parts) > 4 {
		level, err := models.ParseLevel(parts[4])
		if err != nil {
			return CardEdit{}, err
		}
		edit.Level = &level
	}
	return edit, nil
}

// Apply merges the edit into the stored card
func (e CardEdit) Apply(c models.Card) models.CardInput {
	in := models.CardInput{
		Word:        c.Word,
		Translation: e.Translation,
		Example:     c.Example,
		Note:        c.Note,
		Level:       c.Level,
	}
	if e.Example != nil {
		in.Example = *e.Example
	}
	if e.Note != nil {
		in.Note = *e.Note
	}
	if e.Level != nil {
		in.Level = *e.Level
	}
	return in
}
