package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/linguabot/internal/exercise"
)

// createKeyboard creates a reply keyboard from rows of button labels
func createKeyboard(rows [][]string, oneTime bool) tgbotapi.ReplyKeyboardMarkup {
	keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, text := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(text))
		}
		keyboard = append(keyboard, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(keyboard...)
	markup.OneTimeKeyboard = oneTime
	return markup
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return createKeyboard([][]string{
		{"/today", "/test"},
		{"/match", "/review"},
		{"/progress", "/cards"},
		{"/help"},
	}, false)
}

func columnKeyboard(options []string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]string, 0, len(options))
	for _, o := range options {
		rows = append(rows, []string{o})
	}
	return createKeyboard(rows, true)
}

func quizKeyboard(p exercise.QuizPrompt) tgbotapi.ReplyKeyboardMarkup {
	return columnKeyboard(p.Options)
}

func matchKeyboard(p exercise.MatchPrompt) tgbotapi.ReplyKeyboardMarkup {
	labels := make([]string, 0, len(p.Options))
	for _, o := range p.Options {
		labels = append(labels, exercise.FormatMatchAnswer(p.Target, o))
	}
	return columnKeyboard(labels)
}

func reviewKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return columnKeyboard(exercise.ReviewAnswers)
}
