package bot

import (
	"fmt"
	"strings"

	"github.com/example/linguabot/internal/session"
	"github.com/example/linguabot/pkg/models"
)

const (
	textWelcomeBack   = "С возвращением! Я тебя помню 😊"
	textNotRegistered = "Сначала отправь /start, чтобы я тебя запомнил."
	textUnknown       = "Не понимаю. /help — список команд."
	textGenericError  = "Произошла ошибка. Попробуй позже."
	textNothingDue    = "🎉 Сегодня нет слов для повторения!"
	textNoCards       = "У тебя пока нет карточек."
	textCorrect       = "✅ Правильно!"
	textUnverified    = "Ошибка проверки. Выбери вариант из предложенных."
	textReplaced      = "⚠️ Предыдущее задание отменено."
	textNothingCancel = "Нечего отменять."
	textCardGone      = "Карточка уже удалена."
	textCardNotFound  = "Карточка не найдена."
	textReviewRetry   = "Ошибка при обработке ответа. Попробуй ещё раз."
	textReviewHint    = "Оцени, насколько легко было вспомнить слово, кнопкой ниже."
	textMatchHint     = "Ответь в формате «слово → перевод»."

	textPromptAdd      = "Отправь: слово | перевод | пример | примечание | уровень\nПример, примечание и уровень можно опустить."
	textPromptEdit     = "Отправь: слово | новый перевод [| пример | примечание | уровень]"
	textPromptDelete   = "Напиши слово, которое хочешь удалить."
	textPromptReminder = "Напиши время в формате ЧЧ:ММ (например, 09:00)."

	textBadCardFormat = "Неверный формат. Отправь: слово | перевод | пример | примечание | уровень"
	textBadEditFormat = "Неверный формат. Отправь: слово | новый перевод"
	textBadWord       = "Слово не может быть пустым."
	textBadTime       = "Неверный формат. Используй ЧЧ:ММ."
)

const textHelp = "📚 Доступные команды:\n" +
	"  /today — слова на сегодня\n" +
	"  /test — пройти тест\n" +
	"  /match — игра \"Сопоставление\"\n" +
	"  /review — повторить слова\n" +
	"  /progress — мой прогресс\n" +
	"  /cards [уровень] — мои карточки\n" +
	"  /add — добавить карточку\n" +
	"  /edit — изменить карточку\n" +
	"  /delete — удалить карточку\n" +
	"  /set_reminder — установить время напоминаний\n" +
	"  /cancel — отменить текущее задание\n" +
	"  /help — эта подсказка"

var levelNames = map[models.Level]string{
	models.LevelBeginner:     "начальный",
	models.LevelIntermediate: "средний",
	models.LevelAdvanced:     "продвинутый",
}

var kindNames = map[session.Kind]string{
	session.KindPendingInput: "ввод команды",
	session.KindQuiz:         "тест",
	session.KindMatch:        "сопоставление",
	session.KindReview:       "повторение",
}

func welcomeText(name string) string {
	if name == "" {
		name = "друг"
	}
	return fmt.Sprintf("Привет, %s! 👋\nЯ создал для тебя словарь в LinguaBot.\nТеперь ты можешь учить слова в боте!", name)
}

func withReplaced(replaced session.Kind, text string) string {
	if replaced == 0 {
		return text
	}
	return textReplaced + "\n\n" + text
}

func cardLine(prefix string, c models.Card) string {
	return prefix + " " + c.String()
}

func todayText(cards []models.Card) string {
	var sb strings.Builder
	sb.WriteString("Слова на сегодня:\n\n")
	for _, c := range cards {
		sb.WriteString(cardLine("📌", c))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cardsText(cards []models.Card, total int) string {
	var sb strings.Builder
	if total > len(cards) {
		fmt.Fprintf(&sb, "Твои карточки (первые %d из %d):\n\n", len(cards), total)
	} else {
		sb.WriteString("Твои карточки:\n\n")
	}
	for _, c := range cards {
		sb.WriteString(cardLine("•", c))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func progressText(p models.Progress) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Твой прогресс:\nВсего карточек: %d\nВыучено слов: %d\nСерия повторений: %d",
		p.TotalCards, p.LearnedCards, p.ReviewStreak)
	if p.TotalCards > 0 {
		sb.WriteString("\n\nПо уровням:")
		for _, l := range models.Levels {
			fmt.Fprintf(&sb, "\n• %s: %d", levelNames[l], p.ByLevel[l])
		}
	}
	return sb.String()
}

func wrongText(expected string) string {
	return "❌ Правильно: " + expected
}

func reviewDoneText(days int) string {
	return fmt.Sprintf("✅ Готово! Следующее повторение через %d дн.", days)
}

func cancelledText(kind session.Kind) string {
	return fmt.Sprintf("Отменено: %s.", kindNames[kind])
}
