package biz

import (
	"fmt"
	"strings"

	"divination-bot/internal/constants"
	"divination-bot/internal/deck"
)

// Interpretation prompt building. The generator receives a Russian
// fortune-teller persona and a single user turn describing the draw; follow-ups
// reuse the accumulated history instead.

const tarotSystemPrompt = `Ты опытный таролог. Тебе дают вопрос и расклад из трёх карт ` +
	`(Прошлое, Настоящее, Будущее). Дай развёрнутое толкование расклада применительно к вопросу. ` +
	`Структурируй ответ по разделам: Прошлое, Настоящее, Будущее и Общее толкование. ` +
	`Пиши тепло и поддерживающе, на русском языке, без мистических угроз.`

const ichingSystemPrompt = `Ты знаток Книги Перемен (И цзин). Тебе дают вопрос и выпавшую гексаграмму. ` +
	`Объясни значение гексаграммы применительно к вопросу: общий смысл и Общее толкование с практическим советом. ` +
	`Пиши тепло и поддерживающе, на русском языке.`

// SystemPrompt returns the generator persona for a divination type.
func SystemPrompt(divinationType string) string {
	if divinationType == constants.DivinationTypeIChing {
		return ichingSystemPrompt
	}
	return tarotSystemPrompt
}

// BuildTarotPrompt renders the user turn for a three-card spread.
func BuildTarotPrompt(question string, cards []deck.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Вопрос: %s\n\nРасклад:\n", question)
	for i, c := range cards {
		pos := ""
		if i < len(deck.SpreadPositions) {
			pos = deck.SpreadPositions[i]
		}
		fmt.Fprintf(&b, "%d. %s — %s (%s)\n", i+1, pos, c.Name, c.Meaning)
	}
	return b.String()
}

// BuildIChingPrompt renders the user turn for a hexagram draw.
func BuildIChingPrompt(question string, h deck.Hexagram) string {
	return fmt.Sprintf("Вопрос: %s\n\nВыпала гексаграмма №%d «%s» — %s.", question, h.Number, h.Name, h.Meaning)
}
