package bot

import (
	"fmt"

	"divination-bot/internal/biz"
	"divination-bot/internal/constants"
	"divination-bot/internal/deck"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MainMenuKeyboard is the persistent reply keyboard.
func MainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonNewReading),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonMyReadings),
			tgbotapi.NewKeyboardButton(ButtonBuyReadings),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonDailyCard),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// TypeKeyboard offers the two divination types.
func TypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🃏 "+LabelTarot, ActionChooseType+":"+constants.DivinationTypeTarot),
			tgbotapi.NewInlineKeyboardButtonData("☯️ "+LabelIChing, ActionChooseType+":"+constants.DivinationTypeIChing),
		),
	)
}

// DrawModeKeyboard offers random vs manual card selection for tarot. When a
// webapp URL is configured a browser selection button is added.
func DrawModeKeyboard(webAppURL string, userID int64) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎲 Случайные карты", ActionRandomCards),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🃏 Выбрать самому", ActionSelectCards),
		),
	}
	if webAppURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("✨ Выбрать на столе", fmt.Sprintf("%s?user_id=%d", webAppURL, userID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CardSelectionKeyboard renders the deck as a toggle grid; picked cards are
// checked. A confirm row appears once the spread is full.
func CardSelectionKeyboard(selected []string) tgbotapi.InlineKeyboardMarkup {
	picked := make(map[string]bool, len(selected))
	for _, id := range selected {
		picked[id] = true
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range deck.Cards() {
		label := c.Name
		if picked[c.ID] {
			label = "✅ " + c.Name
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, ActionToggleCard+":"+c.ID))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if len(selected) == constants.TarotSpreadSize {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔮 Сделать расклад", ActionConfirmCards),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// PackagesKeyboard lists the purchase catalog.
func PackagesKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range biz.Packages {
		label := fmt.Sprintf("%s — %d ₽", p.Title, p.AmountKopecks/100)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, ActionBuyPackage+":"+p.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// PaymentKeyboard carries the gateway redirect plus status controls.
func PaymentKeyboard(confirmationURL, paymentID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("💳 Оплатить", confirmationURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Я оплатил(а)", ActionCheckPayment+":"+paymentID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", ActionCancelPayment),
		),
	)
}

// EmailConfirmKeyboard offers reusing the saved receipt email.
func EmailConfirmKeyboard(email string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да, "+email, ActionEmailYes),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Другой email", ActionEmailNo),
		),
	)
}

// DailyCardKeyboard offers a blind pick of one of three cards.
func DailyCardKeyboard(cards []deck.Card) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range cards {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🂠", ActionDailyReveal+":"+c.ID))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(row...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔕 Отписаться", ActionDailyUnsub),
		),
	)
}

// DailySubscribeKeyboard restores the daily push subscription.
func DailySubscribeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Подписаться снова", ActionDailySub),
		),
	)
}
