package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 5,
			From:      &tgbotapi.User{ID: userID, UserName: "tester"},
			Chat:      &tgbotapi.Chat{ID: userID},
			Text:      text,
		},
	}
}

func TestParseUpdateCommand(t *testing.T) {
	u := textUpdate(1, "/start utm_source_vk")
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}

	ev, ok := ParseUpdate(u)
	if !ok {
		t.Fatal("command update not handled")
	}
	if ev.Kind != EventCommand || ev.Command != "start" || ev.Args != "utm_source_vk" {
		t.Fatalf("parsed %+v", ev)
	}
	if ev.From.Username != "tester" {
		t.Fatalf("sender lost: %+v", ev.From)
	}
}

func TestParseUpdateText(t *testing.T) {
	ev, ok := ParseUpdate(textUpdate(2, "  Что меня ждёт?  "))
	if !ok {
		t.Fatal("text update not handled")
	}
	if ev.Kind != EventText || ev.Text != "Что меня ждёт?" {
		t.Fatalf("parsed %+v", ev)
	}
}

func TestParseUpdateEmptyTextIgnored(t *testing.T) {
	if _, ok := ParseUpdate(textUpdate(3, "   ")); ok {
		t.Fatal("whitespace-only message must not be handled")
	}
	if _, ok := ParseUpdate(tgbotapi.Update{}); ok {
		t.Fatal("empty update must not be handled")
	}
}

func TestParseUpdateCallback(t *testing.T) {
	u := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-1",
			From: &tgbotapi.User{ID: 4},
			Message: &tgbotapi.Message{
				MessageID: 9,
				Chat:      &tgbotapi.Chat{ID: 44},
			},
			Data: "buy:pay_10_spreads",
		},
	}
	ev, ok := ParseUpdate(u)
	if !ok {
		t.Fatal("callback update not handled")
	}
	if ev.Kind != EventCallback || ev.UserID != 4 || ev.ChatID != 44 || ev.MessageID != 9 {
		t.Fatalf("parsed %+v", ev)
	}
	if ev.Callback.Action != "buy" || ev.Callback.Arg != "pay_10_spreads" {
		t.Fatalf("callback payload %+v", ev.Callback)
	}
}

func TestParseUpdateCallbackWithoutMessage(t *testing.T) {
	u := tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb-2",
			From: &tgbotapi.User{ID: 5},
			Data: "menu",
		},
	}
	ev, ok := ParseUpdate(u)
	if !ok {
		t.Fatal("callback without message not handled")
	}
	if ev.ChatID != 5 {
		t.Fatalf("chat id must fall back to the sender, got %d", ev.ChatID)
	}
	if ev.Callback.Action != "menu" || ev.Callback.Arg != "" {
		t.Fatalf("callback payload %+v", ev.Callback)
	}
}

func TestSplitCallbackData(t *testing.T) {
	cases := []struct{ in, action, arg string }{
		{"type:tarot", "type", "tarot"},
		{"menu", "menu", ""},
		{"check:gw-1:extra", "check", "gw-1:extra"},
		{"", "", ""},
	}
	for _, tc := range cases {
		action, arg := splitCallbackData(tc.in)
		if action != tc.action || arg != tc.arg {
			t.Fatalf("splitCallbackData(%q) = %q, %q", tc.in, action, arg)
		}
	}
}
