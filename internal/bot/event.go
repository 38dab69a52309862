package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// EventKind tags the inbound event union.
type EventKind int

const (
	// EventCommand a /command message
	EventCommand EventKind = iota
	// EventText a plain text message
	EventText
	// EventCallback an inline button press
	EventCallback
)

// Callback is a parsed inline button payload ("action" or "action:arg").
type Callback struct {
	ID     string
	Action string
	Arg    string
}

// Sender is the message author's identity.
type Sender struct {
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// Event is the tagged union every inbound update is parsed into. Exactly one
// of Command/Text/Callback is meaningful, selected by Kind.
type Event struct {
	Kind      EventKind
	UserID    int64
	ChatID    int64
	MessageID int
	Command   string // without the leading slash
	Args      string // command payload
	Text      string
	Callback  Callback
	From      Sender
}

// ParseUpdate converts a raw update into an Event. Updates that carry neither
// a text message nor a callback are not handled.
func ParseUpdate(u tgbotapi.Update) (*Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		action, arg := splitCallbackData(cq.Data)
		ev := &Event{
			Kind:   EventCallback,
			UserID: cq.From.ID,
			Callback: Callback{
				ID:     cq.ID,
				Action: action,
				Arg:    arg,
			},
			From: senderOf(cq.From),
		}
		if cq.Message != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		} else {
			ev.ChatID = cq.From.ID
		}
		return ev, true

	case u.Message != nil && u.Message.From != nil:
		m := u.Message
		ev := &Event{
			UserID:    m.From.ID,
			ChatID:    m.Chat.ID,
			MessageID: m.MessageID,
			From:      senderOf(m.From),
		}
		if m.IsCommand() {
			ev.Kind = EventCommand
			ev.Command = m.Command()
			ev.Args = m.CommandArguments()
			return ev, true
		}
		text := strings.TrimSpace(m.Text)
		if text == "" {
			return nil, false
		}
		ev.Kind = EventText
		ev.Text = text
		return ev, true
	}
	return nil, false
}

func splitCallbackData(data string) (action, arg string) {
	if i := strings.IndexByte(data, ':'); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, ""
}

func senderOf(u *tgbotapi.User) Sender {
	if u == nil {
		return Sender{}
	}
	return Sender{
		Username:     u.UserName,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		LanguageCode: u.LanguageCode,
	}
}
