package biz

import (
	"context"

	"divination-bot/internal/constants"
)

// SessionState tags the conversation state machine.
type SessionState string

const (
	// StateChoosingType question captured, divination type pending
	StateChoosingType SessionState = "choosing_type"
	// StateAwaitingQuestion type chosen, question pending
	StateAwaitingQuestion SessionState = "awaiting_question"
	// StateSelectingCards manual tarot card selection in progress
	StateSelectingCards SessionState = "selecting_cards"
	// StateChatting reading delivered, follow-ups allowed
	StateChatting SessionState = "chatting"
	// StateWaitingEmail package chosen, receipt email pending
	StateWaitingEmail SessionState = "waiting_email"
	// StateConfirmingEmail saved email offered for reuse
	StateConfirmingEmail SessionState = "confirming_email"
	// StateWaitingPayment payment intent open, confirmation pending
	StateWaitingPayment SessionState = "waiting_payment"
)

// Session is the per-user ephemeral conversation state. The zero value never
// exists in the store; absence of a session means idle.
type Session struct {
	State          SessionState `json:"state"`
	Question       string       `json:"question,omitempty"`
	DivinationType string       `json:"divination_type,omitempty"`
	SelectedCards  []string     `json:"selected_cards,omitempty"`
	FollowUps      int          `json:"follow_ups,omitempty"`
	IsFree         bool         `json:"is_free,omitempty"`
	ReadingID      int64        `json:"reading_id,omitempty"`
	History        []Turn       `json:"history,omitempty"`
	PackageID      string       `json:"package_id,omitempty"`
	Email          string       `json:"email,omitempty"`
	PaymentID      string       `json:"payment_id,omitempty"`
}

// FollowUpLimit is the quota for this session's reading.
func (s *Session) FollowUpLimit() int {
	if s.IsFree {
		return constants.FreeFollowUpLimit
	}
	return constants.PaidFollowUpLimit
}

// SessionRepo is the conversation state store. Sessions expire on their own
// after the store's TTL; every save refreshes it.
type SessionRepo interface {
	// GetSession returns nil, nil when the user has no session (idle).
	GetSession(ctx context.Context, userID int64) (*Session, error)
	SaveSession(ctx context.Context, userID int64, s *Session) error
	ClearSession(ctx context.Context, userID int64) error
}

// PendingQuestionRepo bridges the browser card-selection surface.
type PendingQuestionRepo interface {
	PutPendingQuestion(ctx context.Context, userID int64, question string) error
	// TakePendingQuestion reads and deletes the record; "" when absent.
	TakePendingQuestion(ctx context.Context, userID int64) (string, error)
}
