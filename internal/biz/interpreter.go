package biz

import "context"

// Chat roles understood by the interpretation generator.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Interpreter generates interpretation prose from a system instruction and an
// ordered conversation. Implementations do not retry; failures surface to the
// caller as ErrGeneratorUnavailable.
type Interpreter interface {
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
}
