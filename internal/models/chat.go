// internal/models/chat.go
package models

import "time"

// ChatRole identifies who produced a chat turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Transcript is the ordered conversation for one chat session.
type Transcript struct {
	SessionID string     `json:"sessionId"`
	Turns     []ChatTurn `json:"turns"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Clone returns a copy whose Turns slice does not alias t.
func (t Transcript) Clone() Transcript {
	out := t
	out.Turns = append([]ChatTurn(nil), t.Turns...)
	return out
}
