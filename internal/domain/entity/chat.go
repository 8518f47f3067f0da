package entity

import (
	"strings"
)

// HistoryWindow is the number of most recent turns carried into a follow-up prompt.
const HistoryWindow = 8

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is held by the client only. The server never stores it.
type ChatTurn struct {
	Role    Role   `json:"role" validate:"oneof=user assistant"`
	Content string `json:"content"`
}

// Conversation is the client-supplied context of a follow-up: the original message
// plus the transcript so far.
type Conversation struct {
	ContextText string
	Turns       []ChatTurn
}

// Recent returns at most HistoryWindow trailing turns with blank content dropped.
func (c Conversation) Recent() []ChatTurn {
	turns := make([]ChatTurn, 0, len(c.Turns))
	for _, t := range c.Turns {
		if strings.TrimSpace(t.Content) == "" {
			continue
		}
		turns = append(turns, t)
	}
	if len(turns) > HistoryWindow {
		turns = turns[len(turns)-HistoryWindow:]
	}
	return turns
}

// History renders the recent window as "User: ..." / "Assistant: ..." lines.
func (c Conversation) History() string {
	var b strings.Builder
	for i, t := range c.Recent() {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch t.Role {
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(strings.TrimSpace(t.Content))
	}
	return b.String()
}

// CountUserTurns counts "User:" lines in a rendered history.
func CountUserTurns(history string) int {
	n := 0
	for _, line := range strings.Split(history, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "User:") {
			n++
		}
	}
	return n
}
