package prompt

import (
	"strings"

	"message-explainer/internal/domain/entity"
)

// Prompt is one request's instruction payload. System never contains user data.
type Prompt struct {
	Version string
	System  string
	User    string
}

type Builder struct {
	policy *Policy
}

func NewBuilder(policy *Policy) *Builder {
	return &Builder{policy: policy}
}

func (b *Builder) Policy() *Policy {
	return b.policy
}

// Build assembles the prompt for req. It is pure and deterministic.
func (b *Builder) Build(req entity.ExplainRequest) Prompt {
	var u strings.Builder

	u.WriteString("User language preference: ")
	u.WriteString(string(req.LanguagePreference))
	u.WriteString("\n\n")

	if req.IsFollowUp() {
		history := req.RenderedHistory()
		if history == "" {
			history = "(none)"
		}
		writeBlock(&u, "You are continuing a conversation about the SAME message.", "")
		writeBlock(&u, "Original message (context):", strings.TrimSpace(req.ContextText))
		writeBlock(&u, "Conversation so far:", history)
		writeBlock(&u, "User follow-up question:", strings.TrimSpace(req.Text))
		u.WriteString("Answer the follow-up question. Use the original message only as context.\n\n")
	} else {
		writeBlock(&u, "Message to explain (may be English, Tamil or Tanglish, possibly extracted from a file or speech):",
			strings.TrimSpace(req.Text))
	}

	contract := strings.ReplaceAll(b.policy.OutputContract, "{{nothing_to_do}}",
		b.policy.NothingToDo.For(req.LanguagePreference))
	u.WriteString(strings.TrimSpace(contract))
	u.WriteString("\n")

	return Prompt{
		Version: b.policy.Version,
		System:  b.policy.System,
		User:    u.String(),
	}
}

func writeBlock(b *strings.Builder, label, body string) {
	b.WriteString(label)
	b.WriteString("\n")
	if body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
