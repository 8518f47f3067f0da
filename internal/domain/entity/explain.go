package entity

import (
	"fmt"
	"strings"
)

type LanguagePreference string

const (
	LanguageTamil    LanguagePreference = "tamil"
	LanguageTanglish LanguagePreference = "tanglish"
	LanguageEnglish  LanguagePreference = "english"
	LanguageAll      LanguagePreference = "all"
)

// ParseLanguagePreference maps user input to a preference. Empty input means tamil.
func ParseLanguagePreference(s string) (LanguagePreference, error) {
	switch v := LanguagePreference(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return LanguageTamil, nil
	case LanguageTamil, LanguageTanglish, LanguageEnglish, LanguageAll:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown language_preference %q", ErrInvalidRequest, s)
	}
}

// IncludesTamil reports whether the explanation will carry spoken Tamil.
func (l LanguagePreference) IncludesTamil() bool {
	return l == LanguageTamil || l == LanguageAll
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// NormalizeUrgency returns the urgency for s and whether s was recognized.
// Unrecognized values fall back to medium.
func NormalizeUrgency(s string) (Urgency, bool) {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case UrgencyLow:
		return UrgencyLow, true
	case UrgencyMedium:
		return UrgencyMedium, true
	case UrgencyHigh:
		return UrgencyHigh, true
	}
	return UrgencyMedium, false
}

type ExplainRequest struct {
	Text               string             `json:"text" validate:"required"`
	LanguagePreference LanguagePreference `json:"language_preference" validate:"omitempty,oneof=tamil tanglish english all"`
	ContextText        string             `json:"context_text,omitempty"`
	History            string             `json:"history,omitempty"`
	Turns              []ChatTurn         `json:"turns,omitempty" validate:"omitempty,dive"`
}

// IsFollowUp is true when the request refers back to an already explained message.
func (r ExplainRequest) IsFollowUp() bool {
	return strings.TrimSpace(r.ContextText) != ""
}

// RenderedHistory prefers client-held turns (windowed) over the opaque history text.
func (r ExplainRequest) RenderedHistory() string {
	if len(r.Turns) > 0 {
		return Conversation{ContextText: r.ContextText, Turns: r.Turns}.History()
	}
	return strings.TrimSpace(r.History)
}

// PriorUserTurns counts user turns before the current question, including the
// original message.
func (r ExplainRequest) PriorUserTurns() int {
	if len(r.Turns) > 0 {
		n := 0
		for _, t := range r.Turns {
			if t.Role == RoleUser {
				n++
			}
		}
		return n
	}
	return CountUserTurns(r.History)
}

type ReplyOptions struct {
	Tamil    string `json:"tamil"`
	Tanglish string `json:"tanglish"`
	English  string `json:"english"`
}

func (r ReplyOptions) Empty() bool {
	return r.Tamil == "" && r.Tanglish == "" && r.English == ""
}

type ExplainResponse struct {
	Explanation  string       `json:"explanation"`
	Urgency      Urgency      `json:"urgency"`
	NextSteps    string       `json:"next_steps"`
	ReplyOptions ReplyOptions `json:"reply_options"`

	SourceText     *string `json:"source_text,omitempty"`
	TTSAudioBase64 string  `json:"tts_audio_base64,omitempty"`
	TTSMIMEType    string  `json:"tts_mime_type,omitempty"`
}
