package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/log"
	"message-explainer/internal/prompt"

	"github.com/rs/zerolog"
)

// minFileTextRunes is the least amount of extracted text worth explaining.
const minFileTextRunes = 5

type Limits struct {
	MaxInputChars int
	FollowUpLimit int // follow-up questions allowed after the original message
}

// Orchestrator runs the three entry points through the same pipeline:
// normalize, explain, speak, assemble.
type Orchestrator struct {
	normalizer *Normalizer
	explainer  *Explainer
	speaker    *Speaker
	policy     *prompt.Policy
	limits     Limits
	logger     zerolog.Logger
}

func NewOrchestrator(n *Normalizer, e *Explainer, s *Speaker, policy *prompt.Policy, limits Limits) *Orchestrator {
	return &Orchestrator{
		normalizer: n,
		explainer:  e,
		speaker:    s,
		policy:     policy,
		limits:     limits,
		logger:     log.WithComponent("orchestrator"),
	}
}

// ExplainText handles pasted text, including follow-up questions.
func (o *Orchestrator) ExplainText(ctx context.Context, req entity.ExplainRequest) (*entity.ExplainResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, entity.ErrEmptyInput
	}
	source := req.Text
	return o.run(ctx, req, &source)
}

// ExplainVoice transcribes the recording and explains it. req carries the
// language preference and any follow-up context; its Text is replaced by the
// transcript.
func (o *Orchestrator) ExplainVoice(ctx context.Context, audio Upload, req entity.ExplainRequest) (*entity.ExplainResponse, error) {
	transcript, err := o.normalizer.Transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		empty := ""
		return o.noTextDetected(ctx, req.LanguagePreference, &empty), nil
	}
	req.Text = transcript
	return o.run(ctx, req, &transcript)
}

// ExplainFile extracts text from a PDF or image and explains it.
func (o *Orchestrator) ExplainFile(ctx context.Context, file Upload, lang entity.LanguagePreference) (*entity.ExplainResponse, error) {
	text, err := o.normalizer.ExtractFile(ctx, file)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minFileTextRunes {
		return o.noTextDetected(ctx, lang, nil), nil
	}
	req := entity.ExplainRequest{Text: text, LanguagePreference: lang}
	return o.run(ctx, req, &text)
}

func (o *Orchestrator) run(ctx context.Context, req entity.ExplainRequest, source *string) (*entity.ExplainResponse, error) {
	if err := o.checkLimits(req); err != nil {
		return nil, err
	}
	resp, err := o.explainer.Explain(ctx, req)
	if err != nil {
		return nil, err
	}
	audio := o.speaker.Speak(ctx, resp.Explanation, req.LanguagePreference)
	return assemble(resp, source, audio), nil
}

func (o *Orchestrator) checkLimits(req entity.ExplainRequest) error {
	if limit := o.limits.MaxInputChars; limit > 0 {
		if n := utf8.RuneCountInString(req.Text); n > limit {
			return fmt.Errorf("%w: %d characters, limit %d", entity.ErrInputTooLong, n, limit)
		}
		if n := utf8.RuneCountInString(req.ContextText); n > limit {
			return fmt.Errorf("%w: context of %d characters, limit %d", entity.ErrInputTooLong, n, limit)
		}
	}
	if req.IsFollowUp() {
		// the first user turn is the original message
		asked := req.PriorUserTurns() - 1
		if asked >= o.limits.FollowUpLimit {
			return fmt.Errorf("%w: %d follow-ups already asked", entity.ErrFollowUpLimit, asked)
		}
	}
	return nil
}

func (o *Orchestrator) noTextDetected(ctx context.Context, lang entity.LanguagePreference, source *string) *entity.ExplainResponse {
	l := log.WithContext(ctx, o.logger)
	l.Info().Str("language", string(lang)).Msg("no text detected in upload")

	msg := o.policy.NoTextDetected.For(lang)
	return assemble(&entity.ExplainResponse{
		Explanation: msg,
		Urgency:     entity.UrgencyLow,
		NextSteps:   msg,
	}, source, nil)
}

// assemble produces the single response shape shared by every entry point.
func assemble(resp *entity.ExplainResponse, source *string, audio *entity.Audio) *entity.ExplainResponse {
	out := *resp
	out.SourceText = source
	out.TTSAudioBase64 = ""
	out.TTSMIMEType = ""
	if audio != nil {
		out.TTSAudioBase64 = base64.StdEncoding.EncodeToString(audio.Data)
		out.TTSMIMEType = audio.MIMEType
	}
	return &out
}
