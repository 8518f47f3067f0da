package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/domain/repository"
	"message-explainer/internal/log"
	"message-explainer/internal/metrics"
	"message-explainer/internal/prompt"

	"github.com/rs/zerolog"
)

const (
	generationTemperature = 0.2
	minExplainableRunes   = 3
)

// Explainer turns one request into a schema-conformant explanation with a single
// generation call.
type Explainer struct {
	generator repository.TextGenerator
	builder   *prompt.Builder
	logger    zerolog.Logger
}

func NewExplainer(generator repository.TextGenerator, builder *prompt.Builder) *Explainer {
	return &Explainer{
		generator: generator,
		builder:   builder,
		logger:    log.WithComponent("explainer"),
	}
}

func (e *Explainer) Explain(ctx context.Context, req entity.ExplainRequest) (*entity.ExplainResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, entity.ErrEmptyInput
	}
	policy := e.builder.Policy()
	if utf8.RuneCountInString(text) < minExplainableRunes {
		msg := policy.TooShort.For(req.LanguagePreference)
		return &entity.ExplainResponse{
			Explanation: msg,
			Urgency:     entity.UrgencyLow,
			NextSteps:   msg,
		}, nil
	}

	p := e.builder.Build(req)
	l := log.WithContext(ctx, e.logger)

	res, err := e.generator.Generate(ctx, entity.GenerationRequest{
		System:      p.System,
		Prompt:      p.User,
		Temperature: generationTemperature,
		JSONOutput:  true,
	})
	if err != nil {
		metrics.RecordProviderError("generate")
		return nil, fmt.Errorf("%w: %w", entity.ErrGenerationFailed, err)
	}

	parsed, err := ParseModelOutput(res.Content)
	if err != nil {
		metrics.RecordProviderError("generate")
		return nil, fmt.Errorf("%w: %w", entity.ErrGenerationFailed, err)
	}
	if !parsed.Complete {
		metrics.RecordPartialParse()
		l.Warn().Str("policy_version", p.Version).Msg("model output did not match the schema, using best-effort parse")
	}

	resp := e.shape(parsed, req.LanguagePreference, l)
	l.Debug().
		Str("policy_version", p.Version).
		Str("model", res.Model).
		Int("tokens", res.TokenCount).
		Str("urgency", string(resp.Urgency)).
		Msg("explanation generated")
	return resp, nil
}

// shape enforces the output invariants regardless of what the model returned.
func (e *Explainer) shape(p Parsed, lang entity.LanguagePreference, l zerolog.Logger) *entity.ExplainResponse {
	policy := e.builder.Policy()

	urgency, ok := entity.NormalizeUrgency(p.Urgency)
	if !ok {
		// TODO: confirm with product that unrecognized urgency should read as medium.
		metrics.RecordUrgencyDefaulted()
		l.Warn().Str("raw_urgency", p.Urgency).Msg("unrecognized urgency, defaulting to medium")
	}

	resp := &entity.ExplainResponse{
		Explanation:  p.Explanation,
		Urgency:      urgency,
		NextSteps:    strings.TrimSpace(p.NextSteps),
		ReplyOptions: p.ReplyOptions,
	}

	if p.ScamSuspected {
		metrics.RecordScamFlagged()
		resp.Urgency = entity.UrgencyHigh
		resp.ReplyOptions = entity.ReplyOptions{}
		if !coversScamWarning(resp.NextSteps) {
			warning := policy.ScamWarning.For(lang)
			if resp.NextSteps == "" {
				resp.NextSteps = warning
			} else {
				resp.NextSteps = warning + "\n" + resp.NextSteps
			}
		}
	}

	if resp.NextSteps == "" {
		resp.NextSteps = policy.NothingToDo.For(lang)
	}
	if resp.Explanation == "" {
		resp.Explanation = resp.NextSteps
	}
	return resp
}

// coversScamWarning reports whether steps already warn about both OTPs and links.
func coversScamWarning(steps string) bool {
	l := strings.ToLower(steps)
	if !strings.Contains(l, "otp") {
		return false
	}
	return strings.Contains(l, "link") || strings.Contains(l, "லிங்க")
}
