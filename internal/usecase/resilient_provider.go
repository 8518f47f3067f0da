package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/domain/repository"
	"message-explainer/internal/log"

	"github.com/rs/zerolog"
)

type ProviderOptions struct {
	Timeout    time.Duration // cap per generation, including retries
	MaxRetries int           // 0 means a single attempt
	BaseDelay  time.Duration
}

// ResilientProvider bounds every generation with a timeout and optionally
// retries transient errors and falls back to a second model.
type ResilientProvider struct {
	primary    repository.TextGenerator
	fallback   repository.TextGenerator // may be nil
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewResilientProvider(primary, fallback repository.TextGenerator, opts ProviderOptions) *ResilientProvider {
	if opts.Timeout <= 0 {
		opts.Timeout = 25 * time.Second
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	return &ResilientProvider{
		primary:    primary,
		fallback:   fallback,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		timeout:    opts.Timeout,
		logger:     log.WithComponent("provider"),
	}
}

func (r *ResilientProvider) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	resCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.executeWithRetry(resCtx, r.primary, req)
	if err == nil {
		return resp, nil
	}
	if r.fallback == nil || ctx.Err() != nil {
		return nil, err
	}

	l := log.WithContext(ctx, r.logger)
	l.Warn().Err(err).Msg("primary model failed, trying fallback")

	// the primary may have used up the whole budget
	fbCtx, fbCancel := context.WithTimeout(ctx, r.timeout)
	defer fbCancel()

	resp, fbErr := r.fallback.Generate(fbCtx, req)
	if fbErr != nil {
		return nil, fmt.Errorf("both primary and fallback failed: %w", errors.Join(err, fbErr))
	}
	if resp.Metadata == nil {
		resp.Metadata = make(map[string]any)
	}
	resp.Metadata["fallback_used"] = true
	return resp, nil
}

func (r *ResilientProvider) executeWithRetry(ctx context.Context, p repository.TextGenerator, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-time.After(r.calculateBackoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// isRetryable matches rate limits, server errors and overload responses.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "unavailable")
}

func (r *ResilientProvider) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * backoff
	return time.Duration(backoff + jitter)
}
