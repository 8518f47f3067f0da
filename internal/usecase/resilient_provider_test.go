package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"message-explainer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResilientProviderSingleAttemptByDefault(t *testing.T) {
	primary := failWith(errors.New("503 overloaded"))
	p := NewResilientProvider(primary, nil, ProviderOptions{Timeout: time.Second})

	_, err := p.Generate(context.Background(), entity.GenerationRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, primary.count())
}

func TestResilientProviderRetriesTransientErrors(t *testing.T) {
	attempts := 0
	primary := &fakeGenerator{fn: func(context.Context, entity.GenerationRequest) (*entity.GenerationResult, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("Error 429, Message: resource exhausted")
		}
		return &entity.GenerationResult{Content: "ok"}, nil
	}}
	p := NewResilientProvider(primary, nil, ProviderOptions{
		Timeout:    time.Second,
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
	})

	resp, err := p.Generate(context.Background(), entity.GenerationRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, primary.count())
}

func TestResilientProviderDoesNotRetryPermanentErrors(t *testing.T) {
	primary := failWith(errors.New("400 invalid argument"))
	p := NewResilientProvider(primary, nil, ProviderOptions{MaxRetries: 3, BaseDelay: time.Millisecond})

	_, err := p.Generate(context.Background(), entity.GenerationRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, primary.count())
}

func TestResilientProviderFallback(t *testing.T) {
	primary := failWith(errors.New("500 internal"))
	fallback := replyWith("from fallback")
	p := NewResilientProvider(primary, fallback, ProviderOptions{Timeout: time.Second})

	resp, err := p.Generate(context.Background(), entity.GenerationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Content)
	assert.Equal(t, true, resp.Metadata["fallback_used"])
}

func TestResilientProviderBothFail(t *testing.T) {
	p := NewResilientProvider(failWith(errors.New("a")), failWith(errors.New("b")), ProviderOptions{})

	_, err := p.Generate(context.Background(), entity.GenerationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both primary and fallback failed")
}

func TestResilientProviderTimeout(t *testing.T) {
	slow := &fakeGenerator{fn: func(ctx context.Context, _ entity.GenerationRequest) (*entity.GenerationResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	p := NewResilientProvider(slow, nil, ProviderOptions{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := p.Generate(context.Background(), entity.GenerationRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResilientProviderCallerCancelSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &fakeGenerator{fn: func(context.Context, entity.GenerationRequest) (*entity.GenerationResult, error) {
		cancel()
		return nil, context.Canceled
	}}
	fallback := replyWith("unused")
	p := NewResilientProvider(primary, fallback, ProviderOptions{})

	_, err := p.Generate(ctx, entity.GenerationRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fallback.count())
}
