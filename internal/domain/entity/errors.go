package entity

import "errors"

// Standard domain errors
var (
	ErrUnsupportedInput  = errors.New("unsupported input type")
	ErrExtractionFailed  = errors.New("text extraction failed")
	ErrGenerationFailed  = errors.New("explanation generation failed")
	ErrEmptyInput        = errors.New("empty input")
	ErrInputTooLong      = errors.New("input exceeds the allowed length")
	ErrFollowUpLimit     = errors.New("follow-up limit reached")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrInvalidRequest    = errors.New("invalid request parameters")
)
