package repository

import (
	"context"
	"message-explainer/internal/domain/entity"
)

type TextGenerator interface {
	Generate(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error)
}

// Transcriber turns recorded speech into text in whatever language was spoken.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// TextExtractor reads the embedded text layer of a PDF.
type TextExtractor interface {
	ExtractPDFText(ctx context.Context, data []byte) (string, error)
}

type OCR interface {
	RecognizeImage(ctx context.Context, data []byte, mimeType string) (string, error)
	// RecognizePDF rasterizes every page and runs recognition on it.
	RecognizePDF(ctx context.Context, data []byte) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*entity.Audio, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
