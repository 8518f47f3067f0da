package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/domain/repository"
	"message-explainer/internal/log"
	"message-explainer/internal/metrics"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// Upload is a received blob with whatever the client declared about it.
type Upload struct {
	Data        []byte
	Filename    string
	ContentType string
}

type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindAudio
	KindPDF
	KindImage
)

func (k MediaKind) String() string {
	switch k {
	case KindAudio:
		return "audio"
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	}
	return "unknown"
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".webp": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".m4a": true, ".ogg": true,
	".oga": true, ".webm": true, ".flac": true, ".aac": true,
}

// DetectKind sniffs the bytes first and falls back to the declared content type
// and the file extension. The returned MIME type is the one to hand to providers.
func DetectKind(u Upload) (MediaKind, string) {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(u.ContentType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(u.Filename))

	sniffed := "application/octet-stream"
	if len(u.Data) > 0 {
		sniffed = mimetype.Detect(u.Data).String()
		sniffed = strings.Split(sniffed, ";")[0]
	}

	switch {
	case sniffed == "application/pdf":
		return KindPDF, sniffed
	case strings.HasPrefix(sniffed, "image/"):
		return KindImage, sniffed
	case strings.HasPrefix(sniffed, "audio/"):
		return KindAudio, sniffed
	case sniffed == "video/webm":
		// browser recorders label audio-only webm as video
		return KindAudio, "audio/webm"
	case sniffed == "application/ogg":
		return KindAudio, "audio/ogg"
	}

	switch {
	case declared == "application/pdf" || ext == ".pdf":
		return KindPDF, "application/pdf"
	case strings.HasPrefix(declared, "image/"):
		return KindImage, declared
	case imageExtensions[ext]:
		return KindImage, "image/" + strings.TrimPrefix(ext, ".")
	case strings.HasPrefix(declared, "audio/"):
		return KindAudio, declared
	case audioExtensions[ext]:
		return KindAudio, "audio/" + strings.TrimPrefix(ext, ".")
	}
	return KindUnknown, sniffed
}

// Normalizer turns voice and file uploads into plain text.
type Normalizer struct {
	transcriber repository.Transcriber
	extractor   repository.TextExtractor
	ocr         repository.OCR
	logger      zerolog.Logger
}

func NewNormalizer(t repository.Transcriber, x repository.TextExtractor, ocr repository.OCR) *Normalizer {
	return &Normalizer{
		transcriber: t,
		extractor:   x,
		ocr:         ocr,
		logger:      log.WithComponent("normalizer"),
	}
}

// Transcribe returns the recognized speech. An empty blob yields "" and no error.
func (n *Normalizer) Transcribe(ctx context.Context, u Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", nil
	}
	kind, mime := DetectKind(u)
	if kind != KindAudio {
		return "", fmt.Errorf("%w: expected audio, got %s", entity.ErrUnsupportedInput, mime)
	}

	text, err := n.transcriber.Transcribe(ctx, u.Data, mime)
	if err != nil {
		metrics.RecordProviderError("stt")
		return "", fmt.Errorf("%w: speech to text: %w", entity.ErrExtractionFailed, err)
	}
	return cleanText(text), nil
}

// ExtractFile returns the text of a PDF or image, using OCR when a PDF has no
// text layer.
func (n *Normalizer) ExtractFile(ctx context.Context, u Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", entity.ErrEmptyInput
	}
	l := log.WithContext(ctx, n.logger)

	kind, mime := DetectKind(u)
	switch kind {
	case KindPDF:
		text, err := n.extractor.ExtractPDFText(ctx, u.Data)
		if err != nil {
			metrics.RecordProviderError("pdf")
			l.Warn().Err(err).Msg("pdf text layer unreadable, trying OCR")
		}
		if text = cleanText(text); text != "" {
			return text, nil
		}
		if n.ocr == nil {
			return "", nil
		}
		l.Debug().Msg("pdf has no text layer, running OCR")
		text, err = n.ocr.RecognizePDF(ctx, u.Data)
		if err != nil {
			metrics.RecordProviderError("ocr")
			return "", fmt.Errorf("%w: pdf ocr: %w", entity.ErrExtractionFailed, err)
		}
		return cleanText(text), nil

	case KindImage:
		if n.ocr == nil {
			return "", fmt.Errorf("%w: no OCR backend configured", entity.ErrExtractionFailed)
		}
		text, err := n.ocr.RecognizeImage(ctx, u.Data, mime)
		if err != nil {
			metrics.RecordProviderError("ocr")
			return "", fmt.Errorf("%w: image ocr: %w", entity.ErrExtractionFailed, err)
		}
		return cleanText(text), nil
	}

	return "", fmt.Errorf("%w: %s", entity.ErrUnsupportedInput, mime)
}

// cleanText trims and NFC-normalizes recognized text so Tamil combining marks
// compare consistently.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
