package usecase

import (
	"context"
	"errors"
	"testing"

	"message-explainer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		upload   Upload
		wantKind MediaKind
		wantMIME string
	}{
		{"sniffed wav", Upload{Data: wavBytes}, KindAudio, "audio/wav"},
		{"sniffed pdf despite name", Upload{Data: pdfBytes, Filename: "scan.jpg"}, KindPDF, "application/pdf"},
		{"sniffed png", Upload{Data: pngBytes, ContentType: "application/octet-stream"}, KindImage, "image/png"},
		{"declared pdf", Upload{Data: []byte{0, 1, 2}, ContentType: "application/pdf"}, KindPDF, "application/pdf"},
		{"pdf by extension", Upload{Data: []byte{0, 1, 2}, Filename: "Notice.PDF"}, KindPDF, "application/pdf"},
		{"image by extension", Upload{Data: []byte{0, 1, 2}, Filename: "sms.jpeg"}, KindImage, "image/jpeg"},
		{"declared audio with params", Upload{Data: []byte{0, 1, 2}, ContentType: "audio/webm;codecs=opus"}, KindAudio, "audio/webm"},
		{"audio by extension", Upload{Data: []byte{0, 1, 2}, Filename: "voice.m4a"}, KindAudio, "audio/m4a"},
		{"plain text", Upload{Data: []byte("hello world"), Filename: "notes.txt", ContentType: "text/plain"}, KindUnknown, "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, mime := DetectKind(tt.upload)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantMIME, mime)
		})
	}
}

func TestTranscribe(t *testing.T) {
	stt := &fakeTranscriber{text: "  என் மின்சார கட்டணம்  "}
	n := NewNormalizer(stt, &fakeExtractor{}, &fakeOCR{})

	text, err := n.Transcribe(context.Background(), Upload{Data: wavBytes, Filename: "a.wav"})
	require.NoError(t, err)
	assert.Equal(t, "என் மின்சார கட்டணம்", text)
	assert.Equal(t, "audio/wav", stt.mime)
}

func TestTranscribeEmptyBlobIsNoText(t *testing.T) {
	stt := &fakeTranscriber{text: "unused"}
	n := NewNormalizer(stt, nil, nil)

	text, err := n.Transcribe(context.Background(), Upload{})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Equal(t, 0, stt.calls)
}

func TestTranscribeRejectsNonAudio(t *testing.T) {
	n := NewNormalizer(&fakeTranscriber{}, nil, nil)
	_, err := n.Transcribe(context.Background(), Upload{Data: pdfBytes})
	assert.ErrorIs(t, err, entity.ErrUnsupportedInput)
}

func TestTranscribeProviderFailure(t *testing.T) {
	n := NewNormalizer(&fakeTranscriber{err: errors.New("boom")}, nil, nil)
	_, err := n.Transcribe(context.Background(), Upload{Data: wavBytes})
	assert.ErrorIs(t, err, entity.ErrExtractionFailed)
}

func TestExtractPDFTextLayer(t *testing.T) {
	ocr := &fakeOCR{pdfText: "unused"}
	n := NewNormalizer(nil, &fakeExtractor{text: "Your LIC premium is due."}, ocr)

	text, err := n.ExtractFile(context.Background(), Upload{Data: pdfBytes, Filename: "lic.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "Your LIC premium is due.", text)
	assert.Equal(t, 0, ocr.pdfCalls)
}

func TestExtractScannedPDFFallsBackToOCR(t *testing.T) {
	for _, extractor := range []*fakeExtractor{{text: "  "}, {err: errors.New("malformed xref")}} {
		ocr := &fakeOCR{pdfText: "Scanned notice text"}
		n := NewNormalizer(nil, extractor, ocr)

		text, err := n.ExtractFile(context.Background(), Upload{Data: pdfBytes})
		require.NoError(t, err)
		assert.Equal(t, "Scanned notice text", text)
		assert.Equal(t, 1, ocr.pdfCalls)
	}
}

func TestExtractPDFOCRFailure(t *testing.T) {
	n := NewNormalizer(nil, &fakeExtractor{}, &fakeOCR{err: errors.New("tesseract missing")})
	_, err := n.ExtractFile(context.Background(), Upload{Data: pdfBytes})
	assert.ErrorIs(t, err, entity.ErrExtractionFailed)
}

func TestExtractImage(t *testing.T) {
	ocr := &fakeOCR{imageText: "OTP 123456"}
	n := NewNormalizer(nil, &fakeExtractor{}, ocr)

	text, err := n.ExtractFile(context.Background(), Upload{Data: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, "OTP 123456", text)
	assert.Equal(t, 1, ocr.imgCalls)
}

func TestExtractImageWithoutOCR(t *testing.T) {
	n := NewNormalizer(nil, &fakeExtractor{}, nil)
	_, err := n.ExtractFile(context.Background(), Upload{Data: pngBytes})
	assert.ErrorIs(t, err, entity.ErrExtractionFailed)
}

func TestExtractUnsupportedAndEmpty(t *testing.T) {
	n := NewNormalizer(nil, &fakeExtractor{}, &fakeOCR{})

	_, err := n.ExtractFile(context.Background(), Upload{Data: []byte("just text"), Filename: "a.txt"})
	assert.ErrorIs(t, err, entity.ErrUnsupportedInput)

	_, err = n.ExtractFile(context.Background(), Upload{Filename: "a.pdf"})
	assert.ErrorIs(t, err, entity.ErrEmptyInput)
}

func TestCleanTextNormalizesToNFC(t *testing.T) {
	// TAMIL LETTER KA + VOWEL SIGN E + AA composes to KA + VOWEL SIGN O.
	decomposed := "\u0b95\u0bc6\u0bbe"
	assert.Equal(t, "\u0b95\u0bca", cleanText("  "+decomposed+"\n"))
}
