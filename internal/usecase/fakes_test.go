package usecase

import (
	"context"
	"sync"
	"testing"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/prompt"

	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls []entity.GenerationRequest
	fn    func(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.fn(ctx, req)
}

func (f *fakeGenerator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func replyWith(content string) *fakeGenerator {
	return &fakeGenerator{fn: func(context.Context, entity.GenerationRequest) (*entity.GenerationResult, error) {
		return &entity.GenerationResult{Content: content, Model: "fake"}, nil
	}}
}

func failWith(err error) *fakeGenerator {
	return &fakeGenerator{fn: func(context.Context, entity.GenerationRequest) (*entity.GenerationResult, error) {
		return nil, err
	}}
}

type fakeTranscriber struct {
	text  string
	err   error
	mime  string
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.calls++
	f.mime = mimeType
	return f.text, f.err
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) ExtractPDFText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fakeOCR struct {
	imageText string
	pdfText   string
	err       error
	pdfCalls  int
	imgCalls  int
}

func (f *fakeOCR) RecognizeImage(context.Context, []byte, string) (string, error) {
	f.imgCalls++
	return f.imageText, f.err
}

func (f *fakeOCR) RecognizePDF(context.Context, []byte) (string, error) {
	f.pdfCalls++
	return f.pdfText, f.err
}

type fakeSynth struct {
	audio *entity.Audio
	err   error
	texts []string
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) (*entity.Audio, error) {
	f.texts = append(f.texts, text)
	return f.audio, f.err
}

func testPolicy(t *testing.T) *prompt.Policy {
	t.Helper()
	p, err := prompt.DefaultPolicy()
	require.NoError(t, err)
	return p
}

// Minimal container headers, enough for content sniffing.
var (
	wavBytes = append([]byte("RIFF\x24\x00\x00\x00WAVEfmt \x10\x00\x00\x00\x01\x00\x01\x00"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), make([]byte, 32)...)
)

const billJSON = `{
  "explanation": "🟢 Simple Explanation\nஉங்கள் மின்சார கட்டணம் ₹450. 10ஆம் தேதிக்குள் கட்ட வேண்டும்.\n🟡 Do I need to worry?\nபயப்பட வேண்டாம்.\n🔵 What should I do now?\n10ஆம் தேதிக்குள் கட்டணத்தை செலுத்துங்கள்.\n🟣 Reply Suggestions\nதேவையில்லை.",
  "urgency": "low",
  "next_steps": "10ஆம் தேதிக்குள் ₹450 கட்டணத்தை செலுத்துங்கள்.",
  "scam_suspected": false,
  "reply_options": {
    "tamil": "சரி, நான் கட்டணத்தை சரிபார்க்கிறேன்.",
    "tanglish": "Sari, naan bill-a check pannren.",
    "english": "Okay, I will check the bill."
  }
}`

const scamJSON = `{
  "explanation": "🟢 Simple Explanation\nஇந்த செய்தி உங்கள் OTP கேட்கிறது.\n🟡 Do I need to worry?\nஆம், இது மோசடியாக இருக்கலாம்.",
  "urgency": "high",
  "next_steps": "",
  "scam_suspected": true,
  "reply_options": {"tamil": "சரி", "tanglish": "Sari", "english": "Okay"}
}`
