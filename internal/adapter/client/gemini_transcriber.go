package client

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

const transcribeInstruction = `Transcribe the speech in this recording exactly as spoken.
The speaker may use Tamil, English or a mix of both. Write Tamil words in Tamil script
and English words in English. Do not translate, summarize or add commentary.
If there is no intelligible speech, return an empty response.`

// GeminiTranscriber is a speech-to-text backend on a multimodal Gemini model.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

func NewGeminiTranscriber(client *genai.Client, model string) *GeminiTranscriber {
	return &GeminiTranscriber{client: client, model: model}
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(transcribeInstruction),
		genai.NewPartFromBytes(audio, mimeType),
	}, genai.RoleUser)}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", err
	}
	// silence comes back as no candidates, which is not an error
	return strings.TrimSpace(resp.Text()), nil
}
