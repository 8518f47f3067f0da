package client

import (
	"context"
	"strings"

	"google.golang.org/genai"
)

const ocrInstruction = `Read all text visible in this document exactly as written.
It may contain Tamil, English or both. Keep the original language and line order.
Output only the text, with no commentary. If there is no text, return an empty response.`

// GeminiOCR recognizes text in images and PDFs with a multimodal Gemini model.
// PDFs are sent as-is, so scanned pages need no rasterization step.
type GeminiOCR struct {
	client *genai.Client
	model  string
}

func NewGeminiOCR(client *genai.Client, model string) *GeminiOCR {
	return &GeminiOCR{client: client, model: model}
}

func (o *GeminiOCR) RecognizeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	return o.recognize(ctx, data, mimeType)
}

func (o *GeminiOCR) RecognizePDF(ctx context.Context, data []byte) (string, error) {
	return o.recognize(ctx, data, "application/pdf")
}

func (o *GeminiOCR) recognize(ctx context.Context, data []byte, mimeType string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(ocrInstruction),
		genai.NewPartFromBytes(data, mimeType),
	}, genai.RoleUser)}

	resp, err := o.client.Models.GenerateContent(ctx, o.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
