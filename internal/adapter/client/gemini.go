package client

import (
	"context"
	"errors"
	"time"

	"message-explainer/internal/domain/entity"

	"google.golang.org/genai"
)

// GenAIOptions selects the backend. An API key picks the Gemini API, otherwise
// Vertex AI is used with Project and Location.
type GenAIOptions struct {
	APIKey   string
	Project  string
	Location string
	BaseURL  string // tests only
}

func NewGenAIClient(ctx context.Context, opts GenAIOptions) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		Project:  opts.Project,
		Location: opts.Location,
		Backend:  genai.BackendVertexAI,
	}
	if opts.APIKey != "" {
		cfg = &genai.ClientConfig{
			APIKey:  opts.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	return genai.NewClient(ctx, cfg)
}

var errEmptyCompletion = errors.New("model returned no text")

// GeminiClient generates explanations with one Gemini model.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClientFromClient(c *genai.Client, model string) *GeminiClient {
	return &GeminiClient{
		client: c,
		model:  model,
	}
}

func (g *GeminiClient) Generate(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSONOutput {
		cfg.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, err
	}
	text := result.Text()
	if text == "" {
		return nil, errEmptyCompletion
	}

	tokens := 0
	if result.UsageMetadata != nil {
		tokens = int(result.UsageMetadata.TotalTokenCount)
	}
	return &entity.GenerationResult{
		Content:    text,
		Model:      g.model,
		TokenCount: tokens,
		Latency:    time.Since(start).Milliseconds(),
		Metadata:   map[string]any{},
	}, nil
}
