package entity

// GenerationRequest is what the explainer hands to a text generation provider.
type GenerationRequest struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
	// JSONOutput asks the provider for an application/json response body.
	JSONOutput bool `json:"json_output"`
}

type GenerationResult struct {
	Content    string         `json:"content"`
	Model      string         `json:"model"` // Which model actually answered?
	TokenCount int            `json:"token_count"`
	Latency    int64          `json:"latency_ms"`
	Metadata   map[string]any `json:"metadata"`
}

// Audio is synthesized speech.
type Audio struct {
	Data     []byte
	MIMEType string
}
