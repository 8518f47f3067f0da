package client

import (
	"context"
	"errors"
	"fmt"

	"message-explainer/internal/domain/entity"

	"google.golang.org/genai"
)

var errNoAudio = errors.New("speech model returned no audio")

// GeminiSpeech synthesizes Tamil speech with a Gemini TTS model.
type GeminiSpeech struct {
	client *genai.Client
	model  string
	voice  string
}

func NewGeminiSpeech(client *genai.Client, model, voice string) *GeminiSpeech {
	return &GeminiSpeech{client: client, model: model, voice: voice}
}

func (s *GeminiSpeech) Synthesize(ctx context.Context, text string) (*entity.Audio, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if pcm, rate := isRawPCM(part.InlineData.MIMEType); pcm {
				return &entity.Audio{Data: PCMToWAV(part.InlineData.Data, rate), MIMEType: "audio/wav"}, nil
			}
			return &entity.Audio{Data: part.InlineData.Data, MIMEType: part.InlineData.MIMEType}, nil
		}
	}
	return nil, errNoAudio
}
