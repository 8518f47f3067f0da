package usecase

import (
	"context"
	"strings"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/domain/repository"
	"message-explainer/internal/log"
	"message-explainer/internal/metrics"

	"github.com/rs/zerolog"
)

var headingStripper = strings.NewReplacer("🟢", "", "🟡", "", "🔵", "", "🟣", "")

// Speaker reads Tamil explanations aloud. It never returns an error; a nil
// audio means "no audio".
type Speaker struct {
	synth  repository.SpeechSynthesizer
	logger zerolog.Logger
}

// NewSpeaker accepts a nil synthesizer, which disables speech.
func NewSpeaker(synth repository.SpeechSynthesizer) *Speaker {
	return &Speaker{synth: synth, logger: log.WithComponent("speech")}
}

func (s *Speaker) Speak(ctx context.Context, explanation string, lang entity.LanguagePreference) *entity.Audio {
	if s == nil || s.synth == nil || !lang.IncludesTamil() {
		return nil
	}
	text := explanation
	if lang == entity.LanguageAll {
		text = tamilBlock(explanation)
	}
	text = strings.TrimSpace(headingStripper.Replace(text))
	if text == "" {
		return nil
	}

	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		metrics.RecordProviderError("tts")
		l := log.WithContext(ctx, s.logger)
		l.Warn().Err(err).Msg("speech synthesis failed, returning text only")
		return nil
	}
	if audio == nil || len(audio.Data) == 0 || audio.MIMEType == "" {
		return nil
	}
	return audio
}

// tamilBlock cuts the "Tamil:" block out of a multi-language explanation. Text
// without the label is returned unchanged.
func tamilBlock(s string) string {
	start := strings.Index(s, "Tamil:")
	if start < 0 {
		return s
	}
	rest := s[start+len("Tamil:"):]
	end := len(rest)
	for _, label := range []string{"Tanglish:", "English:"} {
		if i := strings.Index(rest, label); i >= 0 && i < end {
			end = i
		}
	}
	return strings.TrimSpace(rest[:end])
}
