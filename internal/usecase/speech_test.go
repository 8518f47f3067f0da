package usecase

import (
	"context"
	"errors"
	"testing"

	"message-explainer/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakOnlyForTamil(t *testing.T) {
	synth := &fakeSynth{audio: &entity.Audio{Data: []byte("RIFF"), MIMEType: "audio/wav"}}
	s := NewSpeaker(synth)

	assert.Nil(t, s.Speak(context.Background(), "Your bill is due", entity.LanguageEnglish))
	assert.Nil(t, s.Speak(context.Background(), "Unga bill", entity.LanguageTanglish))
	assert.Empty(t, synth.texts)

	audio := s.Speak(context.Background(), "🟢 உங்கள் கட்டணம்", entity.LanguageTamil)
	require.NotNil(t, audio)
	assert.Equal(t, "audio/wav", audio.MIMEType)
	require.Len(t, synth.texts, 1)
	assert.Equal(t, "உங்கள் கட்டணம்", synth.texts[0])
}

func TestSpeakAllUsesTamilBlock(t *testing.T) {
	synth := &fakeSynth{audio: &entity.Audio{Data: []byte{1}, MIMEType: "audio/wav"}}
	s := NewSpeaker(synth)

	explanation := "Tamil:\n🟢 மின் கட்டணம் ₹450\nTanglish:\n🟢 Min kattanam\nEnglish:\n🟢 Electricity bill"
	require.NotNil(t, s.Speak(context.Background(), explanation, entity.LanguageAll))
	require.Len(t, synth.texts, 1)
	assert.Equal(t, "மின் கட்டணம் ₹450", synth.texts[0])
}

func TestSpeakFailuresAreSilent(t *testing.T) {
	tests := []struct {
		name  string
		synth *fakeSynth
		text  string
	}{
		{"provider error", &fakeSynth{err: errors.New("quota")}, "உரை"},
		{"nil audio", &fakeSynth{}, "உரை"},
		{"empty audio", &fakeSynth{audio: &entity.Audio{MIMEType: "audio/wav"}}, "உரை"},
		{"empty text", &fakeSynth{audio: &entity.Audio{Data: []byte{1}, MIMEType: "audio/wav"}}, " 🟢 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpeaker(tt.synth)
			assert.Nil(t, s.Speak(context.Background(), tt.text, entity.LanguageTamil))
		})
	}
}

func TestSpeakDisabled(t *testing.T) {
	var s *Speaker
	assert.Nil(t, s.Speak(context.Background(), "உரை", entity.LanguageTamil))
	assert.Nil(t, NewSpeaker(nil).Speak(context.Background(), "உரை", entity.LanguageTamil))
}

func TestTamilBlockWithoutLabels(t *testing.T) {
	assert.Equal(t, "plain", tamilBlock("plain"))
}
