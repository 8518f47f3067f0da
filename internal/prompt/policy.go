// Package prompt builds the instruction payload sent to the generation provider.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"message-explainer/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Localized holds one sentence per output language.
type Localized struct {
	Tamil    string `yaml:"tamil"`
	Tanglish string `yaml:"tanglish"`
	English  string `yaml:"english"`
}

// For picks the sentence for lang. For "all" the three are joined with labels.
func (l Localized) For(lang entity.LanguagePreference) string {
	switch lang {
	case entity.LanguageTanglish:
		return l.Tanglish
	case entity.LanguageEnglish:
		return l.English
	case entity.LanguageAll:
		return "Tamil: " + l.Tamil + "\nTanglish: " + l.Tanglish + "\nEnglish: " + l.English
	default:
		return l.Tamil
	}
}

// Policy is the versioned, immutable instruction asset.
type Policy struct {
	Version        string    `yaml:"version"`
	System         string    `yaml:"system"`
	OutputContract string    `yaml:"output_contract"`
	NothingToDo    Localized `yaml:"nothing_to_do"`
	ScamWarning    Localized `yaml:"scam_warning"`
	NoTextDetected Localized `yaml:"no_text_detected"`
	TooShort       Localized `yaml:"too_short"`
}

func DefaultPolicy() (*Policy, error) {
	return ParsePolicy(defaultPolicy)
}

// LoadPolicy reads a policy file; an empty path yields the embedded default.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt policy: %w", err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompt policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Policy) validate() error {
	required := map[string]string{
		"version":         p.Version,
		"system":          p.System,
		"output_contract": p.OutputContract,
	}
	for name, v := range required {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("prompt policy: %s is empty", name)
		}
	}
	for name, l := range map[string]Localized{
		"nothing_to_do":    p.NothingToDo,
		"scam_warning":     p.ScamWarning,
		"no_text_detected": p.NoTextDetected,
		"too_short":        p.TooShort,
	} {
		if l.Tamil == "" || l.Tanglish == "" || l.English == "" {
			return fmt.Errorf("prompt policy: %s needs tamil, tanglish and english", name)
		}
	}
	return nil
}
