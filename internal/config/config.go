// Package config loads service settings from the environment (optionally seeded by a .env file).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	OCR        OCRConfig
	TTS        TTSConfig
	Limits     LimitsConfig
	Redis      RedisConfig
	LogLevel   string
	PolicyPath string // optional override of the embedded prompt policy
}

type ServerConfig struct {
	Port           string
	Version        string
	Env            string
	FrontendOrigin string
}

type GeminiConfig struct {
	APIKey        string
	Project       string // Vertex AI, used when APIKey is empty
	Location      string
	Model         string
	FallbackModel string // empty disables the fallback
	STTModel      string
	Timeout       time.Duration
	Retries       int
}

type OCRConfig struct {
	Backend       string // "tesseract" or "gemini"
	Model         string
	TesseractCmd  string
	PdftoppmCmd   string
	TesseractLang string
}

type TTSConfig struct {
	Enabled bool
	Model   string
	Voice   string
}

type LimitsConfig struct {
	MaxInputChars      int
	FollowUpLimit      int
	RateLimitPerMinute int
	MaxUploadBytes     int
}

type RedisConfig struct {
	Addr     string // empty selects the in-memory limiter
	Password string
	DB       int
}

// Load reads envFile if it exists, then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getString("PORT", "8000"),
			Version:        getString("APP_VERSION", "dev"),
			Env:            getString("ENV", "development"),
			FrontendOrigin: getString("FRONTEND_ORIGIN", "*"),
		},
		Gemini: GeminiConfig{
			APIKey:        os.Getenv("GEMINI_API_KEY"),
			Project:       os.Getenv("GOOGLE_CLOUD_PROJECT"),
			Location:      getString("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Model:         getString("GEMINI_MODEL", "gemini-2.5-flash"),
			FallbackModel: os.Getenv("GEMINI_FALLBACK_MODEL"),
			STTModel:      getString("STT_MODEL", "gemini-2.5-flash"),
		},
		OCR: OCRConfig{
			Backend:       strings.ToLower(getString("OCR_BACKEND", "tesseract")),
			Model:         getString("OCR_MODEL", "gemini-2.5-flash"),
			TesseractCmd:  getString("TESSERACT_CMD", "tesseract"),
			PdftoppmCmd:   getString("PDFTOPPM_CMD", "pdftoppm"),
			TesseractLang: getString("TESSERACT_LANG", "eng+tam"),
		},
		TTS: TTSConfig{
			Model: getString("TTS_MODEL", "gemini-2.5-flash-preview-tts"),
			Voice: getString("TTS_VOICE", "Kore"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		LogLevel:   getString("LOG_LEVEL", "info"),
		PolicyPath: os.Getenv("PROMPT_POLICY_PATH"),
	}

	var err error
	if cfg.TTS.Enabled, err = getBool("TTS_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.Gemini.Timeout, err = getDuration("PROVIDER_TIMEOUT", 25*time.Second); err != nil {
		return nil, err
	}
	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"GENERATION_RETRIES", 0, &cfg.Gemini.Retries},
		{"MAX_INPUT_CHARS", 2000, &cfg.Limits.MaxInputChars},
		{"FOLLOWUP_LIMIT", 5, &cfg.Limits.FollowUpLimit},
		{"RATE_LIMIT_PER_MINUTE", 5, &cfg.Limits.RateLimitPerMinute},
		{"MAX_UPLOAD_BYTES", 10 << 20, &cfg.Limits.MaxUploadBytes},
		{"REDIS_DB", 0, &cfg.Redis.DB},
	}
	for _, v := range ints {
		if *v.dest, err = getInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" && c.Gemini.Project == "" {
		return fmt.Errorf("either GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT must be set")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.Gemini.Retries < 0 {
		return fmt.Errorf("GENERATION_RETRIES must not be negative")
	}
	switch c.OCR.Backend {
	case "tesseract", "gemini":
	default:
		return fmt.Errorf("OCR_BACKEND must be tesseract or gemini, got %q", c.OCR.Backend)
	}
	if c.Limits.MaxInputChars <= 0 {
		return fmt.Errorf("MAX_INPUT_CHARS must be positive")
	}
	if c.Limits.FollowUpLimit < 0 {
		return fmt.Errorf("FOLLOWUP_LIMIT must not be negative")
	}
	if c.Limits.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.Limits.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
