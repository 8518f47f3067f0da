package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"message-explainer/internal/adapter/api"
	"message-explainer/internal/adapter/client"
	"message-explainer/internal/adapter/store"
	"message-explainer/internal/config"
	"message-explainer/internal/domain/entity"
	"message-explainer/internal/domain/repository"
	"message-explainer/internal/log"
	"message-explainer/internal/prompt"
	"message-explainer/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		// logger is not configured yet
		boot := log.WithComponent("main")
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log.Configure(log.Config{Level: cfg.LogLevel, Version: cfg.Server.Version})
	logger := log.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := loadPolicy(cfg.PolicyPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load prompt policy")
	}

	genaiClient, err := client.NewGenAIClient(ctx, client.GenAIOptions{
		APIKey:   cfg.Gemini.APIKey,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init genai client")
	}

	primaryModel := client.NewGeminiClientFromClient(genaiClient, cfg.Gemini.Model)
	var fallbackModel repository.TextGenerator
	if cfg.Gemini.FallbackModel != "" {
		fallbackModel = client.NewGeminiClientFromClient(genaiClient, cfg.Gemini.FallbackModel)
	}
	resilientProvider := usecase.NewResilientProvider(primaryModel, fallbackModel, usecase.ProviderOptions{
		Timeout:    cfg.Gemini.Timeout,
		MaxRetries: cfg.Gemini.Retries,
	})

	var ocr repository.OCR
	switch cfg.OCR.Backend {
	case "gemini":
		ocr = client.NewGeminiOCR(genaiClient, cfg.OCR.Model)
	default:
		ocr = client.NewTesseractOCR(cfg.OCR.TesseractCmd, cfg.OCR.PdftoppmCmd, cfg.OCR.TesseractLang)
	}
	normalizer := usecase.NewNormalizer(
		client.NewGeminiTranscriber(genaiClient, cfg.Gemini.STTModel),
		client.NewPDFExtractor(),
		ocr,
	)

	var speaker *usecase.Speaker
	if cfg.TTS.Enabled {
		speaker = usecase.NewSpeaker(client.NewGeminiSpeech(genaiClient, cfg.TTS.Model, cfg.TTS.Voice))
	}

	// Inject the adapters into the orchestration layer
	orchestrator := usecase.NewOrchestrator(
		normalizer,
		usecase.NewExplainer(resilientProvider, prompt.NewBuilder(policy)),
		speaker,
		policy,
		usecase.Limits{MaxInputChars: cfg.Limits.MaxInputChars, FollowUpLimit: cfg.Limits.FollowUpLimit},
	)

	limiter := newLimiter(ctx, cfg)

	go func() {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		// wakes the model instance before the first user request
		if _, err := resilientProvider.Generate(warmCtx, entity.GenerationRequest{Prompt: "."}); err != nil {
			logger.Warn().Err(err).Msg("model warm-up failed")
			return
		}
		logger.Info().Msg("model warm-up complete")
	}()

	// Initialize API layer (delivery layer)
	app := fiber.New(fiber.Config{
		AppName:      "Message Explainer",
		BodyLimit:    cfg.Limits.MaxUploadBytes + 1<<20, // multipart overhead
		ErrorHandler: api.ErrorHandler,
	})
	api.SetupRouter(app, api.NewExplainHandler(orchestrator), api.RouterConfig{
		Version:        cfg.Server.Version,
		Env:            cfg.Server.Env,
		FrontendOrigin: cfg.Server.FrontendOrigin,
		Limiter:        limiter,
	})

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	logger.Info().
		Str("port", cfg.Server.Port).
		Str("model", cfg.Gemini.Model).
		Str("ocr", cfg.OCR.Backend).
		Bool("tts", cfg.TTS.Enabled).
		Msg("message explainer listening")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func loadPolicy(path string) (*prompt.Policy, error) {
	if path == "" {
		return prompt.DefaultPolicy()
	}
	return prompt.LoadPolicy(path)
}

// newLimiter prefers Redis so every replica shares one counter per client.
func newLimiter(ctx context.Context, cfg *config.Config) repository.RateLimiter {
	logger := log.WithComponent("main")
	if cfg.Redis.Addr == "" {
		logger.Info().Msg("REDIS_ADDR not set, using in-memory rate limiter")
		return store.NewMemoryLimiter(cfg.Limits.RateLimitPerMinute)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable at startup, requests are admitted until it recovers")
	}
	return store.NewRedisLimiter(rdb, cfg.Limits.RateLimitPerMinute)
}
