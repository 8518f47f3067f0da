package api

import (
	"message-explainer/internal/domain/entity"
	"message-explainer/internal/domain/repository"
	"message-explainer/internal/log"
	"message-explainer/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDLocal = "requestid"

type RouterConfig struct {
	Version        string
	Env            string
	FrontendOrigin string
	Limiter        repository.RateLimiter // nil disables rate limiting
}

func SetupRouter(app *fiber.App, handler *ExplainHandler, cfg RouterConfig) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDLocal,
	}))
	app.Use(requestContext)
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": cfg.Version,
			"env":     cfg.Env,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api", rateLimit(cfg.Limiter))
	// Endpoints
	v1.Post("/explain-message", handler.HandleExplainMessage)
	v1.Post("/voice-input", handler.HandleVoiceInput)
	v1.Post("/file-upload", handler.HandleFileUpload)
}

// requestContext copies the request id into the context handed to use cases.
func requestContext(c *fiber.Ctx) error {
	if id, ok := c.Locals(requestIDLocal).(string); ok && id != "" {
		c.SetUserContext(log.ContextWithRequestID(c.UserContext(), id))
	}
	return c.Next()
}

// rateLimit admits a fixed number of requests per client IP per minute. A
// failing limiter backend lets requests through.
func rateLimit(limiter repository.RateLimiter) fiber.Handler {
	l := log.WithComponent("ratelimit")
	return func(c *fiber.Ctx) error {
		if limiter == nil || c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		allowed, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			lc := log.WithContext(c.UserContext(), l)
			lc.Warn().Err(err).Msg("rate limiter unavailable, admitting request")
			return c.Next()
		}
		if !allowed {
			metrics.RecordRateLimited()
			status, detail := statusFor(entity.ErrRateLimitExceeded)
			c.Set(fiber.HeaderRetryAfter, "60")
			return c.Status(status).JSON(fiber.Map{"detail": detail})
		}
		return c.Next()
	}
}
