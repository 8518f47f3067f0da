package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"message-explainer/internal/domain/entity"
	"message-explainer/internal/log"
	"message-explainer/internal/metrics"
	"message-explainer/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// MessageExplainer is the use case behind the three entry points.
type MessageExplainer interface {
	ExplainText(ctx context.Context, req entity.ExplainRequest) (*entity.ExplainResponse, error)
	ExplainVoice(ctx context.Context, audio usecase.Upload, req entity.ExplainRequest) (*entity.ExplainResponse, error)
	ExplainFile(ctx context.Context, file usecase.Upload, lang entity.LanguagePreference) (*entity.ExplainResponse, error)
}

type ExplainHandler struct {
	explainer MessageExplainer
	logger    zerolog.Logger
}

func NewExplainHandler(explainer MessageExplainer) *ExplainHandler {
	return &ExplainHandler{explainer: explainer, logger: log.WithComponent("api")}
}

// HandleExplainMessage explains pasted text or answers a follow-up question.
func (h *ExplainHandler) HandleExplainMessage(c *fiber.Ctx) error {
	const entrypoint = "text"

	var req entity.ExplainRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, entrypoint, fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
	}
	req.LanguagePreference = entity.LanguagePreference(normalizeLanguage(string(req.LanguagePreference)))
	if err := validateRequest(req); err != nil {
		return h.fail(c, entrypoint, err)
	}
	if req.LanguagePreference == "" {
		req.LanguagePreference = entity.LanguageTamil
	}

	resp, err := h.explainer.ExplainText(c.UserContext(), req)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	return h.ok(c, entrypoint, resp)
}

// HandleVoiceInput transcribes a recording and explains it.
func (h *ExplainHandler) HandleVoiceInput(c *fiber.Ctx) error {
	const entrypoint = "voice"

	upload, err := readUpload(c, "audio")
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	form, err := readForm(c)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	lang, err := entity.ParseLanguagePreference(form.LanguagePreference)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	req := entity.ExplainRequest{
		LanguagePreference: lang,
		ContextText:        form.ContextText,
		History:            form.History,
	}

	resp, err := h.explainer.ExplainVoice(c.UserContext(), upload, req)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	return h.ok(c, entrypoint, resp)
}

// HandleFileUpload extracts text from a PDF or image and explains it.
func (h *ExplainHandler) HandleFileUpload(c *fiber.Ctx) error {
	const entrypoint = "file"

	upload, err := readUpload(c, "file")
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	if len(upload.Data) == 0 {
		return h.fail(c, entrypoint, fmt.Errorf("%w: empty upload", entity.ErrEmptyInput))
	}
	form, err := readForm(c)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	lang, err := entity.ParseLanguagePreference(form.LanguagePreference)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}

	resp, err := h.explainer.ExplainFile(c.UserContext(), upload, lang)
	if err != nil {
		return h.fail(c, entrypoint, err)
	}
	return h.ok(c, entrypoint, resp)
}

func (h *ExplainHandler) ok(c *fiber.Ctx, entrypoint string, resp *entity.ExplainResponse) error {
	outcome := "ok"
	if resp.SourceText == nil || *resp.SourceText == "" {
		outcome = "no_text"
	}
	metrics.RecordRequest(entrypoint, outcome)
	metrics.RecordUrgency(string(resp.Urgency))
	return c.Status(fiber.StatusOK).JSON(resp)
}

// fail logs the cause and renders the calm detail; the cause never reaches the client.
func (h *ExplainHandler) fail(c *fiber.Ctx, entrypoint string, err error) error {
	status, detail := statusFor(err)

	l := log.WithContext(c.UserContext(), h.logger)
	ev := l.Warn()
	outcome := "rejected"
	if status >= fiber.StatusInternalServerError {
		ev = l.Error()
		outcome = "error"
	}
	ev.Err(err).Str("entrypoint", entrypoint).Int("status", status).Msg("request failed")

	metrics.RecordRequest(entrypoint, outcome)
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}

func readForm(c *fiber.Ctx) (uploadForm, error) {
	form := uploadForm{
		LanguagePreference: normalizeLanguage(c.FormValue("language_preference")),
		ContextText:        c.FormValue("context_text"),
		History:            c.FormValue("history"),
	}
	return form, validateRequest(form)
}

var errMissingUpload = errors.New("missing upload field")

func readUpload(c *fiber.Ctx, field string) (usecase.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return usecase.Upload{}, fmt.Errorf("%w: %w %q", entity.ErrInvalidRequest, errMissingUpload, field)
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return usecase.Upload{}, fmt.Errorf("%w: read %q: %w", entity.ErrInvalidRequest, field, err)
	}
	return usecase.Upload{
		Data:        data,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
	}, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
