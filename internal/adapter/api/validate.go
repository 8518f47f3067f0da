package api

import (
	"errors"
	"fmt"
	"strings"

	"message-explainer/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// uploadForm holds the plain fields sent next to a voice or file upload.
type uploadForm struct {
	LanguagePreference string `validate:"omitempty,oneof=tamil tanglish english all"`
	ContextText        string
	History            string
}

// validateRequest checks struct tags and reports the first failing field as
// ErrInvalidRequest.
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %q", entity.ErrInvalidRequest, fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err)
}

func normalizeLanguage(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
