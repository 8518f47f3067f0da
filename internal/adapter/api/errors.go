package api

import (
	"errors"

	"message-explainer/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps a domain error to an HTTP status and a calm message for the user.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrRateLimitExceeded):
		return fiber.StatusTooManyRequests, "Too many requests. Please wait a minute and try again."
	case errors.Is(err, entity.ErrInputTooLong):
		return fiber.StatusRequestEntityTooLarge, "This message is too long. Please send a shorter part of it."
	case errors.Is(err, entity.ErrFollowUpLimit):
		return fiber.StatusBadRequest, "You have asked the most questions allowed for this message. Please start again with a new message."
	case errors.Is(err, entity.ErrUnsupportedInput):
		return fiber.StatusUnsupportedMediaType, "This file type is not supported. Please send a PDF, a photo or a voice recording."
	case errors.Is(err, entity.ErrEmptyInput):
		return fiber.StatusBadRequest, "Nothing was received. Please send a message, a file or a recording."
	case errors.Is(err, entity.ErrInvalidRequest):
		return fiber.StatusBadRequest, "The request could not be understood. Please try again."
	case errors.Is(err, entity.ErrExtractionFailed):
		return fiber.StatusBadGateway, "We could not read this file or recording right now. Please try again in a little while."
	case errors.Is(err, entity.ErrGenerationFailed):
		return fiber.StatusBadGateway, "We could not prepare an explanation right now. Please try again in a little while."
	}
	return fiber.StatusInternalServerError, "Something went wrong on our side. Please try again."
}

// ErrorHandler renders every error, including fiber's own, as {detail}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		detail := fe.Message
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			detail = "This file is too large. Please send a smaller file."
		}
		return c.Status(fe.Code).JSON(fiber.Map{"detail": detail})
	}
	status, detail := statusFor(err)
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}
