package httpapi

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/vidtube/backend/internal/auth"
)

// NewErrorHandler returns the uniform fiber error handler. The internal
// error taxonomy is richer than the wire protocol: every auth failure
// collapses to 401 here, bad input to 400, anything unexpected to a generic
// 500 without leaking details.
func NewErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			return respond(c, fe.Code, fe.Message, nil)
		}

		var rich *errors.Error
		if !errors.As(err, &rich) {
			rich = errors.Wrap(err, errors.CategoryInternal, "Something went wrong").
				WithCode(errors.CodeInternal)
		}

		status := rich.Code
		if status == 0 {
			status = statusForCategory(rich.Category)
		}

		message := rich.Message
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"error", err,
				"path", c.Path(),
				"text_code", rich.TextCode,
			)
			message = "Something went wrong"
		}

		return respond(c, status, message, nil)
	}
}

func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return fiber.StatusUnauthorized
	case errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func badInput(err error, message string) error {
	return errors.Wrap(err, errors.CategoryBadInput, message).
		WithCode(errors.CodeBadRequest)
}
