package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/tokenkeeper/internal/api/apierror"
	"github.com/dtroode/tokenkeeper/internal/logger"
	"github.com/dtroode/tokenkeeper/internal/model"
)

// NewErrorHandler renders handler errors as a failed AuthResult.
// Causes of internal errors are logged and never sent to the client.
func NewErrorHandler(logger *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(model.Failure(fiberErr.Message))
		}

		apiErr := apierror.From(err)
		if apiErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error("HTTP request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err.Error())
		}

		return c.Status(apiErr.HTTPStatus).JSON(model.Failure(apiErr.Message))
	}
}
