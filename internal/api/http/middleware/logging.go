package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/tokenkeeper/internal/logger"
)

// RequestLogger logs every completed request. Handler errors are rendered
// here so the logged status is the one the client sees.
func RequestLogger(logger *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("HTTP request completed", args...)
		} else {
			logger.Info("HTTP request completed", args...)
		}

		return nil
	}
}
