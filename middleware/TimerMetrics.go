package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// TimerMetrics middleware tracks request duration and logs it
func TimerMetrics(c *fiber.Ctx) error {
	startTime := time.Now()

	err := c.Next()

	duration := time.Since(startTime)
	status := c.Response().StatusCode()

	event := log.Info()
	if status >= fiber.StatusInternalServerError {
		event = log.Warn()
	}
	event.
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", duration).
		Msg("request")

	return err
}
