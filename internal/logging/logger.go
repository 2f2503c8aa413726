// Package logging provides the structured JSON logger used across the
// catalog search core, adapted from the zerolog setup used elsewhere
// in the pack but wired into fiber instead of gin.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey string

const loggerLocalsKey = "logger"

// New builds the service-wide zerolog.Logger.
func New(level, format, serviceName string) zerolog.Logger {
	return NewWithWriter(level, format, serviceName, os.Stdout)
}

// NewWithWriter builds a logger writing to an arbitrary writer, mainly
// for tests.
func NewWithWriter(level, format, serviceName string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var out io.Writer = w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Middleware stamps a request ID, binds a request-scoped logger into
// fiber locals, and logs completion with status/latency.
func Middleware(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("X-Request-ID", requestID)

		reqLogger := base.With().Str("request_id", requestID).Logger()
		c.Locals(loggerLocalsKey, &reqLogger)

		err := c.Next()

		status := c.Response().StatusCode()
		event := reqLogger.Info()
		if status >= 500 {
			event = reqLogger.Error()
		} else if status >= 400 {
			event = reqLogger.Warn()
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request completed")

		return err
	}
}

// FromCtx extracts the request-scoped logger from fiber locals,
// falling back to a no-op logger that discards output if the
// middleware wasn't run (e.g. in tests that skip it).
func FromCtx(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(loggerLocalsKey).(*zerolog.Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}
