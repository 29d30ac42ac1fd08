package httpapi

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/segmentio/ksuid"

	"github.com/i474232898/forecast-widget/internal/logger"
)

const traceHeader = "X-Trace-Id"

// NewApp returns a fiber app with the centralized error handler and the
// global middleware installed.
func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(TraceID())
	app.Use(RequestLogger())

	return app
}

// errorHandler renders every error as {"error": true, "message": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := statusOf(err)
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func statusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

// TraceID tags each request with a ksuid, stored in the user context for
// logging and echoed in the X-Trace-Id header.
func TraceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := ksuid.New().String()
		c.SetUserContext(logger.WithTraceID(c.UserContext(), id))
		c.Set(traceHeader, id)

		return c.Next()
	}
}

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		t0 := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		slog.InfoContext(c.UserContext(), "inbound request",
			slog.Group("http",
				slog.Group("request",
					"duration_ms", time.Since(t0).Milliseconds(),
					"method", c.Method(),
					"path", c.Path(),
				),
				slog.Group("response",
					"status", status,
				),
			),
		)
		return err
	}
}
