// Package server runs an extraction pass, wiring the tracking client,
// pipeline, emitter and state store together, with an optional status
// endpoint alongside.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/acryldata/datahub-mlflow-source/pkg/source"
)

const shutdownTimeout = 5 * time.Second

// launchStatusServer serves liveness and the live ingestion report while a
// pass runs, shutting down when ctx is cancelled.
func launchStatusServer(
	ctx context.Context,
	address, version string,
	report *source.Report,
	log *logrus.Logger,
) error {
	app := fiber.New(fiber.Config{
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${status} - ${latency} ${method} ${path}\n",
		Output: log.Writer(),
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.SendString(version)
	})
	app.Get("/report", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		return c.Send(report.JSON())
	})

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorf("Failed to gracefully shutdown status server: %v", err)
		}
	}()

	return app.Listen(address)
}
