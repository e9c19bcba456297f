package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbushost/NimbusPanel/internal/pkg/hosting"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
	"github.com/nimbushost/NimbusPanel/internal/pkg/s3archive"
)

var (
	hostingEngine    *hosting.Engine
	paymentProcessor payment.Processor
	webhookArchiver  *s3archive.Client
)

// InitializeHostingControllers injects the shared dependencies once during
// router setup. archiver may be nil when the S3 archive is disabled.
func InitializeHostingControllers(engine *hosting.Engine, processor payment.Processor, archiver *s3archive.Client) {
	hostingEngine = engine
	paymentProcessor = processor
	webhookArchiver = archiver
}

func getEngine() *hosting.Engine {
	return hostingEngine
}

// errorResponse maps engine errors onto consistent JSON error bodies.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, hosting.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	case errors.Is(err, hosting.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, hosting.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
}
