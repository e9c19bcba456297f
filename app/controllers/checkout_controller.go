package controllers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/nimbushost/NimbusPanel/internal/pkg/usercontext"
)

type verifyCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required,min=8,max=255"`
}

// HandleVerifyCheckoutSession is the synchronous fallback the client calls
// right after returning from the payment flow. Safe to retry any number of
// times, it converges on the same service the webhook path creates.
func HandleVerifyCheckoutSession(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req verifyCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "invalid request body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	res, err := getEngine().VerifyCheckoutSession(ctx, userCtx.UserID, req.SessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	if res.Pending {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success": false,
			"pending": true,
			"message": "payment not confirmed yet, retry shortly",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":     true,
		"instance_id": res.InstanceID,
		"service":     res.Service,
	})
}
