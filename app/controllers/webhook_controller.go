package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/app/repository"
	"github.com/nimbushost/NimbusPanel/internal/pkg/hosting"
	"github.com/nimbushost/NimbusPanel/internal/pkg/metrics/counter"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
)

// HandlePaymentWebhook receives processor notifications. Signature
// verification is the authentication for this endpoint; every verified event
// is journaled before any state is touched so redeliveries converge instead
// of re-running side effects.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	ev, err := paymentProcessor.VerifyAndParseEvent(rawBody, signature)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if err := counter.AddWebhookReceived(ev.Kind); err != nil {
		log.Printf("webhook %s: counter increment failed: %v", ev.EventID, err)
	}

	events := repository.GetGlobalFactory().GetWebhookEventRepository()
	created, stored, err := events.CreateIfNotExists(&models.PaymentWebhookEvent{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: ev.EventID,
		EventType:       ev.Kind,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if created && webhookArchiver != nil {
		if _, archiveErr := webhookArchiver.ArchiveWebhookPayload(ctx, models.PaymentProviderStripe, ev.EventID, rawBody); archiveErr != nil {
			log.Printf("webhook %s: payload archive failed: %v", ev.EventID, archiveErr)
		}
	}

	if ev.Kind == payment.EventIgnored {
		_ = events.MarkProcessed(stored.ID, "")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	handleErr := getEngine().HandleEvent(ctx, ev)
	if handleErr != nil {
		_ = events.MarkProcessed(stored.ID, handleErr.Error())
		_ = counter.AddWebhookFailed(ev.Kind)
		switch {
		case errors.Is(handleErr, hosting.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		case errors.Is(handleErr, hosting.ErrNotFound):
			// Non-2xx so the processor redelivers; the referenced checkout
			// may simply not have been processed yet.
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_subscription"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
		}
	}

	_ = events.MarkProcessed(stored.ID, "")
	_ = counter.AddWebhookProcessed(ev.Kind)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
