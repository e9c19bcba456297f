package controllers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/app/repository"
	"github.com/nimbushost/NimbusPanel/internal/pkg/hosting"
	"github.com/nimbushost/NimbusPanel/internal/pkg/metrics/counter"
	"github.com/nimbushost/NimbusPanel/internal/pkg/statistics"
)

type adminCancelRequest struct {
	UserID    uint   `json:"user_id" validate:"required,min=1"`
	ServiceID uint   `json:"service_id"`
	TicketID  uint   `json:"ticket_id"`
	Reason    string `json:"reason" validate:"max=500"`
}

// HandleAdminCancelService runs the privileged four-step cancellation. The
// response always reports every step so support can follow up on partial
// results instead of blindly retrying.
func HandleAdminCancelService(c *fiber.Ctx) error {
	var req adminCancelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": "invalid request body"})
	}
	if err := validator.New().Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	result, err := getEngine().Cancel(ctx, hosting.CancelInput{
		UserID:    req.UserID,
		ServiceID: req.ServiceID,
		TicketID:  req.TicketID,
		Reason:    req.Reason,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// HandleAdminListServices pages through all service records.
func HandleAdminListServices(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	repo := repository.GetGlobalFactory().GetServiceRepository()
	services, err := repo.List((page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"services": services,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

// HandleAdminServiceStats summarizes the provisioning pipeline.
func HandleAdminServiceStats(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetServiceRepository()

	stats := fiber.Map{}
	for _, status := range []string{
		models.ProvisioningStatusProvisioning,
		models.ProvisioningStatusActive,
		models.ProvisioningStatusFailed,
		models.ProvisioningStatusSuspended,
		models.ProvisioningStatusTerminated,
	} {
		n, err := repo.CountByProvisioningStatus(status)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
		}
		stats[status] = n
	}

	total, err := repo.Count()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	stats["total"] = total

	panelStats := statistics.GetStatisticsData()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"provisioning":   stats,
		"total_users":    panelStats.TotalUsers,
		"total_services": panelStats.TotalServices,
		"services_today": panelStats.TodayServices,
		"webhooks":       counter.GetWebhookSnapshot(),
	})
}
