package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/internal/pkg/database"
	"github.com/nimbushost/NimbusPanel/internal/pkg/hosting"
	"github.com/nimbushost/NimbusPanel/internal/pkg/security"
	"github.com/nimbushost/NimbusPanel/internal/pkg/usercontext"
	"github.com/nimbushost/NimbusPanel/internal/pkg/utils"
)

// serviceResponse is the user-facing shape of one service. The root password
// is decrypted for the owner only once the instance is active.
type serviceResponse struct {
	ID                 uint       `json:"id,omitempty"`
	PlanID             string     `json:"plan_id"`
	BillingCycle       string     `json:"billing_cycle"`
	Location           string     `json:"location"`
	SubscriptionStatus string     `json:"subscription_status"`
	ProvisioningStatus string     `json:"provisioning_status"`
	IPAddress          string     `json:"ip_address,omitempty"`
	RootUser           string     `json:"root_user,omitempty"`
	RootPassword       string     `json:"root_password,omitempty"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	Legacy             bool       `json:"legacy,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toServiceResponse(view hosting.ServiceView) serviceResponse {
	out := serviceResponse{
		ID:                 view.ID,
		PlanID:             view.PlanID,
		BillingCycle:       view.BillingCycle,
		Location:           view.Location,
		SubscriptionStatus: view.SubscriptionStatus,
		ProvisioningStatus: view.ProvisioningStatus,
		IPAddress:          view.IPAddress,
		RootUser:           view.RootUser,
		CurrentPeriodStart: view.CurrentPeriodStart,
		CurrentPeriodEnd:   view.CurrentPeriodEnd,
		Legacy:             view.Legacy,
		CreatedAt:          view.CreatedAt,
	}
	if view.ProvisioningStatus == models.ProvisioningStatusActive && view.RootPasswordEnc != "" {
		if plain, err := security.OpenCredential(view.RootPasswordEnc); err == nil {
			out.RootPassword = plain
		} else {
			log.Printf("service %d: credential unseal failed: %v", view.ID, err)
		}
	}
	return out
}

// HandleGetUserServices returns the caller's canonical service list. Reading
// it opportunistically promotes any service that finished building.
func HandleGetUserServices(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	views, err := getEngine().UserState(ctx, userCtx.UserID)
	if err != nil {
		return errorResponse(c, err)
	}

	services := make([]serviceResponse, 0, len(views))
	for _, view := range views {
		services = append(services, toServiceResponse(view))
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"services": services})
}

// HandleGetUserAccount returns profile plus API key metadata.
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userCtx.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	}
	settings, err := models.GetOrCreateUserSettings(db, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":             user.ID,
		"name":           user.Name,
		"email":          user.Email,
		"role":           user.Role,
		"avatar_url":     utils.GetGravatarURL(user.Email, 200),
		"api_key_active": settings.HasActiveAPIKey(),
		"api_key_prefix": settings.APIKeyPrefix,
	})
}

// HandleIssueAPIKey mints a fresh API key for the caller. The raw secret is
// shown exactly once, only its hash is stored.
func HandleIssueAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "key_generation_failed"})
	}
	if err := db.Save(settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"api_key":        rawKey,
		"api_key_prefix": settings.APIKeyPrefix,
	})
}

// HandleRevokeAPIKey invalidates the caller's API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
