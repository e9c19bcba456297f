package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/nimbushost/NimbusPanel/app/controllers"
	"github.com/nimbushost/NimbusPanel/internal/pkg/middleware"
)

// APIServer groups the public v1 handlers
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// RegisterHandlers wires the v1 surface. The webhook endpoint authenticates
// via its payload signature, everything else requires an API key; the
// cancellation and listing endpoints additionally require the admin role.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Get("/plans", controllers.HandleListPlans)

	// Signature-authenticated processor callback.
	router.Post("/payment/webhook", controllers.HandlePaymentWebhook)

	authed := router.Group("", middleware.APIKeyAuthMiddleware(), middleware.RequireAuth)
	authed.Post("/checkout/verify", controllers.HandleVerifyCheckoutSession)
	authed.Get("/user/services", controllers.HandleGetUserServices)
	authed.Get("/user/account", controllers.HandleGetUserAccount)
	authed.Post("/user/api-key", controllers.HandleIssueAPIKey)
	authed.Delete("/user/api-key", controllers.HandleRevokeAPIKey)

	admin := authed.Group("/admin", middleware.RequireAdmin)
	admin.Post("/services/cancel", controllers.HandleAdminCancelService)
	admin.Get("/services", controllers.HandleAdminListServices)
	admin.Get("/services/stats", controllers.HandleAdminServiceStats)
}
