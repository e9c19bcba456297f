package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/nimbushost/NimbusPanel/app/controllers"
	"github.com/nimbushost/NimbusPanel/app/repository"
	apiv1 "github.com/nimbushost/NimbusPanel/internal/api/v1"
	"github.com/nimbushost/NimbusPanel/internal/pkg/cache"
	"github.com/nimbushost/NimbusPanel/internal/pkg/constants"
	"github.com/nimbushost/NimbusPanel/internal/pkg/database"
	"github.com/nimbushost/NimbusPanel/internal/pkg/hosting"
	"github.com/nimbushost/NimbusPanel/internal/pkg/mail"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
	"github.com/nimbushost/NimbusPanel/internal/pkg/provision"
	"github.com/nimbushost/NimbusPanel/internal/pkg/s3archive"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repository.InitializeFactory(database.GetDB())
	initializeHostingStack()

	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

// initializeHostingStack builds the reconciliation engine once and hands it
// to the controllers. Misconfigured external collaborators are fatal at
// startup, not at first request.
func initializeHostingStack() {
	gateway, err := provision.NewGatewayFromEnv()
	if err != nil {
		panic("provisioning gateway setup failed: " + err.Error())
	}
	processor, err := payment.NewStripeProcessorFromEnv()
	if err != nil {
		panic("payment processor setup failed: " + err.Error())
	}

	var archiver *s3archive.Client
	if cfg, err := s3archive.LoadConfig(); err != nil {
		panic("webhook archive setup failed: " + err.Error())
	} else if cfg.IsEnabled() {
		archiver, err = s3archive.NewClient(cfg)
		if err != nil {
			// The archive is an audit convenience, not part of the
			// reconciliation core. Run without it.
			log.Printf("webhook archive unavailable: %v", err)
		}
	}

	engine := hosting.NewEngine(
		repository.GetGlobalRepositories(),
		gateway,
		processor,
		cache.NewCooldown(),
		mail.NewServiceNotifier(),
	)
	controllers.InitializeHostingControllers(engine, processor, archiver)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
