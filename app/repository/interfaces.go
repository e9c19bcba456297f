package repository

import (
	"github.com/nimbushost/NimbusPanel/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	GetByLegacySubscriptionID(subscriptionID string) (*models.User, error)
	Update(user *models.User) error
	UpdateLegacyServiceFields(userID uint, fields map[string]any) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// ServiceRepository defines the interface for service-record operations.
// CreateIfAbsent is the dedupe primitive: the insert is conditional on the
// unique billing_subscription_id index, and the stored row is returned
// whether or not this call created it.
type ServiceRepository interface {
	CreateIfAbsent(svc *models.Service) (created bool, stored *models.Service, err error)
	GetByID(id uint) (*models.Service, error)
	GetByBillingSubscriptionID(subscriptionID string) (*models.Service, error)
	ListByUserID(userID uint) ([]models.Service, error)
	UpdateFields(id uint, fields map[string]any) error
	List(offset, limit int) ([]models.Service, error)
	Count() (int64, error)
	CountByProvisioningStatus(status string) (int64, error)
}

// PlanRepository defines the interface for the hosting plan catalog
type PlanRepository interface {
	GetActiveByPlanID(planID string) (*models.HostingPlan, error)
	GetByProcessorPriceID(priceID string) (*models.HostingPlan, error)
	ListActive() ([]models.HostingPlan, error)
	Save(plan *models.HostingPlan) error
}

// TicketRepository defines the interface for support ticket operations
type TicketRepository interface {
	Create(ticket *models.SupportTicket) error
	GetByID(id uint) (*models.SupportTicket, error)
	GetByIDForUser(id, userID uint) (*models.SupportTicket, error)
	AppendMessage(ticketID uint, author, body string) error
	Close(ticketID uint) error
	ListMessages(ticketID uint) ([]models.TicketMessage, error)
}

// WebhookEventRepository journals processor notifications idempotently
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.PaymentWebhookEvent) (created bool, stored *models.PaymentWebhookEvent, err error)
	MarkProcessed(id uint, processingError string) error
	GetByProviderEventID(provider, providerEventID string) (*models.PaymentWebhookEvent, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Service      ServiceRepository
	Plan         PlanRepository
	Ticket       TicketRepository
	WebhookEvent WebhookEventRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Service:      NewServiceRepository(db),
		Plan:         NewPlanRepository(db),
		Ticket:       NewTicketRepository(db),
		WebhookEvent: NewWebhookEventRepository(db),
	}
}
