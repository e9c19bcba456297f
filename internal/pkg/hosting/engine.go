package hosting

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/app/repository"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
	"github.com/nimbushost/NimbusPanel/internal/pkg/provision"
)

// Cooldown rate-limits the lazy status poller. TryAcquire returns false while
// a previous acquisition for the same key is still within its TTL.
type Cooldown interface {
	TryAcquire(key string, ttl time.Duration) bool
}

// Notifier sends user-facing notifications. Implementations must not block
// the calling request for long; failures are logged, never surfaced.
type Notifier interface {
	ServiceProvisioned(user *models.User, svc *models.Service)
	ServiceCanceled(user *models.User, svc *models.Service)
}

// Engine reconciles service records against the payment processor and the
// compute provider. All dependencies are injected once at construction, the
// engine itself keeps no mutable state between calls.
type Engine struct {
	users    repository.UserRepository
	services repository.ServiceRepository
	plans    repository.PlanRepository
	tickets  repository.TicketRepository
	events   repository.WebhookEventRepository

	gateway   provision.Gateway
	processor payment.Processor

	cooldown Cooldown
	notifier Notifier

	pollCooldownTTL time.Duration
}

// NewEngine wires the reconciliation engine from its dependencies. cooldown
// and notifier may be nil; a nil cooldown polls on every read.
func NewEngine(
	repos *repository.Repositories,
	gateway provision.Gateway,
	processor payment.Processor,
	cooldown Cooldown,
	notifier Notifier,
) *Engine {
	return &Engine{
		users:           repos.User,
		services:        repos.Service,
		plans:           repos.Plan,
		tickets:         repos.Ticket,
		events:          repos.WebhookEvent,
		gateway:         gateway,
		processor:       processor,
		cooldown:        cooldown,
		notifier:        notifier,
		pollCooldownTTL: 30 * time.Second,
	}
}

// ProvisionInput is the validated tuple both notification paths converge on.
type ProvisionInput struct {
	UserID                uint
	BillingSubscriptionID string
	PlanID                string
	BillingCycle          string
	Location              string
	PeriodStart           *time.Time
	PeriodEnd             *time.Time
}

func (in *ProvisionInput) validate() error {
	if in.UserID == 0 {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(in.BillingSubscriptionID) == "" {
		return fmt.Errorf("%w: billing subscription id is required", ErrValidation)
	}
	if strings.TrimSpace(in.PlanID) == "" {
		return fmt.Errorf("%w: plan id is required", ErrValidation)
	}
	return nil
}

// Provision creates the service record for a paid subscription, at most once
// per billing subscription ID. The returned service is the stored row whether
// this call created it or an earlier one did.
//
// There is no lock around the existence check; correctness rests on the
// store's conditional create-if-absent keyed on the unique subscription ID.
// The loser of a race tears down its own provider instance and returns the
// winning row.
func (e *Engine) Provision(ctx context.Context, in ProvisionInput) (*models.Service, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	subID := strings.TrimSpace(in.BillingSubscriptionID)

	if existing, err := e.services.GetByBillingSubscriptionID(subID); err == nil && existing != nil {
		return existing, nil
	}

	svc := &models.Service{
		UserID:                in.UserID,
		PlanID:                strings.TrimSpace(in.PlanID),
		BillingCycle:          models.NormalizeBillingCycle(in.BillingCycle),
		Location:              strings.TrimSpace(in.Location),
		SubscriptionStatus:    models.SubscriptionStatusActive,
		ProvisioningStatus:    models.ProvisioningStatusProvisioning,
		BillingSubscriptionID: subID,
		CurrentPeriodStart:    in.PeriodStart,
		CurrentPeriodEnd:      in.PeriodEnd,
	}

	planSpec, region := e.resolvePlanSpec(svc.PlanID, svc.Location)
	instanceID, createErr := e.gateway.Create(ctx, provision.InstanceSpec{
		PlanSpec: planSpec,
		Label:    fmt.Sprintf("svc-u%d-%s", in.UserID, shortSubID(subID)),
		Region:   region,
	})
	switch {
	case createErr == nil:
		svc.ProviderInstanceID = instanceID
	case provision.IsTransient(createErr):
		// Transient failures are not a state transition. Returning the error
		// makes the webhook respond non-2xx, the processor redelivers and the
		// create is retried with no record written.
		log.Printf("provision create transient failure for %s: %v", subID, createErr)
		return nil, createErr
	default:
		// Fatal errors (bad plan, bad region) cannot succeed on retry. The
		// record is persisted as failed because billing already went through,
		// a silently dropped service would leave the user paying for nothing.
		log.Printf("provision create fatal failure for %s: %v", subID, createErr)
		svc.ProvisioningStatus = models.ProvisioningStatusFailed
	}

	created, stored, err := e.services.CreateIfAbsent(svc)
	if err != nil {
		return nil, err
	}
	if !created && svc.ProviderInstanceID != "" && stored.ProviderInstanceID != svc.ProviderInstanceID {
		// Lost the race after creating an instance. Best-effort teardown of
		// the orphan, the winner's row is authoritative.
		if _, delErr := e.gateway.Delete(ctx, svc.ProviderInstanceID); delErr != nil {
			log.Printf("failed to clean up orphan instance %s for %s: %v", svc.ProviderInstanceID, subID, delErr)
		}
	}

	if created {
		e.notifyProvisioned(stored)
	}
	return stored, nil
}

// resolvePlanSpec looks the plan up in the catalog. An unknown plan falls
// back to using the plan ID as the provider spec so provisioning is not
// blocked on catalog completeness.
func (e *Engine) resolvePlanSpec(planID, location string) (spec, region string) {
	spec, region = planID, location
	plan, err := e.plans.GetActiveByPlanID(planID)
	if err != nil || plan == nil {
		return spec, region
	}
	if plan.ProviderPlanSpec != "" {
		spec = plan.ProviderPlanSpec
	}
	if !plan.AllowsRegion(region) {
		log.Printf("plan %s does not list region %q, forwarding as requested", planID, region)
	}
	return spec, region
}

func (e *Engine) notifyProvisioned(svc *models.Service) {
	if e.notifier == nil {
		return
	}
	user, err := e.users.GetByID(svc.UserID)
	if err != nil {
		log.Printf("provision notify: user %d lookup failed: %v", svc.UserID, err)
		return
	}
	e.notifier.ServiceProvisioned(user, svc)
}

func (e *Engine) notifyCanceled(userID uint, svc *models.Service) {
	if e.notifier == nil {
		return
	}
	user, err := e.users.GetByID(userID)
	if err != nil {
		log.Printf("cancel notify: user %d lookup failed: %v", userID, err)
		return
	}
	e.notifier.ServiceCanceled(user, svc)
}

func shortSubID(subID string) string {
	s := strings.TrimPrefix(subID, "sub_")
	if len(s) > 12 {
		s = s[:12]
	}
	return s
}
