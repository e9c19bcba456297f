package hosting

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
)

// HandleEvent applies one processor notification to the service records. It
// is safe to call any number of times with the same event: provisioning is
// keyed on the subscription ID and every other write is a field-scoped update
// that converges on redelivery.
func (e *Engine) HandleEvent(ctx context.Context, ev *payment.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: event is nil", ErrValidation)
	}

	switch ev.Kind {
	case payment.EventCheckoutCompleted:
		return e.handleCheckoutCompleted(ctx, ev)
	case payment.EventSubscriptionUpdated:
		return e.applySubscriptionUpdate(ev)
	case payment.EventSubscriptionDeleted:
		return e.applySubscriptionDeleted(ev)
	case payment.EventPaymentFailed:
		return e.applyPaymentFailed(ev)
	case payment.EventIgnored:
		return nil
	default:
		log.Printf("event %s has unknown kind %q, acknowledging", ev.EventID, ev.Kind)
		return nil
	}
}

func (e *Engine) handleCheckoutCompleted(ctx context.Context, ev *payment.Event) error {
	if ev.Metadata.UserID == 0 {
		return fmt.Errorf("%w: checkout event %s carries no user id", ErrValidation, ev.EventID)
	}
	if strings.TrimSpace(ev.SubscriptionID) == "" {
		return fmt.Errorf("%w: checkout event %s carries no subscription id", ErrValidation, ev.EventID)
	}

	_, err := e.Provision(ctx, ProvisionInput{
		UserID:                ev.Metadata.UserID,
		BillingSubscriptionID: ev.SubscriptionID,
		PlanID:                ev.Metadata.PlanID,
		BillingCycle:          ev.Metadata.BillingCycle,
		Location:              ev.Metadata.Location,
		PeriodStart:           ev.PeriodStart,
		PeriodEnd:             ev.PeriodEnd,
	})
	return err
}

func (e *Engine) applySubscriptionUpdate(ev *payment.Event) error {
	view, err := e.findBySubscriptionID(ev.SubscriptionID)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"subscription_status": ev.Status,
	}
	if ev.PeriodStart != nil {
		fields["current_period_start"] = ev.PeriodStart
	}
	if ev.PeriodEnd != nil {
		fields["current_period_end"] = ev.PeriodEnd
	}
	return e.writeServiceFields(view, fields)
}

func (e *Engine) applySubscriptionDeleted(ev *payment.Event) error {
	view, err := e.findBySubscriptionID(ev.SubscriptionID)
	if err != nil {
		return err
	}

	fields := map[string]any{
		"subscription_status": models.SubscriptionStatusCanceled,
	}
	// Suspend, never terminate. A processor deletion can be mistaken or
	// reversed, destroying the instance stays an explicit operator act.
	if models.CanAdvanceProvisioning(view.ProvisioningStatus, models.ProvisioningStatusSuspended) {
		fields["provisioning_status"] = models.ProvisioningStatusSuspended
	}
	return e.writeServiceFields(view, fields)
}

func (e *Engine) applyPaymentFailed(ev *payment.Event) error {
	view, err := e.findBySubscriptionID(ev.SubscriptionID)
	if err != nil {
		return err
	}
	return e.writeServiceFields(view, map[string]any{
		"subscription_status": models.SubscriptionStatusPastDue,
	})
}

// findBySubscriptionID resolves the service a processor notification refers
// to, checking the services table first and falling back to the legacy user
// columns. The legacy match is ignored once the user owns table rows, those
// are authoritative.
func (e *Engine) findBySubscriptionID(subID string) (*ServiceView, error) {
	subID = strings.TrimSpace(subID)
	if subID == "" {
		return nil, fmt.Errorf("%w: subscription id is required", ErrValidation)
	}

	if svc, err := e.services.GetByBillingSubscriptionID(subID); err == nil && svc != nil {
		return &ServiceView{Service: *svc}, nil
	}

	user, err := e.users.GetByLegacySubscriptionID(subID)
	if err != nil || user == nil {
		return nil, fmt.Errorf("%w: no service for subscription %s", ErrNotFound, subID)
	}
	rows, err := e.services.ListByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	for _, view := range ResolveServices(user, rows) {
		if view.Legacy && view.BillingSubscriptionID == subID {
			v := view
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: no service for subscription %s", ErrNotFound, subID)
}
