package hosting

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/nimbushost/NimbusPanel/app/models"
)

// CancelInput identifies the service to cancel. ServiceID 0 addresses the
// legacy singleton service of the user. TicketID optionally links a support
// ticket that gets a closing message.
type CancelInput struct {
	UserID    uint
	ServiceID uint
	TicketID  uint
	Reason    string
}

// CancelResult reports each cancellation step separately so the caller can
// tell a clean cancellation from one needing manual follow-up.
type CancelResult struct {
	BillingCancel  bool `json:"billing_cancel"`
	InstanceDelete bool `json:"instance_delete"`
	RecordUpdate   bool `json:"record_update"`
	SupportClosed  bool `json:"support_closed"`
}

// Cancel runs the privileged four-step cancellation: cancel billing, delete
// the instance, terminate the record, close the linked ticket. The steps are
// independent, a failure in one never aborts the rest, and the record update
// runs regardless so the operator's intent is durably recorded even when
// cleanup is incomplete. There is no rollback; a partial result is a valid
// outcome, not a retryable failure.
func (e *Engine) Cancel(ctx context.Context, in CancelInput) (*CancelResult, error) {
	if in.UserID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	view, err := e.resolveCancelTarget(in)
	if err != nil {
		return nil, err
	}

	result := &CancelResult{}

	// Step 1: cancel the billing subscription. Nothing to cancel counts as
	// done, only an actual processor failure warrants follow-up.
	if strings.TrimSpace(view.BillingSubscriptionID) == "" {
		result.BillingCancel = true
	} else if err := e.processor.CancelSubscription(ctx, view.BillingSubscriptionID); err != nil {
		log.Printf("cancel service %d: billing cancel of %s failed: %v", view.ID, view.BillingSubscriptionID, err)
	} else {
		result.BillingCancel = true
	}

	// Step 2: destroy the provider instance.
	if strings.TrimSpace(view.ProviderInstanceID) == "" {
		result.InstanceDelete = true
	} else if _, err := e.gateway.Delete(ctx, view.ProviderInstanceID); err != nil {
		log.Printf("cancel service %d: instance delete of %s failed: %v", view.ID, view.ProviderInstanceID, err)
	} else {
		result.InstanceDelete = true
	}

	// Step 3: always record the termination, even after failed cleanup.
	if err := e.writeServiceFields(view, map[string]any{
		"subscription_status": models.SubscriptionStatusCanceled,
		"provisioning_status": models.ProvisioningStatusTerminated,
	}); err != nil {
		log.Printf("cancel service %d: record update failed: %v", view.ID, err)
	} else {
		result.RecordUpdate = true
		view.SubscriptionStatus = models.SubscriptionStatusCanceled
		view.ProvisioningStatus = models.ProvisioningStatusTerminated
	}

	// Step 4: close the linked support ticket with a summary of 1 to 3.
	if in.TicketID != 0 {
		result.SupportClosed = e.closeLinkedTicket(in, result)
	}

	if result.RecordUpdate {
		e.notifyCanceled(in.UserID, &view.Service)
	}
	return result, nil
}

func (e *Engine) resolveCancelTarget(in CancelInput) (*ServiceView, error) {
	if in.ServiceID != 0 {
		svc, err := e.services.GetByID(in.ServiceID)
		if err != nil || svc == nil {
			return nil, fmt.Errorf("%w: service %d", ErrNotFound, in.ServiceID)
		}
		if svc.UserID != in.UserID {
			return nil, fmt.Errorf("%w: service %d does not belong to user %d", ErrNotFound, in.ServiceID, in.UserID)
		}
		return &ServiceView{Service: *svc}, nil
	}

	user, err := e.users.GetByID(in.UserID)
	if err != nil || user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, in.UserID)
	}
	rows, err := e.services.ListByUserID(in.UserID)
	if err != nil {
		return nil, err
	}
	for _, view := range ResolveServices(user, rows) {
		if view.Legacy {
			v := view
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: user %d has no legacy service", ErrNotFound, in.UserID)
}

func (e *Engine) closeLinkedTicket(in CancelInput, result *CancelResult) bool {
	summary := fmt.Sprintf(
		"Service cancellation executed. Billing cancel: %s. Instance delete: %s. Record update: %s.",
		stepWord(result.BillingCancel), stepWord(result.InstanceDelete), stepWord(result.RecordUpdate),
	)
	if reason := strings.TrimSpace(in.Reason); reason != "" {
		summary += " Reason: " + reason
	}

	ticket, err := e.tickets.GetByIDForUser(in.TicketID, in.UserID)
	if err != nil || ticket == nil {
		log.Printf("cancel service: ticket %d for user %d not found", in.TicketID, in.UserID)
		return false
	}
	if err := e.tickets.AppendMessage(ticket.ID, "system", summary); err != nil {
		log.Printf("cancel service: appending closing message to ticket %d: %v", ticket.ID, err)
		return false
	}
	if err := e.tickets.Close(ticket.ID); err != nil {
		log.Printf("cancel service: closing ticket %d: %v", ticket.ID, err)
		return false
	}
	return true
}

func stepWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAILED"
}
