package hosting

import (
	"context"
	"fmt"
	"strings"

	"github.com/nimbushost/NimbusPanel/app/models"
)

// VerifyResult is the outcome of a checkout verification. Pending means the
// session exists but payment has not confirmed yet, the client may retry.
type VerifyResult struct {
	Success    bool
	Pending    bool
	InstanceID string
	Service    *models.Service
}

// VerifyCheckoutSession is the synchronous fallback for a delayed or lost
// checkout notification. It re-derives the same provisioning input the
// webhook would have carried and funnels into the same idempotent Provision
// call, so running it before, after or concurrently with event intake always
// converges on one service.
func (e *Engine) VerifyCheckoutSession(ctx context.Context, userID uint, sessionID string) (*VerifyResult, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrValidation)
	}

	session, err := e.processor.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: checkout session %s: %v", ErrNotFound, sessionID, err)
	}

	// Session metadata names the buyer; a caller verifying someone else's
	// checkout must not trigger provisioning for it.
	if session.Metadata.UserID != 0 && session.Metadata.UserID != userID {
		return nil, fmt.Errorf("%w: checkout session belongs to another account", ErrForbidden)
	}

	if !session.Complete || !session.Paid {
		return &VerifyResult{Pending: true}, nil
	}
	if strings.TrimSpace(session.SubscriptionID) == "" {
		return &VerifyResult{Pending: true}, nil
	}

	svc, err := e.Provision(ctx, ProvisionInput{
		UserID:                userID,
		BillingSubscriptionID: session.SubscriptionID,
		PlanID:                session.Metadata.PlanID,
		BillingCycle:          session.Metadata.BillingCycle,
		Location:              session.Metadata.Location,
	})
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		Success:    true,
		InstanceID: svc.ProviderInstanceID,
		Service:    svc,
	}, nil
}
