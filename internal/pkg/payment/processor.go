package payment

import (
	"context"
	"strings"
	"time"
)

// Event kinds the hosting engine reacts to. Anything else is journaled and
// acknowledged as ignored.
const (
	EventCheckoutCompleted   = "checkout_completed"
	EventSubscriptionUpdated = "subscription_updated"
	EventSubscriptionDeleted = "subscription_deleted"
	EventPaymentFailed       = "payment_failed"
	EventIgnored             = "ignored"
)

// Subscription statuses as stored on service records.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
	StatusTrialing = "trialing"
)

// CheckoutMetadata is the order data attached to a checkout by our frontend.
type CheckoutMetadata struct {
	UserID       uint
	PlanID       string
	BillingCycle string
	Location     string
}

// Event is a processor notification normalized away from the wire format.
type Event struct {
	Kind           string
	EventID        string
	SubscriptionID string
	CustomerRef    string
	Status         string
	Metadata       CheckoutMetadata
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
	RawJSON        []byte
}

// CheckoutSession is the processor-side view of a finished checkout, used by
// the verification fallback when the webhook has not arrived yet.
type CheckoutSession struct {
	ID             string
	SubscriptionID string
	Complete       bool
	Paid           bool
	Metadata       CheckoutMetadata
}

// Processor is the payment provider surface the rest of the code depends on.
type Processor interface {
	// VerifyAndParseEvent checks the webhook signature and normalizes the
	// payload. An unhandled event type yields Kind==EventIgnored, not an error.
	VerifyAndParseEvent(payload []byte, signature string) (*Event, error)
	// GetCheckoutSession fetches a checkout session by ID.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	// CancelSubscription cancels the subscription immediately. Cancelling an
	// already-canceled subscription is not an error.
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// MapSubscriptionStatus folds processor statuses into the set we store.
// Unknown statuses become pending rather than failing the event.
func MapSubscriptionStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive
	case "past_due":
		return StatusPastDue
	case "canceled", "cancelled":
		return StatusCanceled
	case "trialing":
		return StatusTrialing
	default:
		return StatusPending
	}
}
