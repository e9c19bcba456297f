package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/subscription"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/nimbushost/NimbusPanel/internal/pkg/env"
)

// StripeProcessor implements Processor against the Stripe API.
type StripeProcessor struct {
	WebhookSecret string
}

func NewStripeProcessorFromEnv() (*StripeProcessor, error) {
	apiKey := strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", ""))
	if apiKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not configured")
	}
	secret := strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
	if secret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is not configured")
	}

	stripe.Key = apiKey

	return &StripeProcessor{WebhookSecret: secret}, nil
}

// Wire structs decoded from event.Data.Raw. We deliberately decode into our
// own types instead of the SDK's so API version drift in unused fields cannot
// break event handling.
type stripeCheckoutSession struct {
	ID           string            `json:"id"`
	Mode         string            `json:"mode"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type stripeSubscription struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	Metadata           map[string]string `json:"metadata"`
}

type stripeInvoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	Parent       struct {
		SubscriptionDetails struct {
			Subscription string `json:"subscription"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func (p *StripeProcessor) VerifyAndParseEvent(payload []byte, signature string) (*Event, error) {
	if strings.TrimSpace(signature) == "" {
		return nil, errors.New("missing webhook signature")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, p.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	out := &Event{
		Kind:    EventIgnored,
		EventID: event.ID,
		RawJSON: payload,
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripeCheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("decode checkout.session: %w", err)
		}
		if cs.Mode != "" && cs.Mode != "subscription" {
			return out, nil
		}
		out.Kind = EventCheckoutCompleted
		out.SubscriptionID = strings.TrimSpace(cs.Subscription)
		out.CustomerRef = strings.TrimSpace(cs.Customer)
		out.Status = StatusActive
		out.Metadata = parseCheckoutMetadata(cs.Metadata)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripeSubscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		if event.Type == "customer.subscription.deleted" {
			out.Kind = EventSubscriptionDeleted
		} else {
			out.Kind = EventSubscriptionUpdated
		}
		out.SubscriptionID = strings.TrimSpace(sub.ID)
		out.CustomerRef = strings.TrimSpace(sub.Customer)
		out.Status = MapSubscriptionStatus(sub.Status)
		out.PeriodStart = unixTime(sub.CurrentPeriodStart)
		out.PeriodEnd = unixTime(sub.CurrentPeriodEnd)

	case "invoice.payment_failed":
		var inv stripeInvoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		subID := strings.TrimSpace(inv.Subscription)
		if subID == "" {
			subID = strings.TrimSpace(inv.Parent.SubscriptionDetails.Subscription)
		}
		out.Kind = EventPaymentFailed
		out.SubscriptionID = subID
		out.CustomerRef = strings.TrimSpace(inv.Customer)
		out.Status = StatusPastDue
	}

	return out, nil
}

func (p *StripeProcessor) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("session id is required")
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	cs, err := session.Get(sessionID, params)
	if err != nil {
		return nil, err
	}

	out := &CheckoutSession{
		ID:       cs.ID,
		Complete: cs.Status == stripe.CheckoutSessionStatusComplete,
		Paid:     cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: parseCheckoutMetadata(cs.Metadata),
	}
	if cs.Subscription != nil {
		out.SubscriptionID = cs.Subscription.ID
	}
	return out, nil
}

func (p *StripeProcessor) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if strings.TrimSpace(subscriptionID) == "" {
		return errors.New("subscription id is required")
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	_, err := subscription.Cancel(subscriptionID, params)
	if err == nil {
		return nil
	}

	// A subscription that is gone or already canceled needs no further action.
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil
		}
		if stripeErr.HTTPStatusCode == 400 && strings.Contains(strings.ToLower(stripeErr.Msg), "canceled") {
			return nil
		}
	}
	return err
}

func parseCheckoutMetadata(m map[string]string) CheckoutMetadata {
	if m == nil {
		return CheckoutMetadata{}
	}

	pick := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(m[k]); v != "" {
				return v
			}
		}
		return ""
	}

	var userID uint
	if raw := pick("userId", "user_id"); raw != "" {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(n)
		}
	}

	return CheckoutMetadata{
		UserID:       userID,
		PlanID:       pick("planId", "plan_id"),
		BillingCycle: pick("billingCycle", "billing_cycle"),
		Location:     pick("location", "region"),
	}
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
