package models

import (
	"time"
)

const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusTrialing = "trialing"
)

const (
	ProvisioningStatusProvisioning = "provisioning"
	ProvisioningStatusActive       = "active"
	ProvisioningStatusFailed       = "failed"
	ProvisioningStatusSuspended    = "suspended"
	ProvisioningStatusTerminated   = "terminated"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// Service is one provisioned VPS plus its billing subscription, owned by a user.
// BillingSubscriptionID is unique across all services of all users and is the
// idempotency anchor for creation: the insert is a conditional create-if-absent
// keyed on this column, never a plain insert.
type Service struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index" json:"user_id"`
	PlanID                string     `gorm:"type:varchar(50);not null" json:"plan_id"`
	BillingCycle          string     `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_cycle"`
	Location              string     `gorm:"type:varchar(50);not null" json:"location"`
	SubscriptionStatus    string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"subscription_status"`
	ProvisioningStatus    string     `gorm:"type:varchar(32);not null;default:'provisioning';index" json:"provisioning_status"`
	BillingSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_services_billing_subscription_id" json:"billing_subscription_id"`
	ProviderInstanceID    string     `gorm:"type:varchar(191);default:''" json:"provider_instance_id"`
	IPAddress             string     `gorm:"type:varchar(45);default:''" json:"ip_address"`
	RootUser              string     `gorm:"type:varchar(50);default:''" json:"root_user"`
	RootPasswordEnc       string     `gorm:"type:text" json:"-"`
	CurrentPeriodStart    *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd      *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsProvisioning reports whether the instance is still being built on the provider.
func (s *Service) IsProvisioning() bool {
	return s.ProvisioningStatus == ProvisioningStatusProvisioning
}

// IsTerminated reports whether the instance has been deliberately destroyed.
func (s *Service) IsTerminated() bool {
	return s.ProvisioningStatus == ProvisioningStatusTerminated
}

// CanAdvanceProvisioning reports whether moving the provisioning status from
// `from` to `to` follows the forward order. Termination is excluded here on
// purpose: only the cancellation flow may force terminated from any state.
func CanAdvanceProvisioning(from, to string) bool {
	switch from {
	case ProvisioningStatusProvisioning:
		return to == ProvisioningStatusActive || to == ProvisioningStatusFailed
	case ProvisioningStatusActive:
		return to == ProvisioningStatusSuspended || to == ProvisioningStatusTerminated
	case ProvisioningStatusSuspended:
		return to == ProvisioningStatusActive || to == ProvisioningStatusTerminated
	default:
		return false
	}
}

// NormalizeBillingCycle maps arbitrary cycle input to a known value.
func NormalizeBillingCycle(cycle string) string {
	switch cycle {
	case BillingCycleMonthly, BillingCycleYearly:
		return cycle
	case "month":
		return BillingCycleMonthly
	case "year", "annual":
		return BillingCycleYearly
	default:
		return BillingCycleMonthly
	}
}
