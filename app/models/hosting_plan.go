package models

import (
	"strings"
	"time"
)

// HostingPlan maps an internal plan id to the payment processor price and the
// compute provider plan spec. Checkout metadata references plans by PlanID;
// the provisioning side reads ProviderPlanSpec when creating the instance.
type HostingPlan struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PlanID           string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"plan_id"`
	DisplayName      string    `gorm:"type:varchar(100);not null" json:"display_name"`
	ProcessorPriceID string    `gorm:"type:varchar(191);not null;default:''" json:"processor_price_id"`
	ProviderPlanSpec string    `gorm:"type:varchar(100);not null" json:"provider_plan_spec"`
	CPUCores         int       `gorm:"not null;default:1" json:"cpu_cores"`
	MemoryMB         int       `gorm:"not null;default:1024" json:"memory_mb"`
	DiskGB           int       `gorm:"not null;default:25" json:"disk_gb"`
	PriceCentsMonth  int       `gorm:"not null;default:0" json:"price_cents_month"`
	PriceCentsYear   int       `gorm:"not null;default:0" json:"price_cents_year"`
	Regions          string    `gorm:"type:varchar(255);not null;default:''" json:"regions"`
	IsActive         bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AllowsRegion reports whether the plan may be provisioned in the region.
// An empty region list means every region is allowed.
func (p *HostingPlan) AllowsRegion(region string) bool {
	if strings.TrimSpace(p.Regions) == "" {
		return true
	}
	region = strings.ToLower(strings.TrimSpace(region))
	for _, r := range strings.Split(p.Regions, ",") {
		if strings.ToLower(strings.TrimSpace(r)) == region {
			return true
		}
	}
	return false
}
