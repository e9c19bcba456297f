package repository

import (
	"github.com/nimbushost/NimbusPanel/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new hosting plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// GetActiveByPlanID retrieves an active plan by its internal plan id
func (r *planRepository) GetActiveByPlanID(planID string) (*models.HostingPlan, error) {
	var plan models.HostingPlan
	err := r.db.Where("plan_id = ? AND is_active = ?", planID, true).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByProcessorPriceID resolves a processor price reference to a plan
func (r *planRepository) GetByProcessorPriceID(priceID string) (*models.HostingPlan, error) {
	var plan models.HostingPlan
	err := r.db.Where("processor_price_id = ?", priceID).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListActive returns all plans available for purchase
func (r *planRepository) ListActive() ([]models.HostingPlan, error) {
	var plans []models.HostingPlan
	err := r.db.Where("is_active = ?", true).Order("price_cents_month ASC").Find(&plans).Error
	return plans, err
}

// Save creates or updates a plan
func (r *planRepository) Save(plan *models.HostingPlan) error {
	return r.db.Save(plan).Error
}
