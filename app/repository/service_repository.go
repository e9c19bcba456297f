package repository

import (
	"github.com/nimbushost/NimbusPanel/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// serviceRepository implements the ServiceRepository interface
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository instance
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// CreateIfAbsent inserts the service unless a row with the same
// billing_subscription_id already exists. The unique index resolves the race
// between concurrent callers; the row that won is always re-read and returned
// so callers can tell whose instance survived.
func (r *serviceRepository) CreateIfAbsent(svc *models.Service) (bool, *models.Service, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "billing_subscription_id"},
		},
		DoNothing: true,
	}).Create(svc)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.Service
	if err := r.db.Where("billing_subscription_id = ?", svc.BillingSubscriptionID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// GetByID retrieves a service by its ID
func (r *serviceRepository) GetByID(id uint) (*models.Service, error) {
	var svc models.Service
	err := r.db.First(&svc, id).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// GetByBillingSubscriptionID retrieves the service matching a processor subscription id
func (r *serviceRepository) GetByBillingSubscriptionID(subscriptionID string) (*models.Service, error) {
	var svc models.Service
	err := r.db.Where("billing_subscription_id = ?", subscriptionID).First(&svc).Error
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// ListByUserID returns all services owned by a user
func (r *serviceRepository) ListByUserID(userID uint) ([]models.Service, error) {
	var services []models.Service
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&services).Error
	return services, err
}

// UpdateFields applies a field-scoped update so concurrent writers touching
// disjoint fields never clobber each other.
func (r *serviceRepository) UpdateFields(id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.Service{}).Where("id = ?", id).Updates(fields).Error
}

// List returns services with pagination (admin listing)
func (r *serviceRepository) List(offset, limit int) ([]models.Service, error) {
	var services []models.Service
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&services).Error
	return services, err
}

// Count returns the total number of services
func (r *serviceRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Service{}).Count(&count).Error
	return count, err
}

// CountByProvisioningStatus counts services in a given provisioning state
func (r *serviceRepository) CountByProvisioningStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Service{}).Where("provisioning_status = ?", status).Count(&count).Error
	return count, err
}
