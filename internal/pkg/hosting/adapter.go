package hosting

import (
	"github.com/nimbushost/NimbusPanel/app/models"
)

// ServiceView is one entry of a user's canonical service list. Legacy marks
// entries synthesized from the pre multi-service user columns; writes to such
// an entry must go back through those columns, not the services table.
type ServiceView struct {
	models.Service
	Legacy bool
}

// ResolveServices produces the canonical service list for a user. A non-empty
// services table wins outright; the legacy singleton columns are only
// consulted when the table holds nothing for the user. This is a pure
// function, every component reads and writes service state through it so
// legacy-shaped accounts are indistinguishable from current ones.
func ResolveServices(user *models.User, services []models.Service) []ServiceView {
	if len(services) > 0 {
		views := make([]ServiceView, 0, len(services))
		for _, svc := range services {
			views = append(views, ServiceView{Service: svc})
		}
		return views
	}

	if user == nil || !user.HasLegacyService() {
		return nil
	}

	legacy := models.Service{
		UserID:                user.ID,
		PlanID:                user.LegacyPlanID,
		BillingCycle:          user.LegacyBillingCycle,
		Location:              user.LegacyLocation,
		SubscriptionStatus:    user.LegacySubscriptionStatus,
		ProvisioningStatus:    user.LegacyProvisioningStatus,
		BillingSubscriptionID: user.LegacyBillingSubscriptionID,
		ProviderInstanceID:    user.LegacyProviderInstanceID,
		IPAddress:             user.LegacyIPAddress,
		RootUser:              user.LegacyRootUser,
		RootPasswordEnc:       user.LegacyRootPasswordEnc,
		CurrentPeriodStart:    user.LegacyPeriodStart,
		CurrentPeriodEnd:      user.LegacyPeriodEnd,
	}
	if legacy.SubscriptionStatus == "" {
		legacy.SubscriptionStatus = models.SubscriptionStatusPending
	}
	if legacy.ProvisioningStatus == "" {
		legacy.ProvisioningStatus = models.ProvisioningStatusProvisioning
	}
	if user.LegacyServiceCreatedAt != nil {
		legacy.CreatedAt = *user.LegacyServiceCreatedAt
	}
	return []ServiceView{{Service: legacy, Legacy: true}}
}

// legacyFieldNames translates services-table column names to the suffix the
// user repository prefixes with legacy_. Only the period columns differ.
var legacyFieldNames = map[string]string{
	"current_period_start": "period_start",
	"current_period_end":   "period_end",
}

// writeServiceFields applies a field-scoped update to the view's backing
// store: the services table for current-schema entries, the user's legacy
// columns for synthesized ones.
func (e *Engine) writeServiceFields(view *ServiceView, fields map[string]any) error {
	if !view.Legacy {
		return e.services.UpdateFields(view.ID, fields)
	}

	translated := make(map[string]any, len(fields))
	for name, value := range fields {
		if mapped, ok := legacyFieldNames[name]; ok {
			name = mapped
		}
		translated[name] = value
	}
	return e.users.UpdateLegacyServiceFields(view.UserID, translated)
}
