package hosting

import (
	"context"
	"log"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/internal/pkg/security"
)

// PollProvisioning advances any entry still building on the provider. It is
// invoked on user-state reads, not on a schedule, and only ever touches the
// provisioning detail fields. Failures are logged and swallowed, a stuck poll
// must never turn a state read into an error.
func (e *Engine) PollProvisioning(ctx context.Context, views []ServiceView) []ServiceView {
	for i := range views {
		view := &views[i]
		if !view.IsProvisioning() || view.ProviderInstanceID == "" {
			continue
		}
		if e.cooldown != nil && !e.cooldown.TryAcquire("poll:instance:"+view.ProviderInstanceID, e.pollCooldownTTL) {
			continue
		}

		status, err := e.gateway.FetchStatus(ctx, view.ProviderInstanceID)
		if err != nil {
			log.Printf("poll instance %s: %v", view.ProviderInstanceID, err)
			continue
		}
		if !status.Ready {
			continue
		}

		sealed, err := security.SealCredential(status.Password)
		if err != nil {
			log.Printf("poll instance %s: sealing credential: %v", view.ProviderInstanceID, err)
			continue
		}

		fields := map[string]any{
			"provisioning_status": models.ProvisioningStatusActive,
			"ip_address":          status.IPAddress,
			"root_user":           status.Username,
			"root_password_enc":   sealed,
		}
		if err := e.writeServiceFields(view, fields); err != nil {
			log.Printf("poll instance %s: persisting promotion: %v", view.ProviderInstanceID, err)
			continue
		}

		// Mirror the promotion into the returned view so the caller sees the
		// fresh state without a re-read.
		view.ProvisioningStatus = models.ProvisioningStatusActive
		view.IPAddress = status.IPAddress
		view.RootUser = status.Username
		view.RootPasswordEnc = sealed
	}
	return views
}

// UserState returns the canonical service list for a user after giving the
// poller a chance to promote entries that finished building.
func (e *Engine) UserState(ctx context.Context, userID uint) ([]ServiceView, error) {
	user, err := e.users.GetByID(userID)
	if err != nil || user == nil {
		return nil, ErrNotFound
	}
	rows, err := e.services.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	views := ResolveServices(user, rows)
	return e.PollProvisioning(ctx, views), nil
}
