package mail

import (
	"fmt"
	"log"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/internal/pkg/database"
)

// ServiceNotifier implements the hosting engine's notifier on top of SendMail.
// Notifications honor per-user settings and are sent in a goroutine so the
// triggering request never waits on SMTP.
type ServiceNotifier struct{}

func NewServiceNotifier() *ServiceNotifier {
	return &ServiceNotifier{}
}

func (n *ServiceNotifier) ServiceProvisioned(user *models.User, svc *models.Service) {
	settings, err := models.GetOrCreateUserSettings(database.GetDB(), user.ID)
	if err == nil && !settings.NotifyOnProvision {
		return
	}

	to := recipient(user, settings)
	if to == "" {
		return
	}

	subject := "Your server is being set up"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s server in %s is being provisioned. "+
			"You will see the access details in your panel as soon as it is ready.</p>",
		user.Name, svc.PlanID, svc.Location,
	)
	go func() {
		if err := SendMail(to, subject, body); err != nil {
			log.Printf("provision notification to %s failed: %v", to, err)
		}
	}()
}

func (n *ServiceNotifier) ServiceCanceled(user *models.User, svc *models.Service) {
	settings, err := models.GetOrCreateUserSettings(database.GetDB(), user.ID)
	if err == nil && !settings.NotifyOnCancel {
		return
	}

	to := recipient(user, settings)
	if to == "" {
		return
	}

	subject := "Your service has been cancelled"
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your %s service has been cancelled and the server was scheduled for removal. "+
			"Billing for this subscription has stopped.</p>",
		user.Name, svc.PlanID,
	)
	go func() {
		if err := SendMail(to, subject, body); err != nil {
			log.Printf("cancel notification to %s failed: %v", to, err)
		}
	}()
}

func recipient(user *models.User, settings *models.UserSettings) string {
	if settings != nil && settings.NotifyEmail != "" {
		return settings.NotifyEmail
	}
	return user.Email
}
