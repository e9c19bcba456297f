package hosting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/internal/pkg/env"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
	"github.com/nimbushost/NimbusPanel/internal/pkg/provision"
	"github.com/nimbushost/NimbusPanel/internal/pkg/security"
)

func TestMain(m *testing.M) {
	env.Env = map[string]string{"CREDENTIAL_SECRET": "engine-test-secret"}
	m.Run()
}

func TestProvisionCreatesService(t *testing.T) {
	f := newEngineFixture()

	svc, err := f.engine.Provision(context.Background(), ProvisionInput{
		UserID:                1,
		BillingSubscriptionID: "sub_1",
		PlanID:                "vps-starter",
		BillingCycle:          "monthly",
		Location:              "fra",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_1", svc.BillingSubscriptionID)
	assert.Equal(t, "inst_1", svc.ProviderInstanceID)
	assert.Equal(t, models.ProvisioningStatusProvisioning, svc.ProvisioningStatus)
	assert.Equal(t, models.SubscriptionStatusActive, svc.SubscriptionStatus)

	count, _ := f.services.Count()
	assert.Equal(t, int64(1), count)
}

func TestProvisionIsIdempotent(t *testing.T) {
	f := newEngineFixture()
	in := ProvisionInput{UserID: 1, BillingSubscriptionID: "sub_1", PlanID: "vps-starter"}

	first, err := f.engine.Provision(context.Background(), in)
	require.NoError(t, err)
	second, err := f.engine.Provision(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ProviderInstanceID, second.ProviderInstanceID)
	assert.Equal(t, 1, f.gateway.createCount)

	count, _ := f.services.Count()
	assert.Equal(t, int64(1), count)
}

func TestProvisionRaceYieldsOneService(t *testing.T) {
	f := newEngineFixture()
	f.processor.sessions["cs_1"] = &payment.CheckoutSession{
		ID:             "cs_1",
		SubscriptionID: "sub_race",
		Complete:       true,
		Paid:           true,
		Metadata:       payment.CheckoutMetadata{UserID: 1, PlanID: "vps-starter"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		viaVerify := i%2 == 0
		go func() {
			defer wg.Done()
			if viaVerify {
				_, _ = f.engine.VerifyCheckoutSession(context.Background(), 1, "cs_1")
			} else {
				_, _ = f.engine.Provision(context.Background(), ProvisionInput{
					UserID: 1, BillingSubscriptionID: "sub_race", PlanID: "vps-starter",
				})
			}
		}()
	}
	wg.Wait()

	count, _ := f.services.Count()
	assert.Equal(t, int64(1), count)

	// Every losing create was torn down again, only the winner's instance
	// survives on the provider.
	stored, err := f.services.GetByBillingSubscriptionID("sub_race")
	require.NoError(t, err)
	f.gateway.mu.Lock()
	defer f.gateway.mu.Unlock()
	assert.Len(t, f.gateway.deleted, f.gateway.createCount-1)
	assert.NotContains(t, f.gateway.deleted, stored.ProviderInstanceID)
}

func TestProvisionFatalProviderErrorRecordsFailure(t *testing.T) {
	f := newEngineFixture()
	f.gateway.createErr = &provision.ProviderError{Op: "create", Status: 400, Message: "invalid plan"}

	svc, err := f.engine.Provision(context.Background(), ProvisionInput{
		UserID: 1, BillingSubscriptionID: "sub_bad", PlanID: "no-such-plan",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProvisioningStatusFailed, svc.ProvisioningStatus)
	assert.Empty(t, svc.ProviderInstanceID)

	// The record exists so the paid subscription is visible for follow-up.
	count, _ := f.services.Count()
	assert.Equal(t, int64(1), count)
}

func TestProvisionTransientProviderErrorWritesNothing(t *testing.T) {
	f := newEngineFixture()
	f.gateway.createErr = &provision.ProviderError{Op: "create", Status: 503, Transient: true, Message: "try later"}

	_, err := f.engine.Provision(context.Background(), ProvisionInput{
		UserID: 1, BillingSubscriptionID: "sub_retry", PlanID: "vps-starter",
	})
	require.Error(t, err)

	count, _ := f.services.Count()
	assert.Equal(t, int64(0), count)
}

func TestProvisionUsesPlanCatalogSpec(t *testing.T) {
	f := newEngineFixture()
	f.plans.plans = map[string]*models.HostingPlan{
		"vps-starter": {PlanID: "vps-starter", ProviderPlanSpec: "vc2-1c-2gb", Regions: "fra,nyc", IsActive: true},
	}

	_, err := f.engine.Provision(context.Background(), ProvisionInput{
		UserID: 1, BillingSubscriptionID: "sub_plan", PlanID: "vps-starter", Location: "fra",
	})
	require.NoError(t, err)
	assert.Equal(t, "vc2-1c-2gb", f.gateway.lastSpec.PlanSpec)
	assert.Equal(t, "fra", f.gateway.lastSpec.Region)
}

func TestHandleEventCheckoutCompleted(t *testing.T) {
	f := newEngineFixture()

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventCheckoutCompleted,
		EventID:        "evt_1",
		SubscriptionID: "sub_1",
		Metadata:       payment.CheckoutMetadata{UserID: 1, PlanID: "vps-starter", BillingCycle: "monthly", Location: "fra"},
	})
	require.NoError(t, err)

	svc, err := f.services.GetByBillingSubscriptionID("sub_1")
	require.NoError(t, err)
	assert.Equal(t, models.ProvisioningStatusProvisioning, svc.ProvisioningStatus)
	assert.Equal(t, "inst_1", svc.ProviderInstanceID)
	assert.Equal(t, models.SubscriptionStatusActive, svc.SubscriptionStatus)
}

func TestHandleEventCheckoutMissingMetadata(t *testing.T) {
	f := newEngineFixture()

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventCheckoutCompleted,
		SubscriptionID: "sub_1",
	})
	require.ErrorIs(t, err, ErrValidation)

	err = f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:     payment.EventCheckoutCompleted,
		Metadata: payment.CheckoutMetadata{UserID: 1},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestHandleEventSubscriptionUpdated(t *testing.T) {
	f := newEngineFixture()
	_, err := f.engine.Provision(context.Background(), ProvisionInput{UserID: 1, BillingSubscriptionID: "sub_1", PlanID: "p"})
	require.NoError(t, err)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	err = f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventSubscriptionUpdated,
		SubscriptionID: "sub_1",
		Status:         models.SubscriptionStatusPastDue,
		PeriodStart:    &start,
		PeriodEnd:      &end,
	})
	require.NoError(t, err)

	svc, _ := f.services.GetByBillingSubscriptionID("sub_1")
	assert.Equal(t, models.SubscriptionStatusPastDue, svc.SubscriptionStatus)
	require.NotNil(t, svc.CurrentPeriodStart)
	assert.True(t, svc.CurrentPeriodStart.Equal(start))
	// Provisioning fields stay untouched by billing sync.
	assert.Equal(t, models.ProvisioningStatusProvisioning, svc.ProvisioningStatus)
}

func TestHandleEventSubscriptionDeletedSuspends(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		SubscriptionStatus: models.SubscriptionStatusActive,
		ProvisioningStatus: models.ProvisioningStatusActive,
		ProviderInstanceID: "inst_1",
	}

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventSubscriptionDeleted,
		SubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	svc, _ := f.services.GetByID(1)
	assert.Equal(t, models.SubscriptionStatusCanceled, svc.SubscriptionStatus)
	assert.Equal(t, models.ProvisioningStatusSuspended, svc.ProvisioningStatus)
	// The instance is not destroyed by a processor event.
	assert.Empty(t, f.gateway.deleted)
}

func TestHandleEventSubscriptionDeletedNeverDowngradesTerminated(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		SubscriptionStatus: models.SubscriptionStatusCanceled,
		ProvisioningStatus: models.ProvisioningStatusTerminated,
	}

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventSubscriptionDeleted,
		SubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	svc, _ := f.services.GetByID(1)
	assert.Equal(t, models.ProvisioningStatusTerminated, svc.ProvisioningStatus)
}

func TestHandleEventPaymentFailed(t *testing.T) {
	f := newEngineFixture()
	_, err := f.engine.Provision(context.Background(), ProvisionInput{UserID: 1, BillingSubscriptionID: "sub_1", PlanID: "p"})
	require.NoError(t, err)

	err = f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventPaymentFailed,
		SubscriptionID: "sub_1",
	})
	require.NoError(t, err)

	svc, _ := f.services.GetByBillingSubscriptionID("sub_1")
	assert.Equal(t, models.SubscriptionStatusPastDue, svc.SubscriptionStatus)
}

func TestHandleEventUnknownSubscription(t *testing.T) {
	f := newEngineFixture()

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventSubscriptionUpdated,
		SubscriptionID: "sub_ghost",
		Status:         models.SubscriptionStatusActive,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHandleEventIgnoredKind(t *testing.T) {
	f := newEngineFixture()
	err := f.engine.HandleEvent(context.Background(), &payment.Event{Kind: payment.EventIgnored, EventID: "evt_x"})
	require.NoError(t, err)
}

func TestHandleEventLegacySubscriptionUpdate(t *testing.T) {
	f := newEngineFixture()
	f.users.users[2] = &models.User{
		ID: 2, Name: "bob", Status: models.STATUS_ACTIVE,
		LegacyPlanID:                "vps-classic",
		LegacyBillingSubscriptionID: "sub_legacy",
		LegacySubscriptionStatus:    models.SubscriptionStatusActive,
		LegacyProvisioningStatus:    models.ProvisioningStatusActive,
	}

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventSubscriptionUpdated,
		SubscriptionID: "sub_legacy",
		Status:         models.SubscriptionStatusPastDue,
	})
	require.NoError(t, err)

	u, _ := f.users.GetByID(2)
	assert.Equal(t, models.SubscriptionStatusPastDue, u.LegacySubscriptionStatus)
	// The services table stays empty, the write went to the legacy columns.
	count, _ := f.services.Count()
	assert.Equal(t, int64(0), count)
}

func TestVerifyCheckoutAfterEventIntake(t *testing.T) {
	f := newEngineFixture()
	f.processor.sessions["cs_1"] = &payment.CheckoutSession{
		ID: "cs_1", SubscriptionID: "sub_1", Complete: true, Paid: true,
		Metadata: payment.CheckoutMetadata{UserID: 1, PlanID: "vps-starter"},
	}

	err := f.engine.HandleEvent(context.Background(), &payment.Event{
		Kind:           payment.EventCheckoutCompleted,
		SubscriptionID: "sub_1",
		Metadata:       payment.CheckoutMetadata{UserID: 1, PlanID: "vps-starter"},
	})
	require.NoError(t, err)

	res, err := f.engine.VerifyCheckoutSession(context.Background(), 1, "cs_1")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "inst_1", res.InstanceID)

	count, _ := f.services.Count()
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, f.gateway.createCount)
}

func TestVerifyCheckoutPendingPayment(t *testing.T) {
	f := newEngineFixture()
	f.processor.sessions["cs_1"] = &payment.CheckoutSession{
		ID: "cs_1", SubscriptionID: "sub_1", Complete: true, Paid: false,
		Metadata: payment.CheckoutMetadata{UserID: 1},
	}

	res, err := f.engine.VerifyCheckoutSession(context.Background(), 1, "cs_1")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Pending)

	count, _ := f.services.Count()
	assert.Equal(t, int64(0), count)
}

func TestVerifyCheckoutForeignSessionRejected(t *testing.T) {
	f := newEngineFixture()
	f.processor.sessions["cs_1"] = &payment.CheckoutSession{
		ID: "cs_1", SubscriptionID: "sub_1", Complete: true, Paid: true,
		Metadata: payment.CheckoutMetadata{UserID: 99},
	}

	_, err := f.engine.VerifyCheckoutSession(context.Background(), 1, "cs_1")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestVerifyCheckoutUnknownSession(t *testing.T) {
	f := newEngineFixture()
	_, err := f.engine.VerifyCheckoutSession(context.Background(), 1, "cs_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPollerLeavesUnreadyServiceUntouched(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		ProvisioningStatus: models.ProvisioningStatusProvisioning,
		ProviderInstanceID: "inst_1",
	}
	f.gateway.ready = false

	views, err := f.engine.UserState(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.ProvisioningStatusProvisioning, views[0].ProvisioningStatus)
	assert.Empty(t, views[0].IPAddress)
	assert.Equal(t, 1, f.gateway.fetchCount)
}

func TestPollerPromotesReadyService(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		ProvisioningStatus: models.ProvisioningStatusProvisioning,
		ProviderInstanceID: "inst_1",
	}
	f.gateway.ready = true
	f.gateway.readyAddress = "1.2.3.4"
	f.gateway.readyUser = "root"
	f.gateway.readyPass = "hunter2"

	views, err := f.engine.UserState(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.ProvisioningStatusActive, views[0].ProvisioningStatus)
	assert.Equal(t, "1.2.3.4", views[0].IPAddress)
	assert.Equal(t, "root", views[0].RootUser)

	// Stored row was promoted too, with the credential sealed at rest.
	stored, _ := f.services.GetByID(1)
	assert.Equal(t, models.ProvisioningStatusActive, stored.ProvisioningStatus)
	plain, err := security.OpenCredential(stored.RootPasswordEnc)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)
}

func TestPollerSkipsActiveService(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		ProvisioningStatus: models.ProvisioningStatusActive,
		ProviderInstanceID: "inst_1", IPAddress: "1.2.3.4",
	}

	_, err := f.engine.UserState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.fetchCount)
}

func TestPollerSwallowsGatewayErrors(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		ProvisioningStatus: models.ProvisioningStatusProvisioning,
		ProviderInstanceID: "inst_1",
	}
	f.gateway.statusErr = errors.New("provider down")

	views, err := f.engine.UserState(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.ProvisioningStatusProvisioning, views[0].ProvisioningStatus)
}

func TestPollerHonorsCooldown(t *testing.T) {
	f := newEngineFixture()
	f.engine.cooldown = fakeCooldown{allow: false}
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		ProvisioningStatus: models.ProvisioningStatusProvisioning,
		ProviderInstanceID: "inst_1",
	}
	f.gateway.ready = true

	_, err := f.engine.UserState(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gateway.fetchCount)
}

func TestPollerPromotesLegacyService(t *testing.T) {
	f := newEngineFixture()
	f.users.users[2] = &models.User{
		ID: 2, Name: "bob", Status: models.STATUS_ACTIVE,
		LegacyPlanID:                "vps-classic",
		LegacyBillingSubscriptionID: "sub_legacy",
		LegacyProvisioningStatus:    models.ProvisioningStatusProvisioning,
		LegacyProviderInstanceID:    "inst_old",
	}
	f.gateway.ready = true
	f.gateway.readyAddress = "5.6.7.8"
	f.gateway.readyUser = "root"
	f.gateway.readyPass = "pw"

	views, err := f.engine.UserState(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Legacy)
	assert.Equal(t, models.ProvisioningStatusActive, views[0].ProvisioningStatus)

	u, _ := f.users.GetByID(2)
	assert.Equal(t, models.ProvisioningStatusActive, u.LegacyProvisioningStatus)
	assert.Equal(t, "5.6.7.8", u.LegacyIPAddress)
}

func TestCancelFullSuccess(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		SubscriptionStatus: models.SubscriptionStatusActive,
		ProvisioningStatus: models.ProvisioningStatusActive,
		ProviderInstanceID: "inst_1",
	}

	res, err := f.engine.Cancel(context.Background(), CancelInput{UserID: 1, ServiceID: 1})
	require.NoError(t, err)
	assert.Equal(t, &CancelResult{BillingCancel: true, InstanceDelete: true, RecordUpdate: true}, res)

	svc, _ := f.services.GetByID(1)
	assert.Equal(t, models.SubscriptionStatusCanceled, svc.SubscriptionStatus)
	assert.Equal(t, models.ProvisioningStatusTerminated, svc.ProvisioningStatus)
	assert.Contains(t, f.processor.canceled, "sub_1")
	assert.Contains(t, f.gateway.deleted, "inst_1")
}

func TestCancelRecordsTerminationDespiteDeleteFailure(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		SubscriptionStatus: models.SubscriptionStatusActive,
		ProvisioningStatus: models.ProvisioningStatusActive,
		ProviderInstanceID: "inst_1",
	}
	f.tickets.tickets[7] = &models.SupportTicket{ID: 7, UserID: 1, Subject: "please cancel", Status: models.TicketStatusOpen}
	f.gateway.deleteErr = errors.New("provider exploded")

	res, err := f.engine.Cancel(context.Background(), CancelInput{UserID: 1, ServiceID: 1, TicketID: 7, Reason: "user request"})
	require.NoError(t, err)
	assert.True(t, res.BillingCancel)
	assert.False(t, res.InstanceDelete)
	assert.True(t, res.RecordUpdate)
	assert.True(t, res.SupportClosed)

	svc, _ := f.services.GetByID(1)
	assert.Equal(t, models.ProvisioningStatusTerminated, svc.ProvisioningStatus)
	assert.Equal(t, models.SubscriptionStatusCanceled, svc.SubscriptionStatus)

	ticket, _ := f.tickets.GetByID(7)
	assert.Equal(t, models.TicketStatusClosed, ticket.Status)
	msgs, _ := f.tickets.ListMessages(7)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "Instance delete: FAILED")
	assert.Contains(t, msgs[0].Body, "user request")
}

func TestCancelBillingFailureDoesNotAbortRest(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{
		ID: 1, UserID: 1, BillingSubscriptionID: "sub_1",
		ProvisioningStatus: models.ProvisioningStatusActive,
		ProviderInstanceID: "inst_1",
	}
	f.processor.cancelErr = errors.New("processor down")

	res, err := f.engine.Cancel(context.Background(), CancelInput{UserID: 1, ServiceID: 1})
	require.NoError(t, err)
	assert.False(t, res.BillingCancel)
	assert.True(t, res.InstanceDelete)
	assert.True(t, res.RecordUpdate)

	svc, _ := f.services.GetByID(1)
	assert.Equal(t, models.ProvisioningStatusTerminated, svc.ProvisioningStatus)
}

func TestCancelLegacyServiceWritesBackToUser(t *testing.T) {
	f := newEngineFixture()
	f.users.users[2] = &models.User{
		ID: 2, Name: "bob", Status: models.STATUS_ACTIVE,
		LegacyPlanID:                "vps-classic",
		LegacyBillingSubscriptionID: "sub_legacy",
		LegacyProvisioningStatus:    models.ProvisioningStatusActive,
		LegacyProviderInstanceID:    "inst_old",
	}

	res, err := f.engine.Cancel(context.Background(), CancelInput{UserID: 2})
	require.NoError(t, err)
	assert.True(t, res.BillingCancel)
	assert.True(t, res.InstanceDelete)
	assert.True(t, res.RecordUpdate)

	u, _ := f.users.GetByID(2)
	assert.Equal(t, models.SubscriptionStatusCanceled, u.LegacySubscriptionStatus)
	assert.Equal(t, models.ProvisioningStatusTerminated, u.LegacyProvisioningStatus)
	assert.Contains(t, f.processor.canceled, "sub_legacy")
	assert.Contains(t, f.gateway.deleted, "inst_old")
}

func TestCancelRejectsForeignService(t *testing.T) {
	f := newEngineFixture()
	f.services.rows[1] = &models.Service{ID: 1, UserID: 42, BillingSubscriptionID: "sub_1"}

	_, err := f.engine.Cancel(context.Background(), CancelInput{UserID: 1, ServiceID: 1})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveServicesTableWins(t *testing.T) {
	user := &models.User{ID: 1, LegacyPlanID: "vps-classic", LegacyBillingSubscriptionID: "sub_old"}
	rows := []models.Service{
		{ID: 5, UserID: 1, BillingSubscriptionID: "sub_new"},
	}

	views := ResolveServices(user, rows)
	require.Len(t, views, 1)
	assert.False(t, views[0].Legacy)
	assert.Equal(t, "sub_new", views[0].BillingSubscriptionID)
}

func TestResolveServicesSynthesizesLegacy(t *testing.T) {
	created := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		ID:                          1,
		LegacyPlanID:                "vps-classic",
		LegacyBillingCycle:          "monthly",
		LegacyLocation:              "fra",
		LegacyBillingSubscriptionID: "sub_old",
		LegacyProviderInstanceID:    "inst_old",
		LegacySubscriptionStatus:    models.SubscriptionStatusActive,
		LegacyProvisioningStatus:    models.ProvisioningStatusActive,
		LegacyServiceCreatedAt:      &created,
	}

	views := ResolveServices(user, nil)
	require.Len(t, views, 1)
	assert.True(t, views[0].Legacy)
	assert.Equal(t, "vps-classic", views[0].PlanID)
	assert.Equal(t, "sub_old", views[0].BillingSubscriptionID)
	assert.True(t, views[0].CreatedAt.Equal(created))
}

func TestResolveServicesEmpty(t *testing.T) {
	assert.Nil(t, ResolveServices(&models.User{ID: 1}, nil))
	assert.Nil(t, ResolveServices(nil, nil))
}
