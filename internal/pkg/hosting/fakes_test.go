package hosting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nimbushost/NimbusPanel/app/models"
	"github.com/nimbushost/NimbusPanel/app/repository"
	"github.com/nimbushost/NimbusPanel/internal/pkg/payment"
	"github.com/nimbushost/NimbusPanel/internal/pkg/provision"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByActivationToken(string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByAPIKeyHash(string) (*models.User, *models.UserSettings, error) {
	return nil, nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByLegacySubscriptionID(subID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.LegacyBillingSubscriptionID == subID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateLegacyServiceFields(userID uint, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for name, value := range fields {
		switch name {
		case "subscription_status":
			u.LegacySubscriptionStatus = value.(string)
		case "provisioning_status":
			u.LegacyProvisioningStatus = value.(string)
		case "ip_address":
			u.LegacyIPAddress = value.(string)
		case "root_user":
			u.LegacyRootUser = value.(string)
		case "root_password_enc":
			u.LegacyRootPasswordEnc = value.(string)
		case "period_start":
			u.LegacyPeriodStart = value.(*time.Time)
		case "period_end":
			u.LegacyPeriodEnd = value.(*time.Time)
		default:
			return fmt.Errorf("fakeUserRepo: unexpected legacy field %q", name)
		}
	}
	return nil
}

func (r *fakeUserRepo) List(int, int) ([]models.User, error) { return nil, nil }
func (r *fakeUserRepo) Count() (int64, error)                { return int64(len(r.users)), nil }

type fakeServiceRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Service
}

func newFakeServiceRepo(rows ...*models.Service) *fakeServiceRepo {
	r := &fakeServiceRepo{rows: make(map[uint]*models.Service), nextID: 1}
	for _, row := range rows {
		if row.ID == 0 {
			row.ID = r.nextID
		}
		if row.ID >= r.nextID {
			r.nextID = row.ID + 1
		}
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakeServiceRepo) CreateIfAbsent(svc *models.Service) (bool, *models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.BillingSubscriptionID == svc.BillingSubscriptionID {
			cp := *row
			return false, &cp, nil
		}
	}
	cp := *svc
	cp.ID = r.nextID
	cp.CreatedAt = time.Now()
	r.nextID++
	r.rows[cp.ID] = &cp
	out := cp
	return true, &out, nil
}

func (r *fakeServiceRepo) GetByID(id uint) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeServiceRepo) GetByBillingSubscriptionID(subID string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.BillingSubscriptionID == subID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeServiceRepo) ListByUserID(userID uint) ([]models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Service
	for _, row := range r.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) UpdateFields(id uint, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for name, value := range fields {
		switch name {
		case "subscription_status":
			row.SubscriptionStatus = value.(string)
		case "provisioning_status":
			row.ProvisioningStatus = value.(string)
		case "ip_address":
			row.IPAddress = value.(string)
		case "root_user":
			row.RootUser = value.(string)
		case "root_password_enc":
			row.RootPasswordEnc = value.(string)
		case "current_period_start":
			row.CurrentPeriodStart = value.(*time.Time)
		case "current_period_end":
			row.CurrentPeriodEnd = value.(*time.Time)
		default:
			return fmt.Errorf("fakeServiceRepo: unexpected field %q", name)
		}
	}
	return nil
}

func (r *fakeServiceRepo) List(int, int) ([]models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Service
	for _, row := range r.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *fakeServiceRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func (r *fakeServiceRepo) CountByProvisioningStatus(status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.ProvisioningStatus == status {
			n++
		}
	}
	return n, nil
}

type fakePlanRepo struct {
	plans map[string]*models.HostingPlan
}

func (r *fakePlanRepo) GetActiveByPlanID(planID string) (*models.HostingPlan, error) {
	if r.plans == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if p, ok := r.plans[planID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePlanRepo) GetByProcessorPriceID(string) (*models.HostingPlan, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePlanRepo) ListActive() ([]models.HostingPlan, error) { return nil, nil }
func (r *fakePlanRepo) Save(*models.HostingPlan) error            { return nil }

type fakeTicketRepo struct {
	mu       sync.Mutex
	tickets  map[uint]*models.SupportTicket
	messages []models.TicketMessage
}

func newFakeTicketRepo(tickets ...*models.SupportTicket) *fakeTicketRepo {
	r := &fakeTicketRepo{tickets: make(map[uint]*models.SupportTicket)}
	for _, t := range tickets {
		r.tickets[t.ID] = t
	}
	return r
}

func (r *fakeTicketRepo) Create(t *models.SupportTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[t.ID] = t
	return nil
}

func (r *fakeTicketRepo) GetByID(id uint) (*models.SupportTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickets[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTicketRepo) GetByIDForUser(id, userID uint) (*models.SupportTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickets[id]; ok && t.UserID == userID {
		cp := *t
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTicketRepo) AppendMessage(ticketID uint, author, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, models.TicketMessage{TicketID: ticketID, Author: author, Body: body})
	return nil
}

func (r *fakeTicketRepo) Close(ticketID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = models.TicketStatusClosed
	now := time.Now()
	t.ClosedAt = &now
	return nil
}

func (r *fakeTicketRepo) ListMessages(ticketID uint) ([]models.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TicketMessage
	for _, m := range r.messages {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeEventRepo struct{}

func (fakeEventRepo) CreateIfNotExists(ev *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	return true, ev, nil
}
func (fakeEventRepo) MarkProcessed(uint, string) error { return nil }
func (fakeEventRepo) GetByProviderEventID(string, string) (*models.PaymentWebhookEvent, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeGateway struct {
	mu           sync.Mutex
	createCount  int
	fetchCount   int
	deleted      []string
	createErr    error
	deleteErr    error
	statusErr    error
	ready        bool
	readyAddress string
	readyUser    string
	readyPass    string
	lastSpec     provision.InstanceSpec
}

func (g *fakeGateway) Create(_ context.Context, spec provision.InstanceSpec) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.createCount++
	g.lastSpec = spec
	return fmt.Sprintf("inst_%d", g.createCount), nil
}

func (g *fakeGateway) FetchStatus(context.Context, string) (*provision.InstanceStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCount++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	if !g.ready {
		return &provision.InstanceStatus{Ready: false}, nil
	}
	return &provision.InstanceStatus{
		Ready:     true,
		IPAddress: g.readyAddress,
		Username:  g.readyUser,
		Password:  g.readyPass,
	}, nil
}

func (g *fakeGateway) Delete(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deleteErr != nil {
		return false, g.deleteErr
	}
	g.deleted = append(g.deleted, id)
	return true, nil
}

type fakeProcessor struct {
	mu        sync.Mutex
	sessions  map[string]*payment.CheckoutSession
	cancelErr error
	canceled  []string
}

func (p *fakeProcessor) VerifyAndParseEvent([]byte, string) (*payment.Event, error) {
	return nil, fmt.Errorf("not used in engine tests")
}

func (p *fakeProcessor) GetCheckoutSession(_ context.Context, id string) (*payment.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no such session %s", id)
}

func (p *fakeProcessor) CancelSubscription(_ context.Context, subID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelErr != nil {
		return p.cancelErr
	}
	p.canceled = append(p.canceled, subID)
	return nil
}

type fakeCooldown struct{ allow bool }

func (c fakeCooldown) TryAcquire(string, time.Duration) bool { return c.allow }

type engineFixture struct {
	engine    *Engine
	users     *fakeUserRepo
	services  *fakeServiceRepo
	plans     *fakePlanRepo
	tickets   *fakeTicketRepo
	gateway   *fakeGateway
	processor *fakeProcessor
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		users:     newFakeUserRepo(&models.User{ID: 1, Name: "alice", Email: "alice@example.com", Status: models.STATUS_ACTIVE}),
		services:  newFakeServiceRepo(),
		plans:     &fakePlanRepo{},
		tickets:   newFakeTicketRepo(),
		gateway:   &fakeGateway{},
		processor: &fakeProcessor{sessions: make(map[string]*payment.CheckoutSession)},
	}
	repos := &repository.Repositories{
		User:         f.users,
		Service:      f.services,
		Plan:         f.plans,
		Ticket:       f.tickets,
		WebhookEvent: fakeEventRepo{},
	}
	f.engine = NewEngine(repos, f.gateway, f.processor, nil, nil)
	return f
}
