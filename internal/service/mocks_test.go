package service_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/entities"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/events"
	"github.com/Mazen-Mokhtar/logen-store-sub001/internal/gateway"
	"github.com/Mazen-Mokhtar/logen-store-sub001/pkg/trm"

	"github.com/stretchr/testify/mock"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, o entities.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) AttachPayment(ctx context.Context, orderID, token string, metadata entities.Metadata) error {
	return m.Called(ctx, orderID, token, metadata).Error(0)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderID string, status entities.OrderStatus, metadata entities.Metadata) error {
	return m.Called(ctx, orderID, status, metadata).Error(0)
}

func (m *mockOrderRepo) GetOrderByID(ctx context.Context, orderID string) (entities.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderRepo) GetOrderByIdempotencyKey(ctx context.Context, key string) (entities.Order, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderRepo) GetOrderByPaymentToken(ctx context.Context, token string) (entities.Order, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(entities.Order), args.Error(1)
}

func (m *mockOrderRepo) LatestOrders(ctx context.Context, count int) ([]entities.Order, error) {
	args := m.Called(ctx, count)
	return args.Get(0).([]entities.Order), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetGuestByEmail(ctx context.Context, email string) (entities.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(entities.User), args.Error(1)
}

func (m *mockUserRepo) GetRegisteredByEmail(ctx context.Context, email string) (entities.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(entities.User), args.Error(1)
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u entities.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) UpdateGuestContact(ctx context.Context, userID, firstName, lastName, phone string) error {
	return m.Called(ctx, userID, firstName, lastName, phone).Error(0)
}

// fakeTxManager runs callbacks inline; the transactional machinery itself
// is covered by trm.
type fakeTxManager struct {
	beginErr error
}

func (f fakeTxManager) BeginTx(ctx context.Context, _ *sql.TxOptions) (context.Context, trm.Transaction, error) {
	return ctx, nil, errors.New("not supported in tests")
}

func (f fakeTxManager) Do(ctx context.Context, cb func(ctx context.Context) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return cb(ctx)
}

type fakeGateway struct {
	name        entities.PaymentGateway
	intent      gateway.Intent
	intentErr   error
	intentCalls int

	notification gateway.Notification
	parseErr     error
}

func (g *fakeGateway) Name() entities.PaymentGateway {
	return g.name
}

func (g *fakeGateway) CreateIntent(ctx context.Context, req gateway.IntentRequest) (gateway.Intent, error) {
	g.intentCalls++
	if g.intentErr != nil {
		return gateway.Intent{}, g.intentErr
	}
	return g.intent, nil
}

func (g *fakeGateway) ParseNotification(payload []byte, signature string) (gateway.Notification, error) {
	if g.parseErr != nil {
		return gateway.Notification{}, g.parseErr
	}
	return g.notification, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *capturePublisher) Publish(ctx context.Context, event events.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) published() []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.OrderEvent(nil), p.events...)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *fakeCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes = append(c.deletes, key)
}
