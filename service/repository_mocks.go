package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"tipjar/events"
	"tipjar/models"
)

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) GetByID(ctx context.Context, id string) (*models.Participant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ListClaimed(ctx context.Context) ([]*models.Participant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Participant), args.Error(1)
}

func (m *MockParticipantRepository) ZeroPending(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockParticipantRepository) CreditBalance(ctx context.Context, id string, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockParticipantRepository) DebitBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockParticipantRepository) CreditPending(ctx context.Context, id string, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockParticipantRepository) SetLastChargeResult(ctx context.Context, id string, result string) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}

func (m *MockParticipantRepository) SetFundingAccount(ctx context.Context, id string, fundingURI *string) error {
	args := m.Called(ctx, id, fundingURI)
	return args.Error(0)
}

// MockTipRepository is a mock implementation of TipRepository
type MockTipRepository struct {
	mock.Mock
}

func (m *MockTipRepository) Create(ctx context.Context, tip *models.Tip) error {
	args := m.Called(ctx, tip)
	return args.Error(0)
}

func (m *MockTipRepository) ActiveTipsAndTotal(ctx context.Context, tipper string) ([]*models.Tip, decimal.Decimal, error) {
	args := m.Called(ctx, tipper)
	if args.Get(0) == nil {
		return nil, args.Get(1).(decimal.Decimal), args.Error(2)
	}
	return args.Get(0).([]*models.Tip), args.Get(1).(decimal.Decimal), args.Error(2)
}

// MockPaydayRepository is a mock implementation of PaydayRepository
type MockPaydayRepository struct {
	mock.Mock
}

func (m *MockPaydayRepository) GetOpen(ctx context.Context) (*models.Payday, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payday), args.Error(1)
}

func (m *MockPaydayRepository) GetByID(ctx context.Context, id int64) (*models.Payday, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payday), args.Error(1)
}

func (m *MockPaydayRepository) Create(ctx context.Context) (*models.Payday, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payday), args.Error(1)
}

func (m *MockPaydayRepository) IncrementCounters(ctx context.Context, paydayID int64, delta models.PaydayCounters) error {
	args := m.Called(ctx, paydayID, delta)
	return args.Error(0)
}

func (m *MockPaydayRepository) Finalize(ctx context.Context, paydayID int64) error {
	args := m.Called(ctx, paydayID)
	return args.Error(0)
}

// MockExchangeRepository is a mock implementation of ExchangeRepository
type MockExchangeRepository struct {
	mock.Mock
}

func (m *MockExchangeRepository) Record(ctx context.Context, exchange *models.Exchange) error {
	args := m.Called(ctx, exchange)
	return args.Error(0)
}

func (m *MockExchangeRepository) GetByParticipant(ctx context.Context, participantID string) ([]*models.Exchange, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Exchange), args.Error(1)
}

// MockProcessorGateway is a mock implementation of ProcessorGateway
type MockProcessorGateway struct {
	mock.Mock
}

func (m *MockProcessorGateway) Charge(ctx context.Context, fundingURI string, amount decimal.Decimal, participantID string) (string, error) {
	args := m.Called(ctx, fundingURI, amount, participantID)
	return args.String(0), args.Error(1)
}

func (m *MockProcessorGateway) Credit(ctx context.Context, fundingURI string, amount decimal.Decimal, participantID string) (string, error) {
	args := m.Called(ctx, fundingURI, amount, participantID)
	return args.String(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopEventPublisher swallows events for tests that don't assert on them
type noopEventPublisher struct{}

func (noopEventPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	participantRepo ParticipantRepository
	tipRepo         TipRepository
	paydayRepo      PaydayRepository
	exchangeRepo    ExchangeRepository
	eventPublisher  EventPublisher
}

// SetRepositories configures the repositories returned by this unit of work
func (m *MockUnitOfWork) SetRepositories(participants ParticipantRepository, tips TipRepository, paydays PaydayRepository, exchanges ExchangeRepository) {
	m.participantRepo = participants
	m.tipRepo = tips
	m.paydayRepo = paydays
	m.exchangeRepo = exchanges
}

// SetEventPublisher configures the event publisher returned by this unit of work
func (m *MockUnitOfWork) SetEventPublisher(publisher EventPublisher) {
	m.eventPublisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) ParticipantRepository() ParticipantRepository {
	return m.participantRepo
}

func (m *MockUnitOfWork) TipRepository() TipRepository {
	return m.tipRepo
}

func (m *MockUnitOfWork) PaydayRepository() PaydayRepository {
	return m.paydayRepo
}

func (m *MockUnitOfWork) ExchangeRepository() ExchangeRepository {
	return m.exchangeRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventPublisher == nil {
		return noopEventPublisher{}
	}
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
