package service

import (
	"context"

	"github.com/shopspring/decimal"

	"tipjar/events"
	"tipjar/models"
)

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// GetByID retrieves a participant by their username
	GetByID(ctx context.Context, id string) (*models.Participant, error)

	// ListClaimed returns all participants who have claimed their account,
	// in arbitrary order
	ListClaimed(ctx context.Context) ([]*models.Participant, error)

	// ZeroPending resets every participant's pending accumulator to zero.
	// Safe to repeat; called at the start of every payday.
	ZeroPending(ctx context.Context) error

	// CreditBalance adds to a participant's spendable balance atomically
	CreditBalance(ctx context.Context, id string, amount decimal.Decimal) error

	// DebitBalance deducts from a participant's balance atomically. Returns
	// false without mutating anything when the balance is too low.
	DebitBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error)

	// CreditPending adds to a participant's pending accumulator atomically
	CreditPending(ctx context.Context, id string, amount decimal.Decimal) error

	// SetLastChargeResult records the outcome of the most recent processor
	// charge. Empty string means the charge succeeded.
	SetLastChargeResult(ctx context.Context, id string, result string) error

	// SetFundingAccount links or unlinks (nil) a processor funding source
	// and resets the last charge result
	SetFundingAccount(ctx context.Context, id string, fundingURI *string) error
}

// TipRepository defines the interface for tip data access
type TipRepository interface {
	// Create records a new tip pledge
	Create(ctx context.Context, tip *models.Tip) error

	// ActiveTipsAndTotal returns the newest positive tip per tippee that the
	// given participant gives, with the tippee's claim time joined in, plus
	// the total of those amounts
	ActiveTipsAndTotal(ctx context.Context, tipper string) ([]*models.Tip, decimal.Decimal, error)
}

// PaydayRepository defines the interface for payday run data access
type PaydayRepository interface {
	// GetOpen returns the payday currently in progress, or nil if none.
	// Returns ErrMultipleOpenPaydays if more than one open run exists.
	GetOpen(ctx context.Context) (*models.Payday, error)

	// GetByID retrieves a payday by its ID
	GetByID(ctx context.Context, id int64) (*models.Payday, error)

	// Create starts a new payday with zeroed counters
	Create(ctx context.Context) (*models.Payday, error)

	// IncrementCounters applies a counter delta atomically
	IncrementCounters(ctx context.Context, paydayID int64, delta models.PaydayCounters) error

	// Finalize stamps the payday's end time. Returns ErrAlreadyFinalized,
	// with no side effects, if the payday is already closed.
	Finalize(ctx context.Context, paydayID int64) error
}

// ExchangeRepository defines the interface for the processor movement ledger
type ExchangeRepository interface {
	// Record appends an exchange row
	Record(ctx context.Context, exchange *models.Exchange) error

	// GetByParticipant returns all exchanges for a participant, oldest first
	GetByParticipant(ctx context.Context, participantID string) ([]*models.Exchange, error)
}

// ProcessorGateway abstracts the external payment processor. Both calls
// return a non-empty decline message for ordinary business failures
// (insufficient funds, invalid funding reference); an error is returned
// only for transport or protocol faults.
type ProcessorGateway interface {
	// Charge pulls the given amount from a funding source
	Charge(ctx context.Context, fundingURI string, amount decimal.Decimal, participantID string) (declined string, err error)

	// Credit pushes the given amount to a payout destination
	Credit(ctx context.Context, fundingURI string, amount decimal.Decimal, participantID string) (declined string, err error)
}

// EventPublisher defines the interface for publishing events within a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to repositories
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction (no-op if already committed)
	Rollback() error

	// ParticipantRepository returns the participant repository for this unit of work
	ParticipantRepository() ParticipantRepository

	// TipRepository returns the tip repository for this unit of work
	TipRepository() TipRepository

	// PaydayRepository returns the payday repository for this unit of work
	PaydayRepository() PaydayRepository

	// ExchangeRepository returns the exchange repository for this unit of work
	ExchangeRepository() ExchangeRepository

	// EventBus returns the transactional event bus for this unit of work
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// PaydayService runs the settlement cycle
type PaydayService interface {
	// Run executes one payday: acquire or resume the open run, settle every
	// claimed participant, finalize. Returns the closed payday with its
	// final counters.
	Run(ctx context.Context) (*models.Payday, error)
}

// ParticipantService manages a participant's processor funding source
type ParticipantService interface {
	// AssociateFundingAccount links a funding source and clears any stale
	// charge result
	AssociateFundingAccount(ctx context.Context, participantID, fundingURI string) error

	// ClearFundingAccount unlinks the funding source
	ClearFundingAccount(ctx context.Context, participantID string) error
}
