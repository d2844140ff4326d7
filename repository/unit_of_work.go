package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tipjar/database"
	"tipjar/events"
	"tipjar/service"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	participantRepo  service.ParticipantRepository
	tipRepo          service.TipRepository
	paydayRepo       service.PaydayRepository
	exchangeRepo     service.ExchangeRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.participantRepo = newParticipantRepositoryWithTx(tx)
	u.tipRepo = newTipRepositoryWithTx(tx)
	u.paydayRepo = newPaydayRepositoryWithTx(tx)
	u.exchangeRepo = newExchangeRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// ParticipantRepository returns the participant repository for this unit of work
func (u *unitOfWork) ParticipantRepository() service.ParticipantRepository {
	if u.participantRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.participantRepo
}

// TipRepository returns the tip repository for this unit of work
func (u *unitOfWork) TipRepository() service.TipRepository {
	if u.tipRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tipRepo
}

// PaydayRepository returns the payday repository for this unit of work
func (u *unitOfWork) PaydayRepository() service.PaydayRepository {
	if u.paydayRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.paydayRepo
}

// ExchangeRepository returns the exchange repository for this unit of work
func (u *unitOfWork) ExchangeRepository() service.ExchangeRepository {
	if u.exchangeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.exchangeRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
