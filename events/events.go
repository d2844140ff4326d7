package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeTipSettled       EventType = "tip_settled"
	EventTypeExchangeRecorded EventType = "exchange_recorded"
	EventTypeChargeFailed     EventType = "charge_failed"
	EventTypePaydayFinished   EventType = "payday_finished"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// TipSettledEvent represents a tip that moved from a tipper's balance to a
// tippee's pending accumulator
type TipSettledEvent struct {
	Tipper string
	Tippee string
	Amount decimal.Decimal
}

func (e TipSettledEvent) Type() EventType {
	return EventTypeTipSettled
}

// ExchangeRecordedEvent represents a completed processor money movement
type ExchangeRecordedEvent struct {
	ParticipantID string
	Amount        decimal.Decimal
	Fee           decimal.Decimal
}

func (e ExchangeRecordedEvent) Type() EventType {
	return EventTypeExchangeRecorded
}

// ChargeFailedEvent represents a processor charge that was declined
type ChargeFailedEvent struct {
	ParticipantID string
	Reason        string
}

func (e ChargeFailedEvent) Type() EventType {
	return EventTypeChargeFailed
}

// PaydayFinishedEvent represents a settlement run reaching its end
type PaydayFinishedEvent struct {
	PaydayID     int64
	StartedAt    time.Time
	Participants int
	Exchanges    int
}

func (e PaydayFinishedEvent) Type() EventType {
	return EventTypePaydayFinished
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make([]Handler, 0)
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type on main event bus")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking settlement
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// A transactional event bus for holding pending events coupled to the Unit of Work.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Use background context for event emission to avoid issues with
	// transaction context expiration
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after db rollback or to clear state.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
