package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionalBus_FlushDeliversAfterCommit(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan TipSettledEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeTipSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		tipEvent, ok := event.(TipSettledEvent)
		if !ok {
			t.Errorf("expected TipSettledEvent, got %T", event)
			return
		}
		received <- tipEvent
	})

	event := TipSettledEvent{
		Tipper: "alice",
		Tippee: "bob",
		Amount: decimal.RequireFromString("1.00"),
	}

	transactionalBus.Publish(event)

	// Nothing reaches the main bus before Flush
	select {
	case <-received:
		t.Fatal("event delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()

	select {
	case got := <-received:
		assert.Equal(t, "alice", got.Tipper)
		assert.Equal(t, "bob", got.Tippee)
		assert.True(t, got.Amount.Equal(decimal.RequireFromString("1.00")))
	default:
		t.Fatal("event was not delivered after flush")
	}
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeChargeFailed, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	transactionalBus.Publish(ChargeFailedEvent{ParticipantID: "carl", Reason: "Woah, crazy"})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-delivered:
		t.Fatal("discarded event was delivered")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_HandlerPanicIsContained(t *testing.T) {
	mainBus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)

	mainBus.Subscribe(EventTypePaydayFinished, func(ctx context.Context, event Event) {
		defer wg.Done()
		panic("handler bug")
	})

	survived := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypePaydayFinished, func(ctx context.Context, event Event) {
		defer wg.Done()
		survived <- struct{}{}
	})

	mainBus.Emit(context.Background(), PaydayFinishedEvent{PaydayID: 1})
	wg.Wait()

	select {
	case <-survived:
	default:
		t.Fatal("second handler did not run")
	}
}
