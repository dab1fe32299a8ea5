package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/treviro/treviro_service/pkg/logger"
)

func newTestBus() *Bus {
	return NewBus(logger.NewNop())
}

func TestBus_PublishDeliversToAllSubscribers(t *testing.T) {
	bus := newTestBus()
	userID := uuid.New()

	var delivered int64
	for i := 0; i < 3; i++ {
		bus.Subscribe(IncomeAdded, func(ctx context.Context, evt Event) error {
			assert.Equal(t, userID, evt.UserID)
			atomic.AddInt64(&delivered, 1)
			return nil
		})
	}

	bus.Publish(context.Background(), Event{Type: IncomeAdded, UserID: userID})

	assert.Equal(t, int64(3), atomic.LoadInt64(&delivered))
}

func TestBus_PublishMatchesExactType(t *testing.T) {
	bus := newTestBus()

	var incomeCalls, expenseCalls int64
	bus.Subscribe(IncomeAdded, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&incomeCalls, 1)
		return nil
	})
	bus.Subscribe(ExpenseAdded, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&expenseCalls, 1)
		return nil
	})

	bus.Publish(context.Background(), Event{Type: IncomeAdded, UserID: uuid.New()})

	assert.Equal(t, int64(1), atomic.LoadInt64(&incomeCalls))
	assert.Equal(t, int64(0), atomic.LoadInt64(&expenseCalls))
}

func TestBus_PublishWithNoSubscribersIsNoOp(t *testing.T) {
	bus := newTestBus()

	// Must neither block nor panic.
	bus.Publish(context.Background(), Event{Type: TransactionCreated, UserID: uuid.New()})
}

func TestBus_FailingHandlerDoesNotAffectSiblings(t *testing.T) {
	bus := newTestBus()

	var healthyCalls int64
	bus.Subscribe(InvestmentAdded, func(ctx context.Context, evt Event) error {
		return errors.New("aggregate write failed")
	})
	bus.Subscribe(InvestmentAdded, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&healthyCalls, 1)
		return nil
	})

	// Publish has no error return: the caller can never observe a
	// subscriber failure.
	bus.Publish(context.Background(), Event{Type: InvestmentAdded, UserID: uuid.New()})

	assert.Equal(t, int64(1), atomic.LoadInt64(&healthyCalls))
}

func TestBus_PanickingHandlerIsContained(t *testing.T) {
	bus := newTestBus()

	var healthyCalls int64
	bus.Subscribe(TransactionDeleted, func(ctx context.Context, evt Event) error {
		panic("handler bug")
	})
	bus.Subscribe(TransactionDeleted, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&healthyCalls, 1)
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), Event{Type: TransactionDeleted, UserID: uuid.New()})
	})
	assert.Equal(t, int64(1), atomic.LoadInt64(&healthyCalls))
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := newTestBus()

	var calls int64
	unsub := bus.Subscribe(ExpenseDeleted, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})

	bus.Publish(context.Background(), Event{Type: ExpenseDeleted, UserID: uuid.New()})
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	unsub()
	bus.Publish(context.Background(), Event{Type: ExpenseDeleted, UserID: uuid.New()})
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "no delivery after unsubscribe")
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	bus := newTestBus()

	handler := func(ctx context.Context, evt Event) error { return nil }
	unsubA := bus.Subscribe(IncomeUpdated, handler)
	bus.Subscribe(IncomeUpdated, handler)

	unsubA()
	unsubA()
	unsubA()

	// The second subscription must survive repeated unsubscribes of the first.
	assert.Equal(t, 1, bus.SubscriberCount(IncomeUpdated))
}

func TestBus_UnsubscribeRemovesOnlyOwnHandler(t *testing.T) {
	bus := newTestBus()

	var first, second int64
	unsubFirst := bus.Subscribe(FixedEstimateConfirmed, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&first, 1)
		return nil
	})
	bus.Subscribe(FixedEstimateConfirmed, func(ctx context.Context, evt Event) error {
		atomic.AddInt64(&second, 1)
		return nil
	})

	unsubFirst()
	bus.Publish(context.Background(), Event{Type: FixedEstimateConfirmed, UserID: uuid.New()})

	assert.Equal(t, int64(0), atomic.LoadInt64(&first))
	assert.Equal(t, int64(1), atomic.LoadInt64(&second))
}

func TestBus_ConcurrentPublishAndSubscribe(t *testing.T) {
	bus := newTestBus()
	userID := uuid.New()

	var delivered int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := bus.Subscribe(TransactionCreated, func(ctx context.Context, evt Event) error {
				atomic.AddInt64(&delivered, 1)
				return nil
			})
			defer unsub()
			bus.Publish(context.Background(), Event{Type: TransactionCreated, UserID: userID})
		}()
		go func() {
			defer wg.Done()
			bus.Publish(context.Background(), Event{Type: TransactionCreated, UserID: userID})
		}()
	}
	wg.Wait()

	// Every publisher saw at least its own goroutine's subscriber when
	// present; the exact count depends on interleaving, but the race
	// detector must stay quiet and the bus must end up empty.
	assert.Equal(t, 0, bus.SubscriberCount(TransactionCreated))
	assert.GreaterOrEqual(t, atomic.LoadInt64(&delivered), int64(10))
}
