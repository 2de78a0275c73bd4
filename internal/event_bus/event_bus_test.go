package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_Publish(t *testing.T) {

	t.Run("should deliver typed payload to subscribers in registration order", func(t *testing.T) {
		bus := NewEventBus()
		var calls []string
		SubscribeTyped[InvoiceActivities](bus, InvoicePaid, func(e EventT[InvoiceActivities]) error {
			calls = append(calls, "first:"+e.Data.Number)
			return nil
		})
		SubscribeTyped[InvoiceActivities](bus, InvoicePaid, func(e EventT[InvoiceActivities]) error {
			calls = append(calls, "second:"+e.Data.Number)
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), InvoicePaid, InvoiceActivities{Number: "2025-0001"}))

		require.NoError(t, err)
		assert.Equal(t, []string{"first:2025-0001", "second:2025-0001"}, calls)
	})

	t.Run("should skip typed handler when payload type does not match", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		SubscribeTyped[TimeSpanClosed](bus, InvoicePaid, func(e EventT[TimeSpanClosed]) error {
			called = true
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), InvoicePaid, InvoiceActivities{}))

		assert.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("should keep delivering after a failing or panicking handler and report failures", func(t *testing.T) {
		bus := NewEventBus()
		delivered := false
		bus.Subscribe(InvoiceCreated, func(e Event) error { return errors.New("boom") })
		bus.Subscribe(InvoiceCreated, func(e Event) error { panic("kaboom") })
		bus.Subscribe(InvoiceCreated, func(e Event) error {
			delivered = true
			return nil
		})

		err := bus.Publish(NewEvent(context.Background(), InvoiceCreated, InvoiceActivities{}))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 handler(s) failed")
		assert.True(t, delivered)
	})

	t.Run("should not deliver after unsubscribe", func(t *testing.T) {
		bus := NewEventBus()
		count := 0
		unsubscribe := bus.Subscribe(InvoiceDeleted, func(e Event) error {
			count++
			return nil
		})

		_ = bus.Publish(NewEvent(context.Background(), InvoiceDeleted, nil))
		unsubscribe()
		_ = bus.Publish(NewEvent(context.Background(), InvoiceDeleted, nil))

		assert.Equal(t, 1, count)
	})

	t.Run("should refuse to publish with cancelled context", func(t *testing.T) {
		bus := NewEventBus()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := bus.Publish(NewEvent(ctx, InvoicePaid, InvoiceActivities{}))

		assert.ErrorIs(t, err, context.Canceled)
	})
}
