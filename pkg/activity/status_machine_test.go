package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus(t *testing.T) {
	allowed := []struct {
		from  Status
		event string
		to    Status
	}{
		{StatusPendingValidation, EventValidate, StatusInProgress},
		{StatusInProgress, EventSubmitReview, StatusInReview},
		{StatusInProgress, EventComplete, StatusDone},
		{StatusInReview, EventComplete, StatusDone},
		{StatusInReview, EventRework, StatusInProgress},
		{StatusDone, EventRework, StatusInProgress},
		{StatusDone, EventInvoice, StatusReadyToBill},
		{StatusReadyToBill, EventRelease, StatusDone},
		{StatusReadyToBill, EventBill, StatusBilled},
	}
	for _, tc := range allowed {
		t.Run("should move "+string(tc.from)+" on "+tc.event, func(t *testing.T) {
			next, err := nextStatus(1, tc.from, tc.event)

			require.NoError(t, err)
			assert.Equal(t, tc.to, next)
		})
	}

	t.Run("should reject billing an activity that is not ready", func(t *testing.T) {
		_, err := nextStatus(1, StatusDone, EventBill)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("should keep billed activity final", func(t *testing.T) {
		for _, event := range []string{EventValidate, EventRework, EventRelease, EventInvoice} {
			_, err := nextStatus(1, StatusBilled, event)
			assert.ErrorIs(t, err, ErrInvalidTransition, event)
		}
	})

	t.Run("should reject unknown event", func(t *testing.T) {
		_, err := nextStatus(1, StatusInProgress, "archive")

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}
