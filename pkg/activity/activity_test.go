package activity

import (
	"testing"

	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalOf(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestNew(t *testing.T) {

	t.Run("should start pending validation", func(t *testing.T) {
		activity, err := New(" Landing page ", rate.Development, 3, nil, decimalOf("4.5"), nil)

		require.NoError(t, err)
		assert.Equal(t, "Landing page", activity.Title)
		assert.Equal(t, StatusPendingValidation, activity.Status)
	})

	t.Run("should reject negative estimated quantity", func(t *testing.T) {
		_, err := New("Landing page", rate.Development, 3, nil, decimalOf("-1"), nil)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject negative hourly rate", func(t *testing.T) {
		_, err := New("Landing page", rate.Development, 3, nil, nil, decimalOf("-0.01"))

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject missing client", func(t *testing.T) {
		_, err := New("Landing page", rate.Development, 0, nil, nil, nil)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject unknown category", func(t *testing.T) {
		_, err := New("Landing page", rate.Category("lobbying"), 3, nil, nil, nil)

		assert.ErrorIs(t, err, ErrValidation)
	})
}
