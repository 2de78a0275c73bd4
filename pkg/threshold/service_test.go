package threshold

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freelanceos/freelanceos/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRevenue struct {
	byYear map[int]decimal.Decimal
	err    error
}

func (s stubRevenue) PaidRevenue(ctx context.Context, year int) (decimal.Decimal, error) {
	return s.byYear[year], s.err
}

func TestServiceImpl_Current(t *testing.T) {
	clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	caps := defaultCaps()

	t.Run("should evaluate the current year by default", func(t *testing.T) {
		// given
		service := NewService(stubRevenue{byYear: map[int]decimal.Decimal{2025: d("80000")}}, caps, clock)

		// when
		report, err := service.Current(context.Background(), 0)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2025, report.Year)
		require.NotNil(t, report.Alert)
		assert.Equal(t, SeverityBlocking, report.Alert.Severity)
	})

	t.Run("should evaluate the requested year", func(t *testing.T) {
		service := NewService(stubRevenue{byYear: map[int]decimal.Decimal{2024: d("1000")}}, caps, clock)

		report, err := service.Current(context.Background(), 2024)

		require.NoError(t, err)
		assert.Nil(t, report.Alert)
		assert.True(t, d("1000").Equal(report.Snapshot.AnnualRevenue))
	})

	t.Run("should surface revenue failures", func(t *testing.T) {
		service := NewService(stubRevenue{err: errors.New("db down")}, caps, clock)

		_, err := service.Current(context.Background(), 2025)

		assert.ErrorContains(t, err, "db down")
	})
}
