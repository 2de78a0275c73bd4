package time_entry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := monday.Add(d)
	return &t
}

func TestNewSpan(t *testing.T) {

	t.Run("should compute duration of closed span", func(t *testing.T) {
		span, err := NewSpan(1, monday, at(90*time.Minute), nil)

		require.NoError(t, err)
		require.NotNil(t, span.DurationMinutes)
		assert.Equal(t, 90, *span.DurationMinutes)
		assert.False(t, span.IsOpen())
	})

	t.Run("should round to the nearest minute", func(t *testing.T) {
		up, _ := NewSpan(1, monday, at(10*time.Minute+30*time.Second), nil)
		down, _ := NewSpan(1, monday, at(10*time.Minute+29*time.Second), nil)

		assert.Equal(t, 11, *up.DurationMinutes)
		assert.Equal(t, 10, *down.DurationMinutes)
	})

	t.Run("should keep open span without duration", func(t *testing.T) {
		span, err := NewSpan(1, monday, nil, nil)

		require.NoError(t, err)
		assert.True(t, span.IsOpen())
		assert.Nil(t, span.DurationMinutes)
	})

	t.Run("should reject end equal to start", func(t *testing.T) {
		_, err := NewSpan(1, monday, at(0), nil)

		assert.ErrorIs(t, err, ErrInvalidSpan)
	})

	t.Run("should reject end before start", func(t *testing.T) {
		_, err := NewSpan(1, monday, at(-time.Minute), nil)

		assert.ErrorIs(t, err, ErrInvalidSpan)
	})
}

func TestTotalMinutes(t *testing.T) {

	t.Run("should exclude open spans", func(t *testing.T) {
		closed, _ := NewSpan(1, monday, at(90*time.Minute), nil)
		open, _ := NewSpan(1, monday.Add(2*time.Hour), nil, nil)

		assert.Equal(t, 90, TotalMinutes([]TimeSpan{closed, open}))
	})

	t.Run("should be zero without spans", func(t *testing.T) {
		assert.Equal(t, 0, TotalMinutes(nil))
	})

	t.Run("should convert minutes to hours", func(t *testing.T) {
		assert.Equal(t, "1.5", MinutesToHours(90).String())
		assert.Equal(t, "0.33", MinutesToHours(20).String())
	})
}
