package time_entry

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidSpan is returned when a span would end at or before its start.
var ErrInvalidSpan = errors.New("span end must be after its start")

var ErrSpanAlreadyClosed = errors.New("span is already closed")

// TimeSpan is an interval of work on an activity. It is open while End is nil
// and carries no duration until closed.
type TimeSpan struct {
	Id              uuid.UUID
	ActivityId      int
	Start           time.Time
	End             *time.Time
	DurationMinutes *int
	Notes           *string
}

func NewSpan(activityId int, start time.Time, end *time.Time, notes *string) (TimeSpan, error) {
	span := TimeSpan{
		Id:         uuid.New(),
		ActivityId: activityId,
		Start:      start,
		Notes:      notes,
	}
	if err := span.setEnd(end); err != nil {
		return TimeSpan{}, err
	}
	return span, nil
}

func (s TimeSpan) IsOpen() bool {
	return s.End == nil
}

func (s *TimeSpan) setEnd(end *time.Time) error {
	if end == nil {
		s.End = nil
		s.DurationMinutes = nil
		return nil
	}
	if !end.After(s.Start) {
		return fmt.Errorf("%w: start %s, end %s", ErrInvalidSpan, s.Start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	minutes := DurationMinutes(s.Start, *end)
	s.End = end
	s.DurationMinutes = &minutes
	return nil
}

// DurationMinutes rounds the interval to whole minutes, halves rounding up.
func DurationMinutes(start, end time.Time) int {
	return int(end.Sub(start).Round(time.Minute) / time.Minute)
}

// TotalMinutes sums the durations of closed spans. Open spans count as zero.
func TotalMinutes(spans []TimeSpan) int {
	total := 0
	for _, span := range spans {
		if span.IsOpen() || span.DurationMinutes == nil {
			continue
		}
		total += *span.DurationMinutes
	}
	return total
}

func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).DivRound(decimal.NewFromInt(60), 2)
}
