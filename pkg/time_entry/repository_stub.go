package time_entry

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

type StubRepository struct {
	spans map[int]map[uuid.UUID]TimeSpan
	// StoreErr makes Store fail, for exercising persistence failures.
	StoreErr error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{spans: make(map[int]map[uuid.UUID]TimeSpan)}
}

func (s *StubRepository) Store(ctx context.Context, userId int, span TimeSpan) (TimeSpan, error) {
	if s.StoreErr != nil {
		return TimeSpan{}, s.StoreErr
	}
	if s.spans[userId] == nil {
		s.spans[userId] = make(map[uuid.UUID]TimeSpan)
	}
	s.spans[userId][span.Id] = span
	return span, nil
}

func (s *StubRepository) Get(ctx context.Context, userId int, spanId uuid.UUID) (TimeSpan, error) {
	span, ok := s.spans[userId][spanId]
	if !ok {
		return TimeSpan{}, ErrSpanNotFound
	}
	return span, nil
}

func (s *StubRepository) Update(ctx context.Context, userId int, span TimeSpan) (TimeSpan, error) {
	if _, ok := s.spans[userId][span.Id]; !ok {
		return TimeSpan{}, ErrSpanNotFound
	}
	s.spans[userId][span.Id] = span
	return span, nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, spanId uuid.UUID) (bool, error) {
	if _, ok := s.spans[userId][spanId]; !ok {
		return false, nil
	}
	delete(s.spans[userId], spanId)
	return true, nil
}

func (s *StubRepository) ListForActivity(ctx context.Context, userId int, activityId int) ([]TimeSpan, error) {
	spans := make([]TimeSpan, 0)
	for _, span := range s.spans[userId] {
		if span.ActivityId == activityId {
			spans = append(spans, span)
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start.Before(spans[j].Start) })
	return spans, nil
}
