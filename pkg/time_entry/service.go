package time_entry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freelanceos/freelanceos/internal/event_bus"
	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	RecordSpan(ctx context.Context, activityId int, start time.Time, end *time.Time, notes *string) (TimeSpan, error)
	UpdateSpan(ctx context.Context, spanId uuid.UUID, start time.Time, end *time.Time, notes *string) (TimeSpan, error)
	// CloseSpan sets the end of an open span. Closing twice fails with ErrSpanAlreadyClosed.
	CloseSpan(ctx context.Context, spanId uuid.UUID, end time.Time) (TimeSpan, error)
	DeleteSpan(ctx context.Context, spanId uuid.UUID) (bool, error)
	ListSpans(ctx context.Context, activityId int) ([]TimeSpan, error)
	TotalMinutes(ctx context.Context, activityId int) (int, error)
	TotalHours(ctx context.Context, activityId int) (decimal.Decimal, error)
}

type ActivityReader interface {
	Get(ctx context.Context, activityId int) (activity.Activity, error)
}

type ServiceImpl struct {
	repo       Repository
	activities ActivityReader
	eventBus   *event_bus.EventBus
}

func NewService(repo Repository, activities ActivityReader, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, activities: activities, eventBus: eventBus}
}

func (s *ServiceImpl) RecordSpan(ctx context.Context, activityId int, start time.Time, end *time.Time, notes *string) (TimeSpan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return TimeSpan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	span, err := NewSpan(activityId, start, end, notes)
	if err != nil {
		return TimeSpan{}, err
	}
	if err := s.requireUnlocked(ctx, activityId); err != nil {
		return TimeSpan{}, err
	}

	stored, err := s.repo.Store(ctx, userId, span)
	if err != nil {
		return TimeSpan{}, err
	}
	log.Debugf("recorded span %s on activity %d", stored.Id, activityId)
	s.publishClosed(ctx, stored)
	return stored, nil
}

func (s *ServiceImpl) UpdateSpan(ctx context.Context, spanId uuid.UUID, start time.Time, end *time.Time, notes *string) (TimeSpan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return TimeSpan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	span, err := s.repo.Get(ctx, userId, spanId)
	if err != nil {
		return TimeSpan{}, err
	}
	if err := s.requireUnlocked(ctx, span.ActivityId); err != nil {
		return TimeSpan{}, err
	}
	wasOpen := span.IsOpen()
	span.Start = start
	span.Notes = notes
	if err := span.setEnd(end); err != nil {
		return TimeSpan{}, err
	}

	updated, err := s.repo.Update(ctx, userId, span)
	if err != nil {
		return TimeSpan{}, err
	}
	if wasOpen {
		s.publishClosed(ctx, updated)
	}
	return updated, nil
}

func (s *ServiceImpl) CloseSpan(ctx context.Context, spanId uuid.UUID, end time.Time) (TimeSpan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return TimeSpan{}, fmt.Errorf("failed to get current user: %w", err)
	}
	span, err := s.repo.Get(ctx, userId, spanId)
	if err != nil {
		return TimeSpan{}, err
	}
	if !span.IsOpen() {
		return TimeSpan{}, ErrSpanAlreadyClosed
	}
	if err := s.requireUnlocked(ctx, span.ActivityId); err != nil {
		return TimeSpan{}, err
	}
	if err := span.setEnd(&end); err != nil {
		return TimeSpan{}, err
	}
	closed, err := s.repo.Update(ctx, userId, span)
	if err != nil {
		return TimeSpan{}, err
	}
	s.publishClosed(ctx, closed)
	return closed, nil
}

func (s *ServiceImpl) DeleteSpan(ctx context.Context, spanId uuid.UUID) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	span, err := s.repo.Get(ctx, userId, spanId)
	if errors.Is(err, ErrSpanNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.requireUnlocked(ctx, span.ActivityId); err != nil {
		return false, err
	}
	return s.repo.Delete(ctx, userId, spanId)
}

// requireUnlocked keeps the ledger of invoiced activities in line with their invoice lines.
func (s *ServiceImpl) requireUnlocked(ctx context.Context, activityId int) error {
	a, err := s.activities.Get(ctx, activityId)
	if err != nil {
		return err
	}
	if a.IsLocked() {
		return fmt.Errorf("%w: activity %d is %s", activity.ErrActivityLocked, a.Id, a.Status)
	}
	return nil
}

func (s *ServiceImpl) ListSpans(ctx context.Context, activityId int) ([]TimeSpan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListForActivity(ctx, userId, activityId)
}

func (s *ServiceImpl) TotalMinutes(ctx context.Context, activityId int) (int, error) {
	spans, err := s.ListSpans(ctx, activityId)
	if err != nil {
		return 0, err
	}
	return TotalMinutes(spans), nil
}

func (s *ServiceImpl) TotalHours(ctx context.Context, activityId int) (decimal.Decimal, error) {
	minutes, err := s.TotalMinutes(ctx, activityId)
	if err != nil {
		return decimal.Zero, err
	}
	return MinutesToHours(minutes), nil
}

// publishClosed notifies subscribers about a closed span. A subscriber failure
// does not undo the stored span.
func (s *ServiceImpl) publishClosed(ctx context.Context, span TimeSpan) {
	if span.IsOpen() {
		return
	}
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.TimeSpanRecorded, event_bus.TimeSpanClosed{
		SpanId:          span.Id.String(),
		ActivityId:      span.ActivityId,
		StartTime:       span.Start,
		EndTime:         *span.End,
		DurationMinutes: *span.DurationMinutes,
	}))
	if err != nil {
		log.Errorf("failed to publish time span recorded event: %v", err)
	}
}
