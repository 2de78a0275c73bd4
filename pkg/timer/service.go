package timer

import (
	"context"
	"fmt"

	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/user"
)

type Service interface {
	Current(ctx context.Context) (Snapshot, error)
	Start(ctx context.Context, activityId int) (Snapshot, error)
	Pause(ctx context.Context) (Snapshot, error)
	Resume(ctx context.Context) (Snapshot, error)
	Stop(ctx context.Context) (StopOutcome, error)
	Reset(ctx context.Context) (Snapshot, error)
}

type ActivityReader interface {
	Get(ctx context.Context, activityId int) (activity.Activity, error)
}

type ServiceImpl struct {
	sessions   *Sessions
	activities ActivityReader
}

func NewService(sessions *Sessions, activities ActivityReader) *ServiceImpl {
	return &ServiceImpl{sessions: sessions, activities: activities}
}

func (s *ServiceImpl) timer(ctx context.Context) (*Timer, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.sessions.For(userId), nil
}

func (s *ServiceImpl) Current(ctx context.Context) (Snapshot, error) {
	t, err := s.timer(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return t.Snapshot(), nil
}

func (s *ServiceImpl) Start(ctx context.Context, activityId int) (Snapshot, error) {
	t, err := s.timer(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	a, err := s.activities.Get(ctx, activityId)
	if err != nil {
		return Snapshot{}, err
	}
	if a.IsLocked() {
		return Snapshot{}, activity.ErrActivityLocked
	}
	return t.Start(ctx, activityId)
}

func (s *ServiceImpl) Pause(ctx context.Context) (Snapshot, error) {
	t, err := s.timer(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return t.Pause()
}

func (s *ServiceImpl) Resume(ctx context.Context) (Snapshot, error) {
	t, err := s.timer(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return t.Resume(), nil
}

func (s *ServiceImpl) Stop(ctx context.Context) (StopOutcome, error) {
	t, err := s.timer(ctx)
	if err != nil {
		return StopOutcome{}, err
	}
	return t.Stop(ctx)
}

func (s *ServiceImpl) Reset(ctx context.Context) (Snapshot, error) {
	t, err := s.timer(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return t.Reset(), nil
}
