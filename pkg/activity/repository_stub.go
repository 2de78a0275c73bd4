package activity

import (
	"context"
	"sort"
)

type StubRepository struct {
	nextId     int
	activities map[int]map[int]Activity
}

func NewStubRepository() *StubRepository {
	return &StubRepository{activities: make(map[int]map[int]Activity)}
}

func (s *StubRepository) Create(ctx context.Context, userId int, activity Activity) (Activity, error) {
	s.nextId++
	activity.Id = s.nextId
	if s.activities[userId] == nil {
		s.activities[userId] = make(map[int]Activity)
	}
	s.activities[userId][activity.Id] = activity
	return activity, nil
}

func (s *StubRepository) Get(ctx context.Context, userId int, activityId int) (Activity, error) {
	activity, ok := s.activities[userId][activityId]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	return activity, nil
}

func (s *StubRepository) GetMany(ctx context.Context, userId int, activityIds []int) ([]Activity, error) {
	result := make([]Activity, 0, len(activityIds))
	for _, id := range activityIds {
		if activity, ok := s.activities[userId][id]; ok {
			result = append(result, activity)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (s *StubRepository) List(ctx context.Context, userId int, filter Filter) ([]Activity, error) {
	result := make([]Activity, 0)
	for _, activity := range s.activities[userId] {
		if filter.ClientId != 0 && activity.ClientId != filter.ClientId {
			continue
		}
		if filter.Status != "" && activity.Status != filter.Status {
			continue
		}
		result = append(result, activity)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id > result[j].Id })
	return result, nil
}

func (s *StubRepository) Update(ctx context.Context, userId int, activity Activity) (Activity, error) {
	stored, ok := s.activities[userId][activity.Id]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	stored.Title = activity.Title
	stored.ProjectId = activity.ProjectId
	stored.EstimatedQuantity = activity.EstimatedQuantity
	stored.HourlyRate = activity.HourlyRate
	s.activities[userId][activity.Id] = stored
	return stored, nil
}

func (s *StubRepository) UpdateStatus(ctx context.Context, userId int, activityId int, status Status) error {
	stored, ok := s.activities[userId][activityId]
	if !ok {
		return ErrActivityNotFound
	}
	stored.Status = status
	s.activities[userId][activityId] = stored
	return nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, activityId int) (bool, error) {
	if _, ok := s.activities[userId][activityId]; !ok {
		return false, nil
	}
	delete(s.activities[userId], activityId)
	return true, nil
}
