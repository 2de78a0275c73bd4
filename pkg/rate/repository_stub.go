package rate

import (
	"context"
	"sort"
)

type StubRepository struct {
	nextId int
	rates  map[int]map[int]Rate
	// FindErr makes FindCandidates fail, for exercising upstream failures.
	FindErr error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{rates: make(map[int]map[int]Rate)}
}

func (s *StubRepository) Create(ctx context.Context, userId int, rate Rate) (Rate, error) {
	if rate.Active && s.hasActive(userId, rate) {
		return Rate{}, ErrRateConflict
	}
	s.nextId++
	rate.Id = s.nextId
	if s.rates[userId] == nil {
		s.rates[userId] = make(map[int]Rate)
	}
	s.rates[userId][rate.Id] = rate
	return rate, nil
}

func (s *StubRepository) Update(ctx context.Context, userId int, rate Rate) (Rate, error) {
	stored, ok := s.rates[userId][rate.Id]
	if !ok {
		return Rate{}, ErrRateNotFound
	}
	stored.HourlyAmount = rate.HourlyAmount
	stored.Active = rate.Active
	if stored.Active && s.hasActive(userId, stored) {
		return Rate{}, ErrRateConflict
	}
	s.rates[userId][rate.Id] = stored
	return stored, nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, rateId int) (bool, error) {
	if _, ok := s.rates[userId][rateId]; !ok {
		return false, nil
	}
	delete(s.rates[userId], rateId)
	return true, nil
}

func (s *StubRepository) List(ctx context.Context, userId int) ([]Rate, error) {
	rates := make([]Rate, 0, len(s.rates[userId]))
	for _, rate := range s.rates[userId] {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Id < rates[j].Id })
	return rates, nil
}

func (s *StubRepository) FindCandidates(ctx context.Context, userId int, category Category, clientId *int) ([]Rate, error) {
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	all, _ := s.List(ctx, userId)
	candidates := make([]Rate, 0)
	for _, rate := range all {
		if rate.Category != category {
			continue
		}
		if rate.ClientId == nil || (clientId != nil && *rate.ClientId == *clientId) {
			candidates = append(candidates, rate)
		}
	}
	return candidates, nil
}

func (s *StubRepository) hasActive(userId int, rate Rate) bool {
	for id, other := range s.rates[userId] {
		if id == rate.Id || !other.Active || other.Category != rate.Category {
			continue
		}
		if other.ClientId == nil && rate.ClientId == nil {
			return true
		}
		if other.ClientId != nil && rate.ClientId != nil && *other.ClientId == *rate.ClientId {
			return true
		}
	}
	return false
}
