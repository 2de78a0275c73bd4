package rate

import (
	"context"
	"fmt"

	"github.com/freelanceos/freelanceos/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, rate Rate) (Rate, error)
	Update(ctx context.Context, rate Rate) (Rate, error)
	Delete(ctx context.Context, rateId int) (bool, error)
	List(ctx context.Context) ([]Rate, error)
	ResolveRate(ctx context.Context, category Category, clientId *int) (Rate, bool, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) Create(ctx context.Context, rate Rate) (Rate, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rate{}, fmt.Errorf("failed to get current user: %w", err)
	}
	validated, err := New(rate.Category, rate.ClientId, rate.HourlyAmount, rate.Active)
	if err != nil {
		return Rate{}, err
	}
	return s.repo.Create(ctx, userId, validated)
}

func (s *ServiceImpl) Update(ctx context.Context, rate Rate) (Rate, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rate{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if rate.HourlyAmount.IsNegative() {
		return Rate{}, fmt.Errorf("%w: hourly amount must not be negative", ErrValidation)
	}
	return s.repo.Update(ctx, userId, rate)
}

func (s *ServiceImpl) Delete(ctx context.Context, rateId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, rateId)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Rate, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId)
}

// ResolveRate loads the candidate rates of the current user and resolves them.
// Having no applicable rate is not an error.
func (s *ServiceImpl) ResolveRate(ctx context.Context, category Category, clientId *int) (Rate, bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Rate{}, false, fmt.Errorf("failed to get current user: %w", err)
	}
	candidates, err := s.repo.FindCandidates(ctx, userId, category, clientId)
	if err != nil {
		return Rate{}, false, fmt.Errorf("failed to load rates: %w", err)
	}
	resolved, ok := Resolve(candidates, category, clientId)
	if !ok {
		log.Debugf("no rate configured for category %s", category)
	}
	return resolved, ok, nil
}
