package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateCurrentUser(ctx context.Context, user User) (User, error)
}

type ServiceImpl struct {
	repo            Repository
	defaultCurrency string
}

func NewService(repo Repository, defaultCurrency string) *ServiceImpl {
	return &ServiceImpl{repo: repo, defaultCurrency: defaultCurrency}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetUser(ctx, userId)
}

func (s *ServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return s.repo.GetUserByUid(ctx, uid)
}

func (s *ServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if err := s.normalize(&user); err != nil {
		return User{}, err
	}
	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}
	userId, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	return user, nil
}

func (s *ServiceImpl) UpdateCurrentUser(ctx context.Context, user User) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	user.Uid = current.Uid
	user.Username = current.Username
	if err := s.normalize(&user); err != nil {
		return User{}, err
	}
	return s.repo.UpdateUser(ctx, current.Id, user)
}

func (s *ServiceImpl) normalize(user *User) error {
	user.Username = strings.TrimSpace(user.Username)
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if user.Username == "" || user.DisplayName == "" {
		return fmt.Errorf("%w: username and display name are required", ErrUserDataInvalid)
	}
	if user.Settings.Timezone == "" {
		user.Settings.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(user.Settings.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrUserDataInvalid, user.Settings.Timezone)
	}
	if user.Settings.Currency == "" {
		user.Settings.Currency = s.defaultCurrency
	}
	user.Settings.Currency = strings.ToUpper(user.Settings.Currency)
	if len(user.Settings.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3 letter code", ErrUserDataInvalid)
	}
	return nil
}
