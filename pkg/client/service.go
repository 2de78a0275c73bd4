package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freelanceos/freelanceos/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrValidation = errors.New("invalid client data")

type Service interface {
	CreateClient(ctx context.Context, client Client) (Client, error)
	GetClient(ctx context.Context, clientId int) (Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, client Client) (Client, error)
	DeleteClient(ctx context.Context, clientId int) (bool, error)
	CreateProject(ctx context.Context, project Project) (Project, error)
	GetProject(ctx context.Context, projectId int) (Project, error)
	ListProjects(ctx context.Context, clientId int) ([]Project, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) CreateClient(ctx context.Context, client Client) (Client, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Client{}, fmt.Errorf("failed to get current user: %w", err)
	}
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return Client{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	log.Debugf("Creating client %q for user %d", client.Name, userId)
	return s.repo.CreateClient(ctx, userId, client)
}

func (s *ServiceImpl) GetClient(ctx context.Context, clientId int) (Client, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Client{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetClient(ctx, userId, clientId)
}

func (s *ServiceImpl) ListClients(ctx context.Context) ([]Client, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListClients(ctx, userId)
}

func (s *ServiceImpl) UpdateClient(ctx context.Context, client Client) (Client, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Client{}, fmt.Errorf("failed to get current user: %w", err)
	}
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return Client{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.repo.UpdateClient(ctx, userId, client)
}

func (s *ServiceImpl) DeleteClient(ctx context.Context, clientId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.DeleteClient(ctx, userId, clientId)
}

func (s *ServiceImpl) CreateProject(ctx context.Context, project Project) (Project, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("failed to get current user: %w", err)
	}
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return Project{}, fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if _, err := s.repo.GetClient(ctx, userId, project.ClientId); err != nil {
		return Project{}, err
	}
	return s.repo.CreateProject(ctx, userId, project)
}

func (s *ServiceImpl) GetProject(ctx context.Context, projectId int) (Project, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetProject(ctx, userId, projectId)
}

func (s *ServiceImpl) ListProjects(ctx context.Context, clientId int) ([]Project, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListProjects(ctx, userId, clientId)
}
