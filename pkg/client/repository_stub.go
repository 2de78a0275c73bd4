package client

import (
	"context"
	"sort"
)

type StubRepository struct {
	nextId   int
	clients  map[int]map[int]Client
	projects map[int]map[int]Project
}

func NewStubRepository() *StubRepository {
	return &StubRepository{
		clients:  make(map[int]map[int]Client),
		projects: make(map[int]map[int]Project),
	}
}

func (s *StubRepository) CreateClient(ctx context.Context, userId int, client Client) (Client, error) {
	s.nextId++
	client.Id = s.nextId
	if s.clients[userId] == nil {
		s.clients[userId] = make(map[int]Client)
	}
	s.clients[userId][client.Id] = client
	return client, nil
}

func (s *StubRepository) GetClient(ctx context.Context, userId int, clientId int) (Client, error) {
	client, ok := s.clients[userId][clientId]
	if !ok {
		return Client{}, ErrClientNotFound
	}
	return client, nil
}

func (s *StubRepository) ListClients(ctx context.Context, userId int) ([]Client, error) {
	clients := make([]Client, 0, len(s.clients[userId]))
	for _, client := range s.clients[userId] {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (s *StubRepository) UpdateClient(ctx context.Context, userId int, client Client) (Client, error) {
	if _, ok := s.clients[userId][client.Id]; !ok {
		return Client{}, ErrClientNotFound
	}
	s.clients[userId][client.Id] = client
	return client, nil
}

func (s *StubRepository) DeleteClient(ctx context.Context, userId int, clientId int) (bool, error) {
	if _, ok := s.clients[userId][clientId]; !ok {
		return false, nil
	}
	delete(s.clients[userId], clientId)
	for id, project := range s.projects[userId] {
		if project.ClientId == clientId {
			delete(s.projects[userId], id)
		}
	}
	return true, nil
}

func (s *StubRepository) CreateProject(ctx context.Context, userId int, project Project) (Project, error) {
	s.nextId++
	project.Id = s.nextId
	if s.projects[userId] == nil {
		s.projects[userId] = make(map[int]Project)
	}
	s.projects[userId][project.Id] = project
	return project, nil
}

func (s *StubRepository) GetProject(ctx context.Context, userId int, projectId int) (Project, error) {
	project, ok := s.projects[userId][projectId]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return project, nil
}

func (s *StubRepository) ListProjects(ctx context.Context, userId int, clientId int) ([]Project, error) {
	projects := make([]Project, 0)
	for _, project := range s.projects[userId] {
		if project.ClientId == clientId {
			projects = append(projects, project)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}
