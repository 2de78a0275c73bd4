package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrClientNotFound = errors.New("client not found")
var ErrProjectNotFound = errors.New("project not found")

type Repository interface {
	CreateClient(ctx context.Context, userId int, client Client) (Client, error)
	GetClient(ctx context.Context, userId int, clientId int) (Client, error)
	ListClients(ctx context.Context, userId int) ([]Client, error)
	UpdateClient(ctx context.Context, userId int, client Client) (Client, error)
	DeleteClient(ctx context.Context, userId int, clientId int) (bool, error)
	CreateProject(ctx context.Context, userId int, project Project) (Project, error)
	GetProject(ctx context.Context, userId int, projectId int) (Project, error)
	ListProjects(ctx context.Context, userId int, clientId int) ([]Project, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateClient(ctx context.Context, userId int, client Client) (Client, error) {
	query := `INSERT INTO client (user_id, name, email, address, vat_number) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query, userId, client.Name, client.Email, client.Address, client.VatNumber).Scan(&client.Id)
	if err != nil {
		err := fmt.Errorf("could not create client: %w", err)
		log.Error(err)
		return Client{}, err
	}
	return client, nil
}

func (r *RepositoryImpl) GetClient(ctx context.Context, userId int, clientId int) (Client, error) {
	query := `SELECT id, name, coalesce(email, ''), coalesce(address, ''), coalesce(vat_number, '')
		FROM client WHERE id = $1 AND user_id = $2`
	var client Client
	err := r.db.QueryRow(ctx, query, clientId, userId).Scan(
		&client.Id, &client.Name, &client.Email, &client.Address, &client.VatNumber,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrClientNotFound
	}
	if err != nil {
		log.Errorf("failed to get client: %v", err)
		return Client{}, err
	}
	return client, nil
}

func (r *RepositoryImpl) ListClients(ctx context.Context, userId int) ([]Client, error) {
	query := `SELECT id, name, coalesce(email, ''), coalesce(address, ''), coalesce(vat_number, '')
		FROM client WHERE user_id = $1 ORDER BY name`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list clients: %v", err)
		return nil, err
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var client Client
		if err := rows.Scan(&client.Id, &client.Name, &client.Email, &client.Address, &client.VatNumber); err != nil {
			log.Errorf("failed to scan client: %v", err)
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *RepositoryImpl) UpdateClient(ctx context.Context, userId int, client Client) (Client, error) {
	query := `UPDATE client SET name = $1, email = $2, address = $3, vat_number = $4 WHERE id = $5 AND user_id = $6`
	result, err := r.db.Exec(ctx, query, client.Name, client.Email, client.Address, client.VatNumber, client.Id, userId)
	if err != nil {
		log.Errorf("failed to update client: %v", err)
		return Client{}, err
	}
	if result.RowsAffected() == 0 {
		return Client{}, ErrClientNotFound
	}
	return client, nil
}

func (r *RepositoryImpl) DeleteClient(ctx context.Context, userId int, clientId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM client WHERE id = $1 AND user_id = $2`, clientId, userId)
	if err != nil {
		log.Errorf("failed to delete client: %v", err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) CreateProject(ctx context.Context, userId int, project Project) (Project, error) {
	query := `INSERT INTO project (user_id, client_id, name) VALUES ($1, $2, $3) RETURNING id`
	err := r.db.QueryRow(ctx, query, userId, project.ClientId, project.Name).Scan(&project.Id)
	if err != nil {
		err := fmt.Errorf("could not create project: %w", err)
		log.Error(err)
		return Project{}, err
	}
	return project, nil
}

func (r *RepositoryImpl) GetProject(ctx context.Context, userId int, projectId int) (Project, error) {
	query := `SELECT id, client_id, name FROM project WHERE id = $1 AND user_id = $2`
	var project Project
	err := r.db.QueryRow(ctx, query, projectId, userId).Scan(&project.Id, &project.ClientId, &project.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Project{}, ErrProjectNotFound
	}
	if err != nil {
		log.Errorf("failed to get project: %v", err)
		return Project{}, err
	}
	return project, nil
}

func (r *RepositoryImpl) ListProjects(ctx context.Context, userId int, clientId int) ([]Project, error) {
	query := `SELECT id, client_id, name FROM project WHERE user_id = $1 AND client_id = $2 ORDER BY name`
	rows, err := r.db.Query(ctx, query, userId, clientId)
	if err != nil {
		log.Errorf("failed to list projects: %v", err)
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var project Project
		if err := rows.Scan(&project.Id, &project.ClientId, &project.Name); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}
