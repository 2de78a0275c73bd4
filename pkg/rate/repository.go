package rate

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrRateNotFound = errors.New("rate not found")

// ErrRateConflict is returned when a second active rate is stored for the same category and client.
var ErrRateConflict = errors.New("an active rate already exists for this category and client")

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, userId int, rate Rate) (Rate, error)
	Update(ctx context.Context, userId int, rate Rate) (Rate, error)
	Delete(ctx context.Context, userId int, rateId int) (bool, error)
	List(ctx context.Context, userId int) ([]Rate, error)
	// FindCandidates returns the rates of the category that are defaults or belong to the client.
	FindCandidates(ctx context.Context, userId int, category Category, clientId *int) ([]Rate, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, rate Rate) (Rate, error) {
	query := `INSERT INTO rate (user_id, category, client_id, hourly_amount, active) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRow(ctx, query, userId, string(rate.Category), rate.ClientId, rate.HourlyAmount, rate.Active).Scan(&rate.Id)
	if err != nil {
		return Rate{}, mapWriteError("could not create rate", err)
	}
	return rate, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, rate Rate) (Rate, error) {
	query := `UPDATE rate SET hourly_amount = $1, active = $2 WHERE id = $3 AND user_id = $4 RETURNING category, client_id`
	var category string
	err := r.db.QueryRow(ctx, query, rate.HourlyAmount, rate.Active, rate.Id, userId).Scan(&category, &rate.ClientId)
	if errors.Is(err, pgx.ErrNoRows) {
		return Rate{}, ErrRateNotFound
	}
	if err != nil {
		return Rate{}, mapWriteError("could not update rate", err)
	}
	rate.Category = Category(category)
	return rate, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, rateId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM rate WHERE id = $1 AND user_id = $2`, rateId, userId)
	if err != nil {
		log.Errorf("failed to delete rate: %v", err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]Rate, error) {
	query := `SELECT id, category, client_id, hourly_amount, active FROM rate WHERE user_id = $1 ORDER BY category, client_id NULLS FIRST, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list rates: %v", err)
		return nil, err
	}
	return scanRates(rows)
}

func (r *RepositoryImpl) FindCandidates(ctx context.Context, userId int, category Category, clientId *int) ([]Rate, error) {
	query := `SELECT id, category, client_id, hourly_amount, active FROM rate
		WHERE user_id = $1 AND category = $2 AND (client_id IS NULL OR client_id = $3)`
	rows, err := r.db.Query(ctx, query, userId, string(category), clientId)
	if err != nil {
		log.Errorf("failed to find rates: %v", err)
		return nil, err
	}
	return scanRates(rows)
}

func scanRates(rows pgx.Rows) ([]Rate, error) {
	defer rows.Close()
	rates := make([]Rate, 0)
	for rows.Next() {
		var rate Rate
		var category string
		var amount decimal.Decimal
		if err := rows.Scan(&rate.Id, &category, &rate.ClientId, &amount, &rate.Active); err != nil {
			log.Errorf("failed to scan rate: %v", err)
			return nil, err
		}
		rate.Category = Category(category)
		rate.HourlyAmount = amount
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func mapWriteError(message string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrRateConflict
	}
	err = fmt.Errorf("%s: %w", message, err)
	log.Error(err)
	return err
}
