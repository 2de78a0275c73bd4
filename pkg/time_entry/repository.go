package time_entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrSpanNotFound = errors.New("time span not found")

type Repository interface {
	Store(ctx context.Context, userId int, span TimeSpan) (TimeSpan, error)
	Get(ctx context.Context, userId int, spanId uuid.UUID) (TimeSpan, error)
	Update(ctx context.Context, userId int, span TimeSpan) (TimeSpan, error)
	Delete(ctx context.Context, userId int, spanId uuid.UUID) (bool, error)
	ListForActivity(ctx context.Context, userId int, activityId int) ([]TimeSpan, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, userId int, span TimeSpan) (TimeSpan, error) {
	query := `INSERT INTO time_span (id, user_id, activity_id, start_time, end_time, duration_minutes, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		span.Id,
		userId,
		span.ActivityId,
		span.Start.UTC(),
		span.End,
		span.DurationMinutes,
		span.Notes,
	)
	if err != nil {
		err := fmt.Errorf("could not store time span: %w", err)
		log.Error(err)
		return TimeSpan{}, err
	}
	return span, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, spanId uuid.UUID) (TimeSpan, error) {
	query := `SELECT id, activity_id, start_time, end_time, duration_minutes, notes FROM time_span WHERE id = $1 AND user_id = $2`
	span, err := scanSpan(r.db.QueryRow(ctx, query, spanId, userId))
	if errors.Is(err, pgx.ErrNoRows) {
		return TimeSpan{}, ErrSpanNotFound
	}
	if err != nil {
		log.Errorf("failed to get time span: %v", err)
		return TimeSpan{}, err
	}
	return span, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, span TimeSpan) (TimeSpan, error) {
	query := `UPDATE time_span SET start_time = $1, end_time = $2, duration_minutes = $3, notes = $4 WHERE id = $5 AND user_id = $6`
	result, err := r.db.Exec(ctx, query, span.Start.UTC(), span.End, span.DurationMinutes, span.Notes, span.Id, userId)
	if err != nil {
		log.Errorf("failed to update time span: %v", err)
		return TimeSpan{}, err
	}
	if result.RowsAffected() == 0 {
		return TimeSpan{}, ErrSpanNotFound
	}
	return span, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, spanId uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM time_span WHERE id = $1 AND user_id = $2`, spanId, userId)
	if err != nil {
		log.Errorf("failed to delete time span: %v", err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) ListForActivity(ctx context.Context, userId int, activityId int) ([]TimeSpan, error) {
	query := `SELECT id, activity_id, start_time, end_time, duration_minutes, notes FROM time_span
		WHERE user_id = $1 AND activity_id = $2 ORDER BY start_time`
	rows, err := r.db.Query(ctx, query, userId, activityId)
	if err != nil {
		log.Errorf("failed to list time spans: %v", err)
		return nil, err
	}
	defer rows.Close()

	spans := make([]TimeSpan, 0)
	for rows.Next() {
		span, err := scanSpan(rows)
		if err != nil {
			log.Errorf("failed to scan time span: %v", err)
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, rows.Err()
}

func scanSpan(row pgx.Row) (TimeSpan, error) {
	var span TimeSpan
	err := row.Scan(&span.Id, &span.ActivityId, &span.Start, &span.End, &span.DurationMinutes, &span.Notes)
	return span, err
}
