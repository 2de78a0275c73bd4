package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrActivityNotFound = errors.New("activity not found")

// Filter narrows List. Zero values mean no restriction.
type Filter struct {
	ClientId int
	Status   Status
}

type Repository interface {
	Create(ctx context.Context, userId int, activity Activity) (Activity, error)
	Get(ctx context.Context, userId int, activityId int) (Activity, error)
	GetMany(ctx context.Context, userId int, activityIds []int) ([]Activity, error)
	List(ctx context.Context, userId int, filter Filter) ([]Activity, error)
	Update(ctx context.Context, userId int, activity Activity) (Activity, error)
	UpdateStatus(ctx context.Context, userId int, activityId int, status Status) error
	Delete(ctx context.Context, userId int, activityId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectActivity = `SELECT id, title, category, client_id, project_id, estimated_quantity, hourly_rate, status FROM activity`

func (r *RepositoryImpl) Create(ctx context.Context, userId int, activity Activity) (Activity, error) {
	query := `INSERT INTO activity (user_id, title, category, client_id, project_id, estimated_quantity, hourly_rate, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		userId,
		activity.Title,
		string(activity.Category),
		activity.ClientId,
		activity.ProjectId,
		nullDecimal(activity.EstimatedQuantity),
		nullDecimal(activity.HourlyRate),
		string(activity.Status),
	).Scan(&activity.Id)
	if err != nil {
		err := fmt.Errorf("could not create activity: %w", err)
		log.Error(err)
		return Activity{}, err
	}
	return activity, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, activityId int) (Activity, error) {
	rows, err := r.db.Query(ctx, selectActivity+` WHERE id = $1 AND user_id = $2`, activityId, userId)
	if err != nil {
		log.Errorf("failed to get activity: %v", err)
		return Activity{}, err
	}
	activities, err := scanActivities(rows)
	if err != nil {
		return Activity{}, err
	}
	if len(activities) == 0 {
		return Activity{}, ErrActivityNotFound
	}
	return activities[0], nil
}

func (r *RepositoryImpl) GetMany(ctx context.Context, userId int, activityIds []int) ([]Activity, error) {
	rows, err := r.db.Query(ctx, selectActivity+` WHERE user_id = $1 AND id = ANY($2) ORDER BY id`, userId, activityIds)
	if err != nil {
		log.Errorf("failed to get activities: %v", err)
		return nil, err
	}
	return scanActivities(rows)
}

func (r *RepositoryImpl) List(ctx context.Context, userId int, filter Filter) ([]Activity, error) {
	query := selectActivity + ` WHERE user_id = $1
		AND ($2 = 0 OR client_id = $2)
		AND ($3 = '' OR status = $3)
		ORDER BY created DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userId, filter.ClientId, string(filter.Status))
	if err != nil {
		log.Errorf("failed to list activities: %v", err)
		return nil, err
	}
	return scanActivities(rows)
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, activity Activity) (Activity, error) {
	query := `UPDATE activity SET title = $1, project_id = $2, estimated_quantity = $3, hourly_rate = $4
		WHERE id = $5 AND user_id = $6`
	result, err := r.db.Exec(ctx, query,
		activity.Title,
		activity.ProjectId,
		nullDecimal(activity.EstimatedQuantity),
		nullDecimal(activity.HourlyRate),
		activity.Id,
		userId,
	)
	if err != nil {
		log.Errorf("failed to update activity: %v", err)
		return Activity{}, err
	}
	if result.RowsAffected() == 0 {
		return Activity{}, ErrActivityNotFound
	}
	return activity, nil
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, userId int, activityId int, status Status) error {
	result, err := r.db.Exec(ctx, `UPDATE activity SET status = $1 WHERE id = $2 AND user_id = $3`, string(status), activityId, userId)
	if err != nil {
		log.Errorf("failed to update activity status: %v", err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, activityId int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM activity WHERE id = $1 AND user_id = $2`, activityId, userId)
	if err != nil {
		log.Errorf("failed to delete activity: %v", err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func scanActivities(rows pgx.Rows) ([]Activity, error) {
	defer rows.Close()
	activities := make([]Activity, 0)
	for rows.Next() {
		var activity Activity
		var category, status string
		var estimated, hourlyRate decimal.NullDecimal
		err := rows.Scan(
			&activity.Id,
			&activity.Title,
			&category,
			&activity.ClientId,
			&activity.ProjectId,
			&estimated,
			&hourlyRate,
			&status,
		)
		if err != nil {
			log.Errorf("failed to scan activity: %v", err)
			return nil, err
		}
		activity.Category = rate.Category(category)
		activity.Status = Status(status)
		activity.EstimatedQuantity = decimalPtr(estimated)
		activity.HourlyRate = decimalPtr(hourlyRate)
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func nullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*value)
}

func decimalPtr(value decimal.NullDecimal) *decimal.Decimal {
	if !value.Valid {
		return nil
	}
	d := value.Decimal
	return &d
}
