package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

// ActivityRepository appends usage records to the user_activity table.
// Rows are never updated or deleted; reporting is the only reader.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one activity record.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO user_activity (id, user_id, activity_type, activity_date, activity_time, details, created_at)
VALUES (:id, :user_id, :activity_type, :activity_date, :activity_time, :details, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// CountByDateRange aggregates activity rows per user and type over a range of
// calendar dates, inclusive.
func (r *ActivityRepository) CountByDateRange(ctx context.Context, start, end string) ([]models.ActivityCount, error) {
	const query = `SELECT user_id, activity_type, COUNT(*) AS activity_count
FROM user_activity
WHERE activity_date >= $1 AND activity_date <= $2
GROUP BY user_id, activity_type`
	var counts []models.ActivityCount
	if err := r.db.SelectContext(ctx, &counts, query, start, end); err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	return counts, nil
}
