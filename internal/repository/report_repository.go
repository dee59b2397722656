package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

// ReportRepository aggregates appointment usage for the reporting endpoints.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// StudentUsage returns per-student appointment counts for one counselor over
// an inclusive date range, busiest students first. Cancelled appointments do
// not count.
func (r *ReportRepository) StudentUsage(ctx context.Context, counselorID, start, end string) ([]models.StudentUsage, error) {
	const query = `SELECT u.id, u.name, u.email,
COUNT(DISTINCT a.id) AS appointment_count,
SUM(CASE WHEN a.status = 'approved' THEN 1 ELSE 0 END) AS approved_count,
SUM(CASE WHEN a.status = 'successful' THEN 1 ELSE 0 END) AS successful_count
FROM users u
JOIN appointments a ON u.id = a.student_id
WHERE a.counselor_id = $1 AND a.date >= $2 AND a.date <= $3 AND a.status <> 'cancelled'
GROUP BY u.id, u.name, u.email
ORDER BY appointment_count DESC, u.name ASC`
	var usage []models.StudentUsage
	if err := r.db.SelectContext(ctx, &usage, query, counselorID, start, end); err != nil {
		return nil, fmt.Errorf("student usage: %w", err)
	}
	return usage, nil
}
