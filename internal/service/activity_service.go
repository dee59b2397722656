package service

import (
	"context"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

type activityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	CountByDateRange(ctx context.Context, start, end string) ([]models.ActivityCount, error)
}

// ActivityService is the append-only sink for usage records. The appointment
// lifecycle writes through it; reporting reads through it.
type ActivityService struct {
	repo activityRepository
}

// NewActivityService constructs the service.
func NewActivityService(repo activityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record appends one activity record.
func (s *ActivityService) Record(ctx context.Context, activity *models.Activity) error {
	return s.repo.Create(ctx, activity)
}

// CountByDateRange aggregates records per user and type over the range.
func (s *ActivityService) CountByDateRange(ctx context.Context, start, end string) ([]models.ActivityCount, error) {
	return s.repo.CountByDateRange(ctx, start, end)
}
