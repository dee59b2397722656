package service

import (
	"context"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
)

type bookedTimesRepository interface {
	BookedTimes(ctx context.Context, counselorID, date string) ([]string, error)
}

// AvailabilityService computes free and booked slots for a counselor on a
// given date from the fixed business-day grid.
type AvailabilityService struct {
	repo bookedTimesRepository
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(repo bookedTimesRepository) *AvailabilityService {
	return &AvailabilityService{repo: repo}
}

// GetAvailableTimes subtracts the counselor's non-cancelled bookings from the
// slot grid. An unknown counselor simply has every slot free; booked times are
// returned as stored.
func (s *AvailabilityService) GetAvailableTimes(ctx context.Context, counselorID, date string) (*models.Availability, error) {
	if counselorID == "" || date == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingField, "counselor_id and date are required")
	}

	booked, err := s.repo.BookedTimes(ctx, counselorID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load booked times")
	}

	bookedHours := make(map[int]struct{}, len(booked))
	for _, t := range booked {
		if h := models.SlotHour(t); h >= 0 {
			bookedHours[h] = struct{}{}
		}
	}

	available := make([]string, 0, models.SlotLastHour-models.SlotFirstHour+1)
	for _, slot := range models.AllSlots() {
		if _, taken := bookedHours[models.SlotHour(slot)]; !taken {
			available = append(available, slot)
		}
	}

	if booked == nil {
		booked = []string{}
	}
	return &models.Availability{Available: available, Booked: booked}, nil
}
