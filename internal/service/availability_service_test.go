package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

type mockBookedTimes struct {
	booked map[string][]string
	err    error
}

func (m *mockBookedTimes) BookedTimes(ctx context.Context, counselorID, date string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.booked[counselorID+"|"+date], nil
}

func TestGetAvailableTimesFullGrid(t *testing.T) {
	svc := NewAvailabilityService(&mockBookedTimes{})

	availability, err := svc.GetAvailableTimes(context.Background(), "c1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, models.AllSlots(), availability.Available)
	assert.Equal(t, []string{}, availability.Booked)
}

func TestGetAvailableTimesSubtractsBookings(t *testing.T) {
	svc := NewAvailabilityService(&mockBookedTimes{booked: map[string][]string{
		"c1|2025-03-10": {"09:00:00", "14:00:00"},
	}})

	availability, err := svc.GetAvailableTimes(context.Background(), "c1", "2025-03-10")
	require.NoError(t, err)
	assert.Len(t, availability.Available, 7)
	assert.NotContains(t, availability.Available, "09:00:00")
	assert.NotContains(t, availability.Available, "14:00:00")
	assert.Contains(t, availability.Available, "08:00:00")
	assert.Contains(t, availability.Available, "16:00:00")
	assert.Equal(t, []string{"09:00:00", "14:00:00"}, availability.Booked)

	// same query again yields the same answer
	again, err := svc.GetAvailableTimes(context.Background(), "c1", "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, availability, again)
}

func TestGetAvailableTimesMatchesBareHourMinute(t *testing.T) {
	// stored values without seconds still knock out the grid slot
	svc := NewAvailabilityService(&mockBookedTimes{booked: map[string][]string{
		"c1|2025-03-10": {"08:00"},
	}})

	availability, err := svc.GetAvailableTimes(context.Background(), "c1", "2025-03-10")
	require.NoError(t, err)
	assert.NotContains(t, availability.Available, "08:00:00")
	assert.Len(t, availability.Available, 8)
}

func TestGetAvailableTimesValidation(t *testing.T) {
	svc := NewAvailabilityService(&mockBookedTimes{})
	ctx := context.Background()

	_, err := svc.GetAvailableTimes(ctx, "", "2025-03-10")
	assert.Equal(t, "MISSING_FIELD", errCode(t, err))

	_, err = svc.GetAvailableTimes(ctx, "c1", "")
	assert.Equal(t, "MISSING_FIELD", errCode(t, err))
}

func TestGetAvailableTimesRepositoryFailure(t *testing.T) {
	svc := NewAvailabilityService(&mockBookedTimes{err: errors.New("db down")})

	_, err := svc.GetAvailableTimes(context.Background(), "c1", "2025-03-10")
	assert.Equal(t, "UNAVAILABLE", errCode(t, err))
}
