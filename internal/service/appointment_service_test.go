package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	"github.com/MathewAndreiAbao/eguidance-api/internal/repository"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
)

type mockAppointmentRepo struct {
	items      map[string]*models.Appointment
	listResult []models.AppointmentRecord
	lastFilter models.AppointmentFilter
	listErr    error
	deleted    []string
	nextID     int
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	if appointment, ok := m.items[id]; ok {
		cp := *appointment
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentRecord, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResult, nil
}

func (m *mockAppointmentRepo) slotTaken(counselorID, date, slot, excludeID string) bool {
	for _, existing := range m.items {
		if existing.ID == excludeID || existing.Status == models.StatusCancelled {
			continue
		}
		if existing.CounselorID == counselorID && existing.Date == date && existing.Time == slot {
			return true
		}
	}
	return false
}

func (m *mockAppointmentRepo) Create(ctx context.Context, appointment *models.Appointment) error {
	if m.slotTaken(appointment.CounselorID, appointment.Date, appointment.Time, "") {
		return repository.ErrSlotTaken
	}
	if m.items == nil {
		m.items = make(map[string]*models.Appointment)
	}
	if appointment.ID == "" {
		m.nextID++
		appointment.ID = "appt-" + string(rune('a'+m.nextID))
	}
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	cp := *appointment
	m.items[appointment.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, updatedAt time.Time) error {
	appointment, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	appointment.Status = status
	appointment.UpdatedAt = updatedAt
	return nil
}

func (m *mockAppointmentRepo) UpdateSchedule(ctx context.Context, id, date, slot string, updatedAt time.Time) error {
	appointment, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	if m.slotTaken(appointment.CounselorID, date, slot, id) {
		return repository.ErrSlotTaken
	}
	appointment.Date = date
	appointment.Time = slot
	appointment.UpdatedAt = updatedAt
	return nil
}

func (m *mockAppointmentRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

type mockDirectory struct {
	users map[string]*models.User
}

func (m *mockDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockRecorder struct {
	records []*models.Activity
	err     error
}

func (m *mockRecorder) Record(ctx context.Context, activity *models.Activity) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, activity)
	return nil
}

func newAppointmentFixture() (*AppointmentService, *mockAppointmentRepo, *mockRecorder) {
	repo := &mockAppointmentRepo{items: map[string]*models.Appointment{}}
	directory := &mockDirectory{users: map[string]*models.User{
		"s1": {ID: "s1", Name: "Student One", Role: models.RoleStudent},
		"s2": {ID: "s2", Name: "Student Two", Role: models.RoleStudent},
		"c1": {ID: "c1", Name: "Counselor One", Role: models.RoleCounselor},
		"c2": {ID: "c2", Name: "Counselor Two", Role: models.RoleCounselor},
	}}
	recorder := &mockRecorder{}
	svc := NewAppointmentService(repo, directory, recorder, zap.NewNop())
	return svc, repo, recorder
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *appErrors.Error, got %T", err)
	return appErr.Code
}

func TestCreateAppointmentAsStudent(t *testing.T) {
	svc, repo, _ := newAppointmentFixture()

	appointment, err := svc.Create(context.Background(), models.Actor{ID: "s1", Role: models.RoleStudent}, CreateAppointmentRequest{
		CounselorID: "c1",
		Date:        "2025-03-10",
		Time:        "09:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", appointment.StudentID)
	assert.Equal(t, "c1", appointment.CounselorID)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Len(t, repo.items, 1)
}

func TestCreateAppointmentAsCounselor(t *testing.T) {
	svc, _, _ := newAppointmentFixture()

	appointment, err := svc.Create(context.Background(), models.Actor{ID: "c1", Role: models.RoleCounselor}, CreateAppointmentRequest{
		StudentID: "s1",
		Date:      "2025-03-10",
		Time:      "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", appointment.CounselorID)
	assert.Equal(t, "s1", appointment.StudentID)
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc, _, _ := newAppointmentFixture()
	ctx := context.Background()
	student := models.Actor{ID: "s1", Role: models.RoleStudent}

	_, err := svc.Create(ctx, student, CreateAppointmentRequest{Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, "MISSING_FIELD", errCode(t, err))

	_, err = svc.Create(ctx, models.Actor{ID: "c1", Role: models.RoleCounselor}, CreateAppointmentRequest{Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, "MISSING_FIELD", errCode(t, err))

	_, err = svc.Create(ctx, models.Actor{ID: "x", Role: "admin"}, CreateAppointmentRequest{CounselorID: "c1", Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.Create(ctx, student, CreateAppointmentRequest{CounselorID: "c1", Time: "09:00"})
	assert.Equal(t, "MISSING_FIELD", errCode(t, err))

	_, err = svc.Create(ctx, student, CreateAppointmentRequest{CounselorID: "c1", Date: "2025-02-30", Time: "09:00"})
	assert.Equal(t, "INVALID_DATE", errCode(t, err))

	_, err = svc.Create(ctx, student, CreateAppointmentRequest{CounselorID: "c1", Date: "2025-03-10", Time: "16:30"})
	assert.Equal(t, "INVALID_SLOT", errCode(t, err))

	_, err = svc.Create(ctx, student, CreateAppointmentRequest{CounselorID: "nope", Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	// referencing a student in the counselor field
	_, err = svc.Create(ctx, student, CreateAppointmentRequest{CounselorID: "s2", Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, "ROLE_MISMATCH", errCode(t, err))
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	svc, repo, _ := newAppointmentFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, models.Actor{ID: "s1", Role: models.RoleStudent}, CreateAppointmentRequest{
		CounselorID: "c1", Date: "2025-03-10", Time: "09:00",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.Actor{ID: "s2", Role: models.RoleStudent}, CreateAppointmentRequest{
		CounselorID: "c1", Date: "2025-03-10", Time: "09:00",
	})
	assert.Equal(t, "SLOT_CONFLICT", errCode(t, err))

	// a different counselor, or a different slot, is fine
	_, err = svc.Create(ctx, models.Actor{ID: "s2", Role: models.RoleStudent}, CreateAppointmentRequest{
		CounselorID: "c2", Date: "2025-03-10", Time: "09:00",
	})
	require.NoError(t, err)

	// cancelling the first frees the slot
	repo.items[first.ID].Status = models.StatusCancelled
	_, err = svc.Create(ctx, models.Actor{ID: "s2", Role: models.RoleStudent}, CreateAppointmentRequest{
		CounselorID: "c1", Date: "2025-03-10", Time: "09:00",
	})
	require.NoError(t, err)
}

func TestUpdateStatusTransitions(t *testing.T) {
	all := []string{"pending", "approved", "successful", "not_successful", "cancelled"}
	allowed := map[models.AppointmentStatus]map[string]bool{
		models.StatusPending:  {"approved": true, "cancelled": true},
		models.StatusApproved: {"successful": true, "not_successful": true},
	}

	for _, from := range []models.AppointmentStatus{
		models.StatusPending, models.StatusApproved, models.StatusSuccessful,
		models.StatusNotSuccessful, models.StatusCancelled,
	} {
		for _, to := range all {
			svc, repo, _ := newAppointmentFixture()
			repo.items["a1"] = &models.Appointment{
				ID: "a1", StudentID: "s1", CounselorID: "c1",
				Date: "2025-03-10", Time: "09:00", Status: from,
			}

			updated, err := svc.UpdateStatus(context.Background(), models.Actor{ID: "c1", Role: models.RoleCounselor}, "a1", to)
			if allowed[from][to] {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, models.AppointmentStatus(to), updated.Status)
			} else {
				assert.Equal(t, "INVALID_TRANSITION", errCode(t, err), "%s -> %s", from, to)
			}
		}
	}
}

func TestUpdateStatusAuthorization(t *testing.T) {
	svc, repo, _ := newAppointmentFixture()
	ctx := context.Background()
	repo.items["a1"] = &models.Appointment{
		ID: "a1", StudentID: "s1", CounselorID: "c1",
		Date: "2025-03-10", Time: "09:00", Status: models.StatusPending,
	}

	_, err := svc.UpdateStatus(ctx, models.Actor{ID: "s1", Role: models.RoleStudent}, "a1", "approved")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.UpdateStatus(ctx, models.Actor{ID: "c1", Role: models.RoleCounselor}, "a1", "done")
	assert.Equal(t, "INVALID_STATUS", errCode(t, err))

	_, err = svc.UpdateStatus(ctx, models.Actor{ID: "c1", Role: models.RoleCounselor}, "missing", "approved")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))

	// another counselor cannot touch it; NotFound and Forbidden stay distinct
	_, err = svc.UpdateStatus(ctx, models.Actor{ID: "c2", Role: models.RoleCounselor}, "a1", "approved")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestUpdateStatusRecordsActivity(t *testing.T) {
	svc, repo, recorder := newAppointmentFixture()
	ctx := context.Background()
	counselor := models.Actor{ID: "c1", Role: models.RoleCounselor}
	repo.items["a1"] = &models.Appointment{
		ID: "a1", StudentID: "s1", CounselorID: "c1",
		Date: "2025-03-10", Time: "09:00", Status: models.StatusPending,
	}

	_, err := svc.UpdateStatus(ctx, counselor, "a1", "approved")
	require.NoError(t, err)
	require.Len(t, recorder.records, 1)
	assert.Equal(t, "s1", recorder.records[0].UserID)
	assert.Equal(t, models.ActivityTypeAppointment, recorder.records[0].ActivityType)
	assert.Equal(t, "2025-03-10", recorder.records[0].ActivityDate)

	_, err = svc.UpdateStatus(ctx, counselor, "a1", "successful")
	require.NoError(t, err)
	assert.Len(t, recorder.records, 2)
}

func TestUpdateStatusNoActivityOnCancel(t *testing.T) {
	svc, repo, recorder := newAppointmentFixture()
	repo.items["a1"] = &models.Appointment{
		ID: "a1", StudentID: "s1", CounselorID: "c1",
		Date: "2025-03-10", Time: "09:00", Status: models.StatusPending,
	}

	_, err := svc.UpdateStatus(context.Background(), models.Actor{ID: "c1", Role: models.RoleCounselor}, "a1", "cancelled")
	require.NoError(t, err)
	assert.Empty(t, recorder.records)
}

func TestUpdateStatusActivityFailureIsSwallowed(t *testing.T) {
	svc, repo, recorder := newAppointmentFixture()
	recorder.err = errors.New("activity sink down")
	repo.items["a1"] = &models.Appointment{
		ID: "a1", StudentID: "s1", CounselorID: "c1",
		Date: "2025-03-10", Time: "09:00", Status: models.StatusPending,
	}

	updated, err := svc.UpdateStatus(context.Background(), models.Actor{ID: "c1", Role: models.RoleCounselor}, "a1", "approved")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Equal(t, models.StatusApproved, repo.items["a1"].Status)
}

func TestRescheduleAppointment(t *testing.T) {
	svc, repo, _ := newAppointmentFixture()
	ctx := context.Background()
	counselor := models.Actor{ID: "c1", Role: models.RoleCounselor}
	repo.items["a1"] = &models.Appointment{
		ID: "a1", StudentID: "s1", CounselorID: "c1",
		Date: "2025-03-10", Time: "09:00", Status: models.StatusApproved,
	}
	repo.items["a2"] = &models.Appointment{
		ID: "a2", StudentID: "s2", CounselorID: "c1",
		Date: "2025-03-10", Time: "11:00", Status: models.StatusPending,
	}

	updated, err := svc.Reschedule(ctx, counselor, "a1", "2025-03-11", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-11", updated.Date)
	assert.Equal(t, "10:00", updated.Time)
	assert.Equal(t, models.StatusApproved, updated.Status)

	// moving onto another appointment's slot conflicts
	_, err = svc.Reschedule(ctx, counselor, "a1", "2025-03-10", "11:00")
	assert.Equal(t, "SLOT_CONFLICT", errCode(t, err))

	// moving back onto its own slot does not conflict with itself
	repo.items["a1"].Date, repo.items["a1"].Time = "2025-03-10", "09:00"
	_, err = svc.Reschedule(ctx, counselor, "a1", "2025-03-10", "09:00")
	require.NoError(t, err)

	_, err = svc.Reschedule(ctx, counselor, "a1", "", "10:00")
	assert.Equal(t, "MISSING_FIELD", errCode(t, err))

	_, err = svc.Reschedule(ctx, counselor, "a1", "2025-03-11", "10:30")
	assert.Equal(t, "INVALID_SLOT", errCode(t, err))

	_, err = svc.Reschedule(ctx, models.Actor{ID: "s1", Role: models.RoleStudent}, "a1", "2025-03-11", "10:00")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	_, err = svc.Reschedule(ctx, models.Actor{ID: "c2", Role: models.RoleCounselor}, "a1", "2025-03-11", "10:00")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestDeleteAppointment(t *testing.T) {
	svc, repo, _ := newAppointmentFixture()
	ctx := context.Background()
	seed := func() {
		repo.items["a1"] = &models.Appointment{
			ID: "a1", StudentID: "s1", CounselorID: "c1",
			Date: "2025-03-10", Time: "09:00", Status: models.StatusSuccessful,
		}
	}

	seed()
	require.NoError(t, svc.Delete(ctx, models.Actor{ID: "c1", Role: models.RoleCounselor}, "a1"))

	seed()
	require.NoError(t, svc.Delete(ctx, models.Actor{ID: "s1", Role: models.RoleStudent}, "a1"))

	seed()
	err := svc.Delete(ctx, models.Actor{ID: "s2", Role: models.RoleStudent}, "a1")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	err = svc.Delete(ctx, models.Actor{ID: "c2", Role: models.RoleCounselor}, "a1")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	err = svc.Delete(ctx, models.Actor{ID: "c1", Role: models.RoleCounselor}, "missing")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestListScopesToActor(t *testing.T) {
	svc, repo, _ := newAppointmentFixture()
	ctx := context.Background()

	_, err := svc.List(ctx, models.Actor{ID: "s1", Role: models.RoleStudent}, ListAppointmentsRequest{Search: "one", SortBy: "time", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "s1", repo.lastFilter.StudentID)
	assert.Empty(t, repo.lastFilter.CounselorID)
	assert.Equal(t, "time", repo.lastFilter.SortBy)

	_, err = svc.List(ctx, models.Actor{ID: "c1", Role: models.RoleCounselor}, ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "c1", repo.lastFilter.CounselorID)
	assert.Empty(t, repo.lastFilter.StudentID)

	_, err = svc.List(ctx, models.Actor{ID: "x", Role: "admin"}, ListAppointmentsRequest{})
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

// Full lifecycle walk: book, approve, conflict while live, complete, then no
// way out of the terminal state.
func TestAppointmentLifecycleScenario(t *testing.T) {
	svc, _, _ := newAppointmentFixture()
	ctx := context.Background()
	studentA := models.Actor{ID: "s1", Role: models.RoleStudent}
	counselorB := models.Actor{ID: "c1", Role: models.RoleCounselor}

	x, err := svc.Create(ctx, studentA, CreateAppointmentRequest{CounselorID: "c1", Date: "2025-03-10", Time: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, x.Status)

	x, err = svc.UpdateStatus(ctx, counselorB, x.ID, "approved")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, x.Status)

	_, err = svc.Create(ctx, models.Actor{ID: "s2", Role: models.RoleStudent}, CreateAppointmentRequest{CounselorID: "c1", Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, "SLOT_CONFLICT", errCode(t, err))

	x, err = svc.UpdateStatus(ctx, counselorB, x.ID, "successful")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccessful, x.Status)

	_, err = svc.UpdateStatus(ctx, counselorB, x.ID, "cancelled")
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))
}
