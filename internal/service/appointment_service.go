package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	"github.com/MathewAndreiAbao/eguidance-api/internal/repository"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
)

type appointmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentRecord, error)
	Create(ctx context.Context, appointment *models.Appointment) error
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, updatedAt time.Time) error
	UpdateSchedule(ctx context.Context, id, date, slot string, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type userDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// activityRecorder is the best-effort sink for status-change events. Failures
// are logged and swallowed; they never roll back or fail the triggering
// operation.
type activityRecorder interface {
	Record(ctx context.Context, activity *models.Activity) error
}

// AppointmentService owns the appointment lifecycle: creation, listing,
// status transitions, rescheduling and deletion.
type AppointmentService struct {
	repo      appointmentRepository
	directory userDirectory
	recorder  activityRecorder
	logger    *zap.Logger
}

// NewAppointmentService constructs the service. The recorder may be nil, in
// which case status changes simply go unrecorded.
func NewAppointmentService(repo appointmentRepository, directory userDirectory, recorder activityRecorder, logger *zap.Logger) *AppointmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppointmentService{repo: repo, directory: directory, recorder: recorder, logger: logger}
}

// CreateAppointmentRequest is the booking payload. The field matching the
// actor's own role is ignored and overridden with the actor's id.
type CreateAppointmentRequest struct {
	StudentID   string `json:"student_id"`
	CounselorID string `json:"counselor_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// ListAppointmentsRequest carries the listing query, always scoped to the
// actor's own appointments.
type ListAppointmentsRequest struct {
	Search    string
	SortBy    string
	SortOrder string
}

// Create books a new pending appointment for the actor.
func (s *AppointmentService) Create(ctx context.Context, actor models.Actor, req CreateAppointmentRequest) (*models.Appointment, error) {
	studentID := req.StudentID
	counselorID := req.CounselorID

	switch actor.Role {
	case models.RoleStudent:
		studentID = actor.ID
		if counselorID == "" {
			return nil, appErrors.Clone(appErrors.ErrMissingField, "counselor_id is required")
		}
	case models.RoleCounselor:
		counselorID = actor.ID
		if studentID == "" {
			return nil, appErrors.Clone(appErrors.ErrMissingField, "student_id is required")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students and counselors can create appointments")
	}

	if req.Date == "" || req.Time == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingField, "date and time are required")
	}
	if !models.IsValidCalendarDate(req.Date) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date format")
	}
	if !models.IsValidSlotTime(req.Time) {
		return nil, appErrors.ErrInvalidSlot
	}

	if err := s.resolveRole(ctx, counselorID, models.RoleCounselor); err != nil {
		return nil, err
	}
	if err := s.resolveRole(ctx, studentID, models.RoleStudent); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		StudentID:   studentID,
		CounselorID: counselorID,
		Date:        req.Date,
		Time:        req.Time,
		Status:      models.StatusPending,
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, appErrors.ErrSlotConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to create appointment")
	}
	return appointment, nil
}

// List returns the actor's appointments joined with the counterparty names.
// Invalid sort parameters fall back to date ascending rather than erroring.
func (s *AppointmentService) List(ctx context.Context, actor models.Actor, req ListAppointmentsRequest) ([]models.AppointmentRecord, error) {
	filter := models.AppointmentFilter{
		Search:    req.Search,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	switch actor.Role {
	case models.RoleStudent:
		filter.StudentID = actor.ID
	case models.RoleCounselor:
		filter.CounselorID = actor.ID
	default:
		return nil, appErrors.ErrForbidden
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to list appointments")
	}
	return records, nil
}

// UpdateStatus advances an appointment through its lifecycle. Only the owning
// counselor may do this, and only along the forward transition table.
func (s *AppointmentService) UpdateStatus(ctx context.Context, actor models.Actor, id string, newStatus string) (*models.Appointment, error) {
	if actor.Role != models.RoleCounselor {
		return nil, appErrors.ErrForbidden
	}
	status := models.AppointmentStatus(newStatus)
	if !status.Valid() {
		return nil, appErrors.ErrInvalidStatus
	}

	appointment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(appointment.Status, status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, models.TransitionReason(appointment.Status))
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, appointment.ID, status, now); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to update appointment status")
	}
	appointment.Status = status
	appointment.UpdatedAt = now

	if status == models.StatusApproved || status == models.StatusSuccessful {
		s.recordActivity(ctx, appointment)
	}
	return appointment, nil
}

// Reschedule moves an appointment to another slot, keeping its status. A
// terminal-status appointment may still be moved; see DESIGN.md.
func (s *AppointmentService) Reschedule(ctx context.Context, actor models.Actor, id, date, slot string) (*models.Appointment, error) {
	if date == "" || slot == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingField, "date and time are required")
	}
	if !models.IsValidCalendarDate(date) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDate, "invalid date format")
	}
	if !models.IsValidSlotTime(slot) {
		return nil, appErrors.ErrInvalidSlot
	}
	if actor.Role != models.RoleCounselor {
		return nil, appErrors.ErrForbidden
	}

	appointment, err := s.loadOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateSchedule(ctx, appointment.ID, date, slot, now); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, appErrors.ErrSlotConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to reschedule appointment")
	}
	appointment.Date = date
	appointment.Time = slot
	appointment.UpdatedAt = now
	return appointment, nil
}

// Delete removes an appointment permanently. Either party may delete their
// own appointment, in any state.
func (s *AppointmentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load appointment")
	}

	counselorOwner := actor.Role == models.RoleCounselor && actor.ID == appointment.CounselorID
	studentParty := actor.Role == models.RoleStudent && actor.ID == appointment.StudentID
	if !counselorOwner && !studentParty {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot delete this appointment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to delete appointment")
	}
	return nil
}

// loadOwned fetches an appointment and verifies the counselor actor owns it.
// NotFound and Forbidden stay distinct on purpose; see DESIGN.md.
func (s *AppointmentService) loadOwned(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "appointment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to load appointment")
	}
	if appointment.CounselorID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot modify this appointment")
	}
	return appointment, nil
}

func (s *AppointmentService) resolveRole(ctx context.Context, id string, role models.UserRole) error {
	user, err := s.directory.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return appErrors.Clone(appErrors.ErrNotFound, string(role)+" not found")
		}
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to resolve user")
	}
	if user.Role != role {
		return appErrors.Clone(appErrors.ErrRoleMismatch, "user is not a "+string(role))
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// recordActivity fires the best-effort activity write after the status change
// has been persisted. It runs under its own failure boundary.
func (s *AppointmentService) recordActivity(ctx context.Context, appointment *models.Appointment) {
	if s.recorder == nil {
		return
	}
	details, err := json.Marshal(map[string]interface{}{
		"appointment_id": appointment.ID,
		"status":         appointment.Status,
	})
	if err != nil {
		s.logger.Warn("failed to encode activity details", zap.Error(err))
		return
	}
	activity := &models.Activity{
		UserID:       appointment.StudentID,
		ActivityType: models.ActivityTypeAppointment,
		ActivityDate: appointment.Date,
		ActivityTime: appointment.Time,
		Details:      details,
	}
	if err := s.recorder.Record(ctx, activity); err != nil {
		s.logger.Warn("failed to record appointment activity",
			zap.String("appointment_id", appointment.ID),
			zap.Error(err))
	}
}
