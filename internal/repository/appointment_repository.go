package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
)

// ErrSlotTaken signals that the counselor already has a non-cancelled
// appointment at the requested date and time.
var ErrSlotTaken = errors.New("appointment slot already taken")

const appointmentColumns = `id, student_id, counselor_id, date::text AS date, time::text AS time, status, created_at, updated_at`

// AppointmentRepository provides persistence for appointments. The booking
// invariant is backed by a partial unique index over
// (counselor_id, date, time) WHERE status <> 'cancelled', so the in-tx
// conflict check can never be raced past by a concurrent writer.
type AppointmentRepository struct {
	db *sqlx.DB
}

// NewAppointmentRepository creates the repository.
func NewAppointmentRepository(db *sqlx.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// FindByID loads an appointment by identifier.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	var appointment models.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, err
	}
	return &appointment, nil
}

// List returns appointments for one party joined with the counterparty names.
// The search term matches the student name/email on the counselor side and the
// counselor name on the student side, mirroring what each party sees.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.AppointmentRecord, error) {
	base := `SELECT a.id, a.student_id, a.counselor_id, a.date::text AS date, a.time::text AS time, a.status, a.created_at, a.updated_at,
s.name AS student_name, s.email AS student_email, c.name AS counselor_name
FROM appointments a
JOIN users s ON a.student_id = s.id
JOIN users c ON a.counselor_id = c.id`

	var conditions []string
	var args []interface{}

	search := strings.TrimSpace(filter.Search)
	switch {
	case filter.CounselorID != "":
		conditions = append(conditions, fmt.Sprintf("a.counselor_id = $%d", len(args)+1))
		args = append(args, filter.CounselorID)
		if search != "" {
			conditions = append(conditions, fmt.Sprintf("(s.name ILIKE $%d OR s.email ILIKE $%d)", len(args)+1, len(args)+1))
			args = append(args, "%"+search+"%")
		}
	case filter.StudentID != "":
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
		if search != "" {
			conditions = append(conditions, fmt.Sprintf("c.name ILIKE $%d", len(args)+1))
			args = append(args, "%"+search+"%")
		}
	default:
		return nil, fmt.Errorf("list appointments: filter requires a party id")
	}

	sortColumns := map[string]string{
		"date":           "a.date",
		"time":           "a.time",
		"student_name":   "s.name",
		"counselor_name": "c.name",
		"status":         "a.status",
	}
	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = "a.date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s %s", base, strings.Join(conditions, " AND "), sortColumn, order)
	var records []models.AppointmentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return records, nil
}

// BookedTimes returns the non-cancelled slot times for a counselor on a date.
func (r *AppointmentRepository) BookedTimes(ctx context.Context, counselorID, date string) ([]string, error) {
	const query = `SELECT time::text FROM appointments WHERE counselor_id = $1 AND date = $2 AND status <> $3 ORDER BY time ASC`
	var times []string
	if err := r.db.SelectContext(ctx, &times, query, counselorID, date, models.StatusCancelled); err != nil {
		return nil, fmt.Errorf("booked times: %w", err)
	}
	return times, nil
}

// Create persists a new appointment. The conflict check and insert run in one
// transaction; a concurrent writer that slips between them trips the partial
// unique index instead, so either way the caller sees ErrSlotTaken.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create appointment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	taken, err := slotTaken(ctx, tx, appointment.CounselorID, appointment.Date, appointment.Time, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	const query = `INSERT INTO appointments (id, student_id, counselor_id, date, time, status, created_at, updated_at)
VALUES (:id, :student_id, :counselor_id, :date, :time, :status, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, appointment); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	return tx.Commit()
}

// UpdateStatus persists a new lifecycle status.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, updatedAt time.Time) error {
	const query = `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, status, updatedAt, id); err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	return nil
}

// UpdateSchedule moves an appointment to a new date and time. The conflict
// check excludes the appointment itself and cancelled rows, and runs under the
// same transactional guarantee as Create.
func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, id, date, slot string, updatedAt time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reschedule appointment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var counselorID string
	if err := tx.GetContext(ctx, &counselorID, `SELECT counselor_id FROM appointments WHERE id = $1`, id); err != nil {
		return err
	}

	taken, err := slotTaken(ctx, tx, counselorID, date, slot, id)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotTaken
	}

	const query = `UPDATE appointments SET date = $1, time = $2, updated_at = $3 WHERE id = $4`
	if _, err := tx.ExecContext(ctx, query, date, slot, updatedAt, id); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("reschedule appointment: %w", err)
	}
	return tx.Commit()
}

// Delete removes an appointment permanently.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func slotTaken(ctx context.Context, tx *sqlx.Tx, counselorID, date, slot, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE counselor_id = $1 AND date = $2 AND time = $3 AND status <> $4`
	args := []interface{}{counselorID, date, slot, models.StatusCancelled}
	if excludeID != "" {
		query += ` AND id <> $5`
		args = append(args, excludeID)
	}
	var count int
	if err := tx.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check slot conflict: %w", err)
	}
	return count > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
