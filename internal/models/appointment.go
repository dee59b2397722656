package models

import "time"

// AppointmentStatus tracks the lifecycle of an appointment.
type AppointmentStatus string

const (
	StatusPending       AppointmentStatus = "pending"
	StatusApproved      AppointmentStatus = "approved"
	StatusSuccessful    AppointmentStatus = "successful"
	StatusNotSuccessful AppointmentStatus = "not_successful"
	StatusCancelled     AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the five known values.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSuccessful, StatusNotSuccessful, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from the status.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusSuccessful, StatusNotSuccessful, StatusCancelled:
		return true
	}
	return false
}

// transitions is the forward state machine: current status to allowed targets.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusSuccessful, StatusNotSuccessful},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to AppointmentStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionReason explains why a transition out of the given status failed.
func TransitionReason(from AppointmentStatus) string {
	switch from {
	case StatusPending:
		return "pending appointments can only be approved or cancelled"
	case StatusApproved:
		return "approved appointments can only be marked as successful or not_successful"
	case StatusCancelled:
		return "cannot change status of a cancelled appointment"
	default:
		return "cannot change status of a completed appointment"
	}
}

// Appointment is the central scheduling entity. Date is a naive calendar date
// (YYYY-MM-DD) and Time one of the fixed hour slots; there is no timezone
// handling anywhere in the system.
type Appointment struct {
	ID          string            `db:"id" json:"id"`
	StudentID   string            `db:"student_id" json:"student_id"`
	CounselorID string            `db:"counselor_id" json:"counselor_id"`
	Date        string            `db:"date" json:"date"`
	Time        string            `db:"time" json:"time"`
	Status      AppointmentStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// AppointmentRecord is an appointment joined with the party names for listings.
type AppointmentRecord struct {
	Appointment
	StudentName   string `db:"student_name" json:"student_name"`
	StudentEmail  string `db:"student_email" json:"student_email"`
	CounselorName string `db:"counselor_name" json:"counselor_name"`
}

// AppointmentFilter captures listing criteria for a single party.
type AppointmentFilter struct {
	StudentID   string
	CounselorID string
	Search      string
	SortBy      string
	SortOrder   string
}

// Availability reports free and taken slots for a counselor on one date.
type Availability struct {
	Available []string `json:"available"`
	Booked    []string `json:"booked"`
}
