package models

import (
	"encoding/json"
	"time"
)

// ActivityTypeAppointment marks activity rows produced by the appointment
// lifecycle; the reporting endpoints are its only consumer.
const ActivityTypeAppointment = "appointment"

// Activity is an append-only usage record. The scheduling core only ever
// writes these; it never reads or mutates them.
type Activity struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	ActivityType string          `db:"activity_type" json:"activity_type"`
	ActivityDate string          `db:"activity_date" json:"activity_date"`
	ActivityTime string          `db:"activity_time" json:"activity_time"`
	Details      json.RawMessage `db:"details" json:"details"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// ActivityCount aggregates activity rows per user for reporting.
type ActivityCount struct {
	UserID       string `db:"user_id" json:"user_id"`
	ActivityType string `db:"activity_type" json:"activity_type"`
	Count        int    `db:"activity_count" json:"activity_count"`
}
