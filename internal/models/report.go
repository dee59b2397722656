package models

// StudentUsage aggregates one student's appointments with a counselor over a
// reporting window. Cancelled appointments are excluded from every count.
type StudentUsage struct {
	StudentID        string          `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Email            string          `db:"email" json:"email"`
	AppointmentCount int             `db:"appointment_count" json:"appointment_count"`
	ApprovedCount    int             `db:"approved_count" json:"approved_count"`
	SuccessfulCount  int             `db:"successful_count" json:"successful_count"`
	Activities       []ActivityCount `json:"activities"`
}

// ReportPeriod bounds a usage report, dates inclusive.
type ReportPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UsageReport is the counselor-facing usage summary for a date range.
type UsageReport struct {
	Period        ReportPeriod   `json:"period"`
	Students      []StudentUsage `json:"students"`
	TotalStudents int            `json:"total_students"`
}
