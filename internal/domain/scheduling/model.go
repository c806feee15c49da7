package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Statuses is the closed set of appointment states. Pending and confirmed
// hold the time slot; completed and cancelled release it.
var Statuses = []string{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

var statusSet = func() map[string]bool {
	m := make(map[string]bool, len(Statuses))
	for _, s := range Statuses {
		m[s] = true
	}
	return m
}()

// IsValidStatus reports whether s is a known appointment status.
func IsValidStatus(s string) bool {
	return statusSet[s]
}

// PatientSummary is the patient projection joined onto appointment reads.
type PatientSummary struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Age    int       `json:"age"`
	Gender string    `json:"gender"`
}

// DoctorSummary is the doctor projection joined onto appointment reads.
type DoctorSummary struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
}

// Appointment maps to the appointments table. Patient and Doctor are joined
// summaries, populated on reads only.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	TimeSlot        string    `db:"time_slot" json:"time_slot"`
	Status          string    `db:"status" json:"status"`
	Reason          string    `db:"reason" json:"reason"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	Patient *PatientSummary `db:"-" json:"patient,omitempty"`
	Doctor  *DoctorSummary  `db:"-" json:"doctor,omitempty"`
}

// PatientAggregate is one row of a doctor's patient roster, built by
// grouping the doctor's appointments per patient.
type PatientAggregate struct {
	Patient                 *patient.Patient `json:"patient"`
	TotalAppointments       int              `json:"total_appointments"`
	AppointmentReasons      []string         `json:"appointment_reasons"`
	LatestAppointmentReason string           `json:"latest_appointment_reason"`
	LatestAppointmentDate   time.Time        `json:"latest_appointment_date"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalDoctors          int            `json:"total_doctors"`
	ActiveDoctors         int            `json:"active_doctors"`
	TotalPatients         int            `json:"total_patients"`
	TotalAppointments     int            `json:"total_appointments"`
	PendingAppointments   int            `json:"pending_appointments"`
	CompletedAppointments int            `json:"completed_appointments"`
	RecentAppointments    []*Appointment `json:"recent_appointments"`
}

// DoctorStats is the per-doctor overview.
type DoctorStats struct {
	TotalAppointments     int `json:"total_appointments"`
	PendingAppointments   int `json:"pending_appointments"`
	CompletedAppointments int `json:"completed_appointments"`
	TotalPatients         int `json:"total_patients"`
	TodayAppointments     int `json:"today_appointments"`
}
