package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

// AppointmentRepository persists appointments. Reads that join summaries
// populate Appointment.Patient and Appointment.Doctor.
type AppointmentRepository interface {
	// Create inserts a pending appointment. A unique violation on the
	// active-slot index comes back as a Conflict error.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// BookedSlots returns the pending/confirmed slot labels for a doctor
	// on a date.
	BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error)
	// ListAllByDoctor returns every appointment of a doctor, newest
	// created first, without pagination.
	ListAllByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	// UpdateStatus updates status and notes scoped by appointment AND
	// doctor id; returns (nil, nil) when no such row exists.
	UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, status string, notes *string) (*Appointment, error)
	HasAppointment(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	// Count counts appointments, optionally restricted to one status.
	Count(ctx context.Context, status string) (int, error)
	CountByDoctor(ctx context.Context, doctorID uuid.UUID, status string) (int, error)
	CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error)
	CountOnDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error)
	Recent(ctx context.Context, n int) ([]*Appointment, error)
}

// DoctorDirectory is the slice of the doctor roster the scheduler needs.
// Satisfied by the identity doctor repository.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error)
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
}

// PatientDirectory is the slice of the patient store the scheduler needs.
// Satisfied by the patient repository.
type PatientDirectory interface {
	Create(ctx context.Context, p *patient.Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	GetByEmail(ctx context.Context, email string) (*patient.Patient, error)
	Count(ctx context.Context) (int, error)
}
