package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
)

// Repository persists patients. Get methods return (nil, nil) when no row
// matches.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	UpdateMedicalHistory(ctx context.Context, id uuid.UUID, history []MedicalRecord) error
	UpdateBilling(ctx context.Context, id uuid.UUID, amount float64) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Count(ctx context.Context) (int, error)
}

// AppointmentChecker answers whether a doctor has ever had an appointment
// with a patient. Satisfied by the scheduling appointment repository.
type AppointmentChecker interface {
	HasAppointment(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
}

// DoctorDirectory resolves the doctor profile behind a login account.
// Satisfied by the identity doctor repository.
type DoctorDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error)
}
