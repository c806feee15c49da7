package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

const maxDescriptionLen = 500

type Service struct {
	patients     Repository
	doctors      DoctorDirectory
	appointments AppointmentChecker
}

func NewService(patients Repository, doctors DoctorDirectory, appointments AppointmentChecker) *Service {
	return &Service{patients: patients, doctors: doctors, appointments: appointments}
}

// ListPatients returns the intake roster, newest first.
func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	items, total, err := s.patients.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("Failed to list patients", err)
	}
	return items, total, nil
}

// GetPatient returns one patient by id.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to load patient", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Patient not found")
	}
	return p, nil
}

// UpdatePatientInput carries the admin-editable contact fields. Nil pointers
// leave the current value untouched. Medical history and billing are not
// reachable through this path.
type UpdatePatientInput struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Age         *int    `json:"age"`
	Gender      *string `json:"gender"`
	Description *string `json:"description"`
}

// UpdatePatient applies a partial update to a patient's contact fields.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in UpdatePatientInput) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to update patient", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Patient not found")
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("Name must not be empty", "name")
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !identity.ValidEmail(email) {
			return nil, apperr.Validation("Invalid email address", "email")
		}
		p.Email = email
	}
	if in.Phone != nil {
		if strings.TrimSpace(*in.Phone) == "" {
			return nil, apperr.Validation("Phone must not be empty", "phone")
		}
		p.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Age != nil {
		if *in.Age < 0 || *in.Age > 150 {
			return nil, apperr.Validation("Age must be between 0 and 150", "age")
		}
		p.Age = *in.Age
	}
	if in.Gender != nil {
		if !IsValidGender(*in.Gender) {
			return nil, apperr.Validation("Gender must be Male, Female or Other", "gender")
		}
		p.Gender = *in.Gender
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, apperr.Validation("Description must be at most 500 characters", "description")
		}
		p.Description = in.Description
	}

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, apperr.Internal("Failed to update patient", err)
	}
	return p, nil
}

// RecordInput carries the fields of a medical record entry.
type RecordInput struct {
	Disease   string `json:"disease"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
}

func (in *RecordInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Disease) == "" {
		missing = append(missing, "disease")
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		missing = append(missing, "diagnosis")
	}
	if strings.TrimSpace(in.Treatment) == "" {
		missing = append(missing, "treatment")
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing required fields", missing...)
	}
	return nil
}

// AddRecord appends a medical record to the patient's history. The acting
// doctor must have at least one appointment with the patient.
func (s *Service) AddRecord(ctx context.Context, userID, patientID uuid.UUID, in RecordInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	doctorID, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.requireRelationship(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}

	p.MedicalHistory = append(p.MedicalHistory, MedicalRecord{
		Disease:    strings.TrimSpace(in.Disease),
		Diagnosis:  strings.TrimSpace(in.Diagnosis),
		Treatment:  strings.TrimSpace(in.Treatment),
		DoctorID:   doctorID,
		RecordedAt: time.Now().UTC(),
	})
	if err := s.patients.UpdateMedicalHistory(ctx, p.ID, p.MedicalHistory); err != nil {
		return nil, apperr.Internal("Failed to add medical record", err)
	}
	return p, nil
}

// UpdateRecord replaces the history entry at index, stamping the acting
// doctor and a fresh timestamp.
func (s *Service) UpdateRecord(ctx context.Context, userID, patientID uuid.UUID, index int, in RecordInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	doctorID, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.requireRelationship(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(p.MedicalHistory) {
		return nil, apperr.Validation("Record index out of range", "index")
	}

	p.MedicalHistory[index] = MedicalRecord{
		Disease:    strings.TrimSpace(in.Disease),
		Diagnosis:  strings.TrimSpace(in.Diagnosis),
		Treatment:  strings.TrimSpace(in.Treatment),
		DoctorID:   doctorID,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.patients.UpdateMedicalHistory(ctx, p.ID, p.MedicalHistory); err != nil {
		return nil, apperr.Internal("Failed to update medical record", err)
	}
	return p, nil
}

// UpdateBilling sets the patient's billing amount.
func (s *Service) UpdateBilling(ctx context.Context, userID, patientID uuid.UUID, amount float64) (*Patient, error) {
	if amount < 0 {
		return nil, apperr.Validation("Billing amount must not be negative", "billing_amount")
	}
	doctorID, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.requireRelationship(ctx, doctorID, patientID)
	if err != nil {
		return nil, err
	}

	if err := s.patients.UpdateBilling(ctx, p.ID, amount); err != nil {
		return nil, apperr.Internal("Failed to update billing", err)
	}
	p.BillingAmount = &amount
	return p, nil
}

func (s *Service) resolveDoctor(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, apperr.Internal("Failed to resolve doctor", err)
	}
	if doctor == nil {
		return uuid.Nil, apperr.NotFound("Doctor profile not found")
	}
	return doctor.ID, nil
}

// requireRelationship loads the patient and verifies the doctor has had an
// appointment with them.
func (s *Service) requireRelationship(ctx context.Context, doctorID, patientID uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, apperr.Internal("Failed to load patient", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Patient not found")
	}
	ok, err := s.appointments.HasAppointment(ctx, doctorID, patientID)
	if err != nil {
		return nil, apperr.Internal("Failed to check patient relationship", err)
	}
	if !ok {
		return nil, apperr.Forbidden("You can only add records for your patients")
	}
	return p, nil
}
