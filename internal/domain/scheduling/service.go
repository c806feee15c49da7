package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

const (
	dateLayout   = "2006-01-02"
	maxReasonLen = 500
	recentCount  = 5
)

type Service struct {
	appointments AppointmentRepository
	doctors      DoctorDirectory
	patients     PatientDirectory

	// now is swapped out in tests.
	now func() time.Time
}

func NewService(appointments AppointmentRepository, doctors DoctorDirectory, patients PatientDirectory) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		now:          time.Now,
	}
}

// BookingInput is the anonymous booking payload: patient contact details
// plus the requested doctor, date and slot.
type BookingInput struct {
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Age             int       `json:"age"`
	Gender          string    `json:"gender"`
	Description     *string   `json:"description"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	AppointmentDate string    `json:"appointment_date"`
	TimeSlot        string    `json:"time_slot"`
	Reason          string    `json:"reason"`
}

func (in *BookingInput) validate() (time.Time, error) {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing = append(missing, "phone")
	}
	if in.Gender == "" {
		missing = append(missing, "gender")
	}
	if in.DoctorID == uuid.Nil {
		missing = append(missing, "doctor_id")
	}
	if in.AppointmentDate == "" {
		missing = append(missing, "appointment_date")
	}
	if in.TimeSlot == "" {
		missing = append(missing, "time_slot")
	}
	if strings.TrimSpace(in.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return time.Time{}, apperr.Validation("Missing required fields", missing...)
	}

	if !identity.ValidEmail(strings.ToLower(strings.TrimSpace(in.Email))) {
		return time.Time{}, apperr.Validation("Invalid email address", "email")
	}
	if in.Age < 0 || in.Age > 150 {
		return time.Time{}, apperr.Validation("Age must be between 0 and 150", "age")
	}
	if !patient.IsValidGender(in.Gender) {
		return time.Time{}, apperr.Validation("Gender must be Male, Female or Other", "gender")
	}
	if !identity.ValidTimeOfDay(in.TimeSlot) {
		return time.Time{}, apperr.Validation("Time slot must be in HH:MM format", "time_slot")
	}
	if len(in.Reason) > maxReasonLen {
		return time.Time{}, apperr.Validation("Reason must be at most 500 characters", "reason")
	}

	date, err := time.ParseInLocation(dateLayout, in.AppointmentDate, time.Local)
	if err != nil {
		return time.Time{}, apperr.Validation("Appointment date must be in YYYY-MM-DD format", "appointment_date")
	}
	return date, nil
}

// BookAppointment handles the anonymous booking flow: it validates the
// request, checks the doctor and the slot, upserts the patient by email and
// inserts the appointment as pending. The unique index on active slots is
// the final word on double booking.
func (s *Service) BookAppointment(ctx context.Context, in BookingInput) (*Appointment, error) {
	date, err := in.validate()
	if err != nil {
		return nil, err
	}

	doctor, err := s.doctors.GetByID(ctx, in.DoctorID)
	if err != nil {
		return nil, apperr.Internal("Failed to book appointment", err)
	}
	if doctor == nil || !doctor.IsActive {
		return nil, apperr.NotFound("Doctor not found or not available")
	}

	slotStart, err := time.ParseInLocation(dateLayout+" 15:04", in.AppointmentDate+" "+in.TimeSlot, time.Local)
	if err != nil {
		return nil, apperr.Validation("Time slot must be in HH:MM format", "time_slot")
	}
	if !slotStart.After(s.now()) {
		return nil, apperr.Validation("Appointment must be scheduled in the future", "appointment_date", "time_slot")
	}

	booked, err := s.appointments.BookedSlots(ctx, doctor.ID, date)
	if err != nil {
		return nil, apperr.Internal("Failed to book appointment", err)
	}
	for _, slot := range booked {
		if slot == in.TimeSlot {
			return nil, apperr.Conflict("This time slot is already booked")
		}
	}

	p, err := s.upsertPatient(ctx, in)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		PatientID:       p.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		TimeSlot:        in.TimeSlot,
		Status:          StatusPending,
		Reason:          strings.TrimSpace(in.Reason),
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, err
		}
		return nil, apperr.Internal("Failed to book appointment", err)
	}

	appt.Patient = &PatientSummary{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Age: p.Age, Gender: p.Gender}
	appt.Doctor = &DoctorSummary{ID: doctor.ID, Name: doctor.Name, Specialization: doctor.Specialization}
	return appt, nil
}

// upsertPatient finds the patient by email or creates them. Contact details
// of a returning patient are never overwritten by the booking form.
func (s *Service) upsertPatient(ctx context.Context, in BookingInput) (*patient.Patient, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.patients.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Failed to book appointment", err)
	}
	if existing != nil {
		return existing, nil
	}

	p := &patient.Patient{
		Name:        strings.TrimSpace(in.Name),
		Email:       email,
		Phone:       strings.TrimSpace(in.Phone),
		Age:         in.Age,
		Gender:      in.Gender,
		Description: in.Description,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, apperr.Internal("Failed to book appointment", err)
	}
	return p, nil
}

// DoctorAvailabilityResult is the public availability view for one doctor.
type DoctorAvailabilityResult struct {
	Doctor         *DoctorSummary     `json:"doctor"`
	Availability   []identity.DayRule `json:"availability"`
	Date           string             `json:"date,omitempty"`
	AvailableSlots []string           `json:"available_slots,omitempty"`
}

// DoctorAvailability returns a doctor's weekly availability and, when a date
// is supplied, the open slots on that date.
func (s *Service) DoctorAvailability(ctx context.Context, doctorID uuid.UUID, dateStr string) (*DoctorAvailabilityResult, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, apperr.Internal("Failed to load availability", err)
	}
	if doctor == nil || !doctor.IsActive {
		return nil, apperr.NotFound("Doctor not found or not available")
	}

	result := &DoctorAvailabilityResult{
		Doctor:       &DoctorSummary{ID: doctor.ID, Name: doctor.Name, Specialization: doctor.Specialization},
		Availability: doctor.Availability,
	}
	if dateStr == "" {
		return result, nil
	}

	date, err := time.ParseInLocation(dateLayout, dateStr, time.Local)
	if err != nil {
		return nil, apperr.Validation("Date must be in YYYY-MM-DD format", "date")
	}
	booked, err := s.appointments.BookedSlots(ctx, doctor.ID, date)
	if err != nil {
		return nil, apperr.Internal("Failed to load availability", err)
	}
	result.Date = dateStr
	result.AvailableSlots = AvailableSlots(doctor.Availability, date, booked)
	if result.AvailableSlots == nil {
		result.AvailableSlots = []string{}
	}
	return result, nil
}

// ListAllAppointments returns every appointment, newest date first.
func (s *Service) ListAllAppointments(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.appointments.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("Failed to list appointments", err)
	}
	return items, total, nil
}

// AdminDashboardStats assembles the admin overview.
func (s *Service) AdminDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalDoctors, err = s.doctors.Count(ctx); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.ActiveDoctors, err = s.doctors.CountActive(ctx); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.TotalPatients, err = s.patients.Count(ctx); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.TotalAppointments, err = s.appointments.Count(ctx, ""); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.PendingAppointments, err = s.appointments.Count(ctx, StatusPending); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.CompletedAppointments, err = s.appointments.Count(ctx, StatusCompleted); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.RecentAppointments, err = s.appointments.Recent(ctx, recentCount); err != nil {
		return nil, apperr.Internal("Failed to load dashboard stats", err)
	}
	if stats.RecentAppointments == nil {
		stats.RecentAppointments = []*Appointment{}
	}
	return stats, nil
}

// ListDoctorAppointments returns the acting doctor's own appointments,
// earliest first. Unknown status filter values are ignored.
func (s *Service) ListDoctorAppointments(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	doctor, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if !IsValidStatus(status) {
		status = ""
	}
	items, total, err := s.appointments.ListByDoctor(ctx, doctor.ID, status, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("Failed to list appointments", err)
	}
	return items, total, nil
}

// UpdateAppointmentStatus updates status and notes on one of the acting
// doctor's appointments. Rows owned by another doctor look like a missing
// appointment.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, userID, appointmentID uuid.UUID, status string, notes *string) (*Appointment, error) {
	if !IsValidStatus(status) {
		return nil, apperr.Validation("Status must be pending, confirmed, completed or cancelled", "status")
	}
	doctor, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, err
	}
	appt, err := s.appointments.UpdateStatus(ctx, appointmentID, doctor.ID, status, notes)
	if err != nil {
		return nil, apperr.Internal("Failed to update appointment", err)
	}
	if appt == nil {
		return nil, apperr.NotFound("Appointment not found")
	}
	return appt, nil
}

// MyPatients aggregates the acting doctor's appointments per patient:
// appointment count, deduplicated reasons, and the latest reason and date.
// The page is cut after aggregation.
func (s *Service) MyPatients(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*PatientAggregate, int, error) {
	doctor, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	appts, err := s.appointments.ListAllByDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, 0, apperr.Internal("Failed to list patients", err)
	}

	byPatient := make(map[uuid.UUID]*PatientAggregate)
	var order []uuid.UUID
	for _, a := range appts {
		agg, ok := byPatient[a.PatientID]
		if !ok {
			// Appointments arrive newest created first, so the first
			// one seen is the latest.
			agg = &PatientAggregate{
				LatestAppointmentReason: a.Reason,
				LatestAppointmentDate:   a.AppointmentDate,
			}
			byPatient[a.PatientID] = agg
			order = append(order, a.PatientID)
		}
		agg.TotalAppointments++
		if !containsString(agg.AppointmentReasons, a.Reason) {
			agg.AppointmentReasons = append(agg.AppointmentReasons, a.Reason)
		}
	}

	total := len(order)
	if offset >= total {
		return []*PatientAggregate{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*PatientAggregate, 0, end-offset)
	for _, id := range order[offset:end] {
		p, err := s.patients.GetByID(ctx, id)
		if err != nil {
			return nil, 0, apperr.Internal("Failed to list patients", err)
		}
		agg := byPatient[id]
		agg.Patient = p
		page = append(page, agg)
	}
	return page, total, nil
}

// DoctorStats assembles the per-doctor overview. Today is the local
// calendar date.
func (s *Service) DoctorStats(ctx context.Context, userID uuid.UUID) (*DoctorStats, error) {
	doctor, err := s.resolveDoctor(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &DoctorStats{}
	if stats.TotalAppointments, err = s.appointments.CountByDoctor(ctx, doctor.ID, ""); err != nil {
		return nil, apperr.Internal("Failed to load stats", err)
	}
	if stats.PendingAppointments, err = s.appointments.CountByDoctor(ctx, doctor.ID, StatusPending); err != nil {
		return nil, apperr.Internal("Failed to load stats", err)
	}
	if stats.CompletedAppointments, err = s.appointments.CountByDoctor(ctx, doctor.ID, StatusCompleted); err != nil {
		return nil, apperr.Internal("Failed to load stats", err)
	}
	if stats.TotalPatients, err = s.appointments.CountDistinctPatients(ctx, doctor.ID); err != nil {
		return nil, apperr.Internal("Failed to load stats", err)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if stats.TodayAppointments, err = s.appointments.CountOnDate(ctx, doctor.ID, today); err != nil {
		return nil, apperr.Internal("Failed to load stats", err)
	}
	return stats, nil
}

func (s *Service) resolveDoctor(ctx context.Context, userID uuid.UUID) (*identity.Doctor, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to resolve doctor", err)
	}
	if doctor == nil {
		return nil, apperr.NotFound("Doctor profile not found")
	}
	return doctor, nil
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
