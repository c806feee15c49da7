package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type Service struct {
	users   UserRepository
	doctors DoctorRepository
	tokens  *auth.TokenIssuer
}

func NewService(users UserRepository, doctors DoctorRepository, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, doctors: doctors, tokens: tokens}
}

// AuthResult is returned on successful login.
type AuthResult struct {
	Token  string  `json:"token"`
	User   *User   `json:"user"`
	Doctor *Doctor `json:"doctor,omitempty"`
}

// Login verifies credentials and issues an access token. Doctors get their
// profile attached to the result.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required", "email", "password")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}
	if user == nil {
		return nil, apperr.Authentication("Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Authentication("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperr.Internal("Login failed", err)
	}

	result := &AuthResult{Token: token, User: user}
	if user.Role == RoleDoctor {
		doctor, err := s.doctors.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, apperr.Internal("Login failed", err)
		}
		result.Doctor = doctor
	}
	return result, nil
}

// Profile returns the authenticated account, with the doctor profile attached
// for doctor accounts.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to load profile", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}

	result := &AuthResult{User: user}
	if user.Role == RoleDoctor {
		doctor, err := s.doctors.GetByUserID(ctx, user.ID)
		if err != nil {
			return nil, apperr.Internal("Failed to load profile", err)
		}
		result.Doctor = doctor
	}
	return result, nil
}

// CreateDoctorInput carries the admin-supplied fields for a new doctor.
type CreateDoctorInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
	Experience     int    `json:"experience"`
	Qualification  string `json:"qualification"`
}

func (in *CreateDoctorInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Email) == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if in.Specialization == "" {
		missing = append(missing, "specialization")
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(in.Qualification) == "" {
		missing = append(missing, "qualification")
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing required fields", missing...)
	}
	if !ValidEmail(normalizeEmail(in.Email)) {
		return apperr.Validation("Invalid email address", "email")
	}
	if len(in.Password) < 6 {
		return apperr.Validation("Password must be at least 6 characters", "password")
	}
	if !IsValidSpecialization(in.Specialization) {
		return apperr.Validation("Unknown specialization: "+in.Specialization, "specialization")
	}
	if in.Experience < 0 || in.Experience > 50 {
		return apperr.Validation("Experience must be between 0 and 50 years", "experience")
	}
	return nil
}

// CreateDoctor provisions a login account and a doctor profile with the
// default weekly availability. The returned token lets the new doctor sign
// in without a separate login round trip.
func (s *Service) CreateDoctor(ctx context.Context, in CreateDoctorInput) (*Doctor, string, error) {
	if err := in.validate(); err != nil {
		return nil, "", err
	}

	email := normalizeEmail(in.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", apperr.Internal("Failed to create doctor", err)
	}
	if existing != nil {
		return nil, "", apperr.Conflict("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Internal("Failed to create doctor", err)
	}

	user := &User{Email: email, PasswordHash: string(hash), Role: RoleDoctor}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	doctor := &Doctor{
		UserID:         user.ID,
		Name:           strings.TrimSpace(in.Name),
		Specialization: in.Specialization,
		Phone:          strings.TrimSpace(in.Phone),
		Experience:     in.Experience,
		Qualification:  strings.TrimSpace(in.Qualification),
		Availability:   DefaultAvailability(),
		IsActive:       true,
	}
	if err := s.doctors.Create(ctx, doctor); err != nil {
		// Roll back the orphaned account so the email can be reused.
		_ = s.users.Delete(ctx, user.ID)
		return nil, "", apperr.Internal("Failed to create doctor", err)
	}
	doctor.Email = email

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", apperr.Internal("Failed to create doctor", err)
	}
	return doctor, token, nil
}

// UpdateDoctorInput carries the editable roster fields. Nil pointers leave
// the current value untouched. Email and Password update the linked login
// account.
type UpdateDoctorInput struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	Specialization *string `json:"specialization"`
	Phone          *string `json:"phone"`
	Experience     *int    `json:"experience"`
	Qualification  *string `json:"qualification"`
}

// UpdateDoctor applies a partial update to a doctor's roster fields.
func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, in UpdateDoctorInput) (*Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to update doctor", err)
	}
	if doctor == nil {
		return nil, apperr.NotFound("Doctor not found")
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("Name must not be empty", "name")
		}
		doctor.Name = strings.TrimSpace(*in.Name)
	}
	if in.Specialization != nil {
		if !IsValidSpecialization(*in.Specialization) {
			return nil, apperr.Validation("Unknown specialization: "+*in.Specialization, "specialization")
		}
		doctor.Specialization = *in.Specialization
	}
	if in.Phone != nil {
		if strings.TrimSpace(*in.Phone) == "" {
			return nil, apperr.Validation("Phone must not be empty", "phone")
		}
		doctor.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Experience != nil {
		if *in.Experience < 0 || *in.Experience > 50 {
			return nil, apperr.Validation("Experience must be between 0 and 50 years", "experience")
		}
		doctor.Experience = *in.Experience
	}
	if in.Qualification != nil {
		doctor.Qualification = strings.TrimSpace(*in.Qualification)
	}

	if in.Email != nil || in.Password != nil {
		user, err := s.users.GetByID(ctx, doctor.UserID)
		if err != nil {
			return nil, apperr.Internal("Failed to update doctor", err)
		}
		if user == nil {
			return nil, apperr.Internal("Failed to update doctor", errDanglingAccount)
		}
		if in.Email != nil {
			email := normalizeEmail(*in.Email)
			if !ValidEmail(email) {
				return nil, apperr.Validation("Invalid email address", "email")
			}
			user.Email = email
		}
		if in.Password != nil {
			if len(*in.Password) < 6 {
				return nil, apperr.Validation("Password must be at least 6 characters", "password")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, apperr.Internal("Failed to update doctor", err)
			}
			user.PasswordHash = string(hash)
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		doctor.Email = user.Email
	}

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, apperr.Internal("Failed to update doctor", err)
	}
	return doctor, nil
}

// DeleteDoctor removes a doctor profile and its login account.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return apperr.Internal("Failed to delete doctor", err)
	}
	if doctor == nil {
		return apperr.NotFound("Doctor not found")
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return apperr.Internal("Failed to delete doctor", err)
	}
	if err := s.users.Delete(ctx, doctor.UserID); err != nil {
		return apperr.Internal("Failed to delete doctor", err)
	}
	return nil
}

// ListDoctors returns the full roster, newest first, with account emails.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	items, total, err := s.doctors.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("Failed to list doctors", err)
	}
	return items, total, nil
}

// ToggleDoctorStatus flips a doctor between active and inactive.
func (s *Service) ToggleDoctorStatus(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	doctor, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to update doctor status", err)
	}
	if doctor == nil {
		return nil, apperr.NotFound("Doctor not found")
	}
	doctor.IsActive = !doctor.IsActive
	if err := s.doctors.SetActive(ctx, id, doctor.IsActive); err != nil {
		return nil, apperr.Internal("Failed to update doctor status", err)
	}
	return doctor, nil
}

// ListActiveDoctors returns active doctors for the public booking surface,
// optionally filtered by specialization, sorted by name.
func (s *Service) ListActiveDoctors(ctx context.Context, specialization string) ([]*Doctor, error) {
	if specialization != "" && !IsValidSpecialization(specialization) {
		return nil, apperr.Validation("Unknown specialization: "+specialization, "specialization")
	}
	items, err := s.doctors.ListActive(ctx, specialization)
	if err != nil {
		return nil, apperr.Internal("Failed to list doctors", err)
	}
	return items, nil
}

// UpdateAvailability replaces the weekly availability of the doctor owning
// the given account.
func (s *Service) UpdateAvailability(ctx context.Context, userID uuid.UUID, rules []DayRule) ([]DayRule, error) {
	doctor, err := s.doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to update availability", err)
	}
	if doctor == nil {
		return nil, apperr.NotFound("Doctor profile not found")
	}
	if err := ValidateAvailability(rules); err != nil {
		return nil, err
	}
	if err := s.doctors.UpdateAvailability(ctx, doctor.ID, rules); err != nil {
		return nil, apperr.Internal("Failed to update availability", err)
	}
	return rules, nil
}

// BootstrapAdmin creates the admin account if no account exists under the
// given email. Returns true when a new account was created.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, apperr.Validation("Admin email and password are required", "email", "password")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, apperr.Internal("Failed to bootstrap admin", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, apperr.Internal("Failed to bootstrap admin", err)
	}
	user := &User{Email: email, PasswordHash: string(hash), Role: RoleAdmin}
	if err := s.users.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

var errDanglingAccount = errors.New("doctor has no login account")

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
