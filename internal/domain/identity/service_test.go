package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type mockUserRepo struct {
	users map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperr.Conflict("User with this email already exists")
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

type mockDoctorRepo struct {
	doctors    map[uuid.UUID]*Doctor
	createFail bool
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	if m.createFail {
		return context.DeadlineExceeded
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	return m.doctors[id], nil
}

func (m *mockDoctorRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Doctor, error) {
	for _, d := range m.doctors {
		if d.UserID == userID {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) UpdateAvailability(_ context.Context, id uuid.UUID, rules []DayRule) error {
	if d, ok := m.doctors[id]; ok {
		d.Availability = rules
	}
	return nil
}

func (m *mockDoctorRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if d, ok := m.doctors[id]; ok {
		d.IsActive = active
	}
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		items = append(items, d)
	}
	return items, len(m.doctors), nil
}

func (m *mockDoctorRepo) ListActive(_ context.Context, specialization string) ([]*Doctor, error) {
	var items []*Doctor
	for _, d := range m.doctors {
		if !d.IsActive {
			continue
		}
		if specialization != "" && d.Specialization != specialization {
			continue
		}
		items = append(items, d)
	}
	return items, nil
}

func (m *mockDoctorRepo) Count(_ context.Context) (int, error) {
	return len(m.doctors), nil
}

func (m *mockDoctorRepo) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, d := range m.doctors {
		if d.IsActive {
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *mockUserRepo, *mockDoctorRepo) {
	users := newMockUserRepo()
	doctors := newMockDoctorRepo()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(users, doctors, issuer), users, doctors
}

func seedUser(t *testing.T, users *mockUserRepo, email, password, role string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &User{Email: email, PasswordHash: string(hash), Role: role}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLogin_Success(t *testing.T) {
	svc, users, _ := newTestService()
	seedUser(t, users, "admin@clinic.test", "secret123", RoleAdmin)

	result, err := svc.Login(context.Background(), "Admin@Clinic.Test", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	if result.User.Role != RoleAdmin {
		t.Errorf("role = %s", result.User.Role)
	}
	if result.Doctor != nil {
		t.Error("admin login should not attach a doctor profile")
	}
}

func TestLogin_DoctorGetsProfile(t *testing.T) {
	svc, users, doctors := newTestService()
	u := seedUser(t, users, "doc@clinic.test", "secret123", RoleDoctor)
	doctors.Create(context.Background(), &Doctor{UserID: u.ID, Name: "Dr. Chen", IsActive: true})

	result, err := svc.Login(context.Background(), "doc@clinic.test", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Doctor == nil || result.Doctor.Name != "Dr. Chen" {
		t.Fatalf("doctor profile = %+v", result.Doctor)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, users, _ := newTestService()
	seedUser(t, users, "admin@clinic.test", "secret123", RoleAdmin)

	_, err := svc.Login(context.Background(), "admin@clinic.test", "wrong")
	if apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Login(context.Background(), "nobody@clinic.test", "secret123")
	if apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestCreateDoctor_Defaults(t *testing.T) {
	svc, users, _ := newTestService()

	doctor, token, err := svc.CreateDoctor(context.Background(), CreateDoctorInput{
		Name:           "Dr. Okafor",
		Email:          "Okafor@Clinic.Test",
		Password:       "secret123",
		Specialization: "Cardiology",
		Phone:          "555-0101",
		Experience:     8,
		Qualification:  "MD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("expected a token for the new account")
	}
	if !doctor.IsActive {
		t.Error("new doctors should start active")
	}
	if len(doctor.Availability) != 7 {
		t.Errorf("availability rules = %d, want 7", len(doctor.Availability))
	}
	if doctor.Email != "okafor@clinic.test" {
		t.Errorf("email = %s, want lowercased", doctor.Email)
	}

	u, err := users.GetByEmail(context.Background(), "okafor@clinic.test")
	if err != nil || u == nil {
		t.Fatalf("login account missing: %v", err)
	}
	if u.Role != RoleDoctor {
		t.Errorf("account role = %s", u.Role)
	}
}

func TestCreateDoctor_MissingFields(t *testing.T) {
	svc, _, _ := newTestService()
	_, _, err := svc.CreateDoctor(context.Background(), CreateDoctorInput{Name: "Dr. X"})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("not an app error: %v", err)
	}
	if len(ae.Fields) == 0 || !strings.Contains(strings.Join(ae.Fields, ","), "email") {
		t.Errorf("fields = %v, want email listed", ae.Fields)
	}
}

func TestCreateDoctor_DuplicateEmail(t *testing.T) {
	svc, users, _ := newTestService()
	seedUser(t, users, "taken@clinic.test", "secret123", RoleDoctor)

	_, _, err := svc.CreateDoctor(context.Background(), CreateDoctorInput{
		Name: "Dr. Dup", Email: "taken@clinic.test", Password: "secret123",
		Specialization: "Neurology", Phone: "555-0102", Qualification: "MD",
	})
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateDoctor_RollsBackAccountOnProfileFailure(t *testing.T) {
	svc, users, doctors := newTestService()
	doctors.createFail = true

	_, _, err := svc.CreateDoctor(context.Background(), CreateDoctorInput{
		Name: "Dr. Fail", Email: "fail@clinic.test", Password: "secret123",
		Specialization: "Oncology", Phone: "555-0103", Qualification: "MD",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	u, _ := users.GetByEmail(context.Background(), "fail@clinic.test")
	if u != nil {
		t.Error("orphaned account should have been removed")
	}
}

func TestUpdateDoctor_Partial(t *testing.T) {
	svc, _, doctors := newTestService()
	d := &Doctor{Name: "Dr. Old", Specialization: "ENT", Phone: "555-0104", Experience: 3}
	doctors.Create(context.Background(), d)

	name := "Dr. New"
	exp := 10
	updated, err := svc.UpdateDoctor(context.Background(), d.ID, UpdateDoctorInput{Name: &name, Experience: &exp})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Dr. New" || updated.Experience != 10 {
		t.Errorf("got %s/%d", updated.Name, updated.Experience)
	}
	if updated.Specialization != "ENT" {
		t.Errorf("untouched field changed: %s", updated.Specialization)
	}
}

func TestUpdateDoctor_ChangesAccountCredentials(t *testing.T) {
	svc, users, doctors := newTestService()
	u := seedUser(t, users, "old@clinic.test", "secret123", RoleDoctor)
	d := &Doctor{UserID: u.ID, Name: "Dr. Cred", Specialization: "ENT", Phone: "555-0105"}
	doctors.Create(context.Background(), d)

	email := "New@Clinic.Test"
	password := "fresh-secret"
	updated, err := svc.UpdateDoctor(context.Background(), d.ID, UpdateDoctorInput{Email: &email, Password: &password})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Email != "new@clinic.test" {
		t.Errorf("email = %s", updated.Email)
	}

	account, _ := users.GetByID(context.Background(), u.ID)
	if account.Email != "new@clinic.test" {
		t.Errorf("account email = %s", account.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("fresh-secret")) != nil {
		t.Error("password was not updated")
	}
}

func TestUpdateDoctor_ShortPassword(t *testing.T) {
	svc, users, doctors := newTestService()
	u := seedUser(t, users, "short@clinic.test", "secret123", RoleDoctor)
	d := &Doctor{UserID: u.ID, Name: "Dr. Short"}
	doctors.Create(context.Background(), d)

	password := "tiny"
	_, err := svc.UpdateDoctor(context.Background(), d.ID, UpdateDoctorInput{Password: &password})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateDoctor_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	name := "Dr. Ghost"
	_, err := svc.UpdateDoctor(context.Background(), uuid.New(), UpdateDoctorInput{Name: &name})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteDoctor_RemovesAccount(t *testing.T) {
	svc, users, doctors := newTestService()
	u := seedUser(t, users, "gone@clinic.test", "secret123", RoleDoctor)
	d := &Doctor{UserID: u.ID, Name: "Dr. Gone"}
	doctors.Create(context.Background(), d)

	if err := svc.DeleteDoctor(context.Background(), d.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := doctors.GetByID(context.Background(), d.ID); got != nil {
		t.Error("doctor still present")
	}
	if got, _ := users.GetByID(context.Background(), u.ID); got != nil {
		t.Error("account still present")
	}
}

func TestToggleDoctorStatus(t *testing.T) {
	svc, _, doctors := newTestService()
	d := &Doctor{Name: "Dr. Flip", IsActive: true}
	doctors.Create(context.Background(), d)

	updated, err := svc.ToggleDoctorStatus(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IsActive {
		t.Error("expected doctor to be deactivated")
	}

	updated, err = svc.ToggleDoctorStatus(context.Background(), d.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsActive {
		t.Error("expected doctor to be reactivated")
	}
}

func TestListActiveDoctors_RejectsUnknownSpecialization(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.ListActiveDoctors(context.Background(), "Alchemy")
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAvailability_ReplacesRules(t *testing.T) {
	svc, users, doctors := newTestService()
	u := seedUser(t, users, "avail@clinic.test", "secret123", RoleDoctor)
	d := &Doctor{UserID: u.ID, Name: "Dr. Avail", Availability: DefaultAvailability()}
	doctors.Create(context.Background(), d)

	rules := []DayRule{{Day: "Saturday", StartTime: "10:00", EndTime: "14:00", IsAvailable: true}}
	got, err := svc.UpdateAvailability(context.Background(), u.ID, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Day != "Saturday" {
		t.Fatalf("rules = %+v", got)
	}
	stored, _ := doctors.GetByID(context.Background(), d.ID)
	if len(stored.Availability) != 1 {
		t.Errorf("stored rules = %d, want 1", len(stored.Availability))
	}
}

func TestUpdateAvailability_NoProfile(t *testing.T) {
	svc, _, _ := newTestService()
	rules := []DayRule{{Day: "Monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true}}
	_, err := svc.UpdateAvailability(context.Background(), uuid.New(), rules)
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBootstrapAdmin_Idempotent(t *testing.T) {
	svc, users, _ := newTestService()

	created, err := svc.BootstrapAdmin(context.Background(), "admin@clinic.test", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Fatal("first bootstrap should create the account")
	}

	created, err = svc.BootstrapAdmin(context.Background(), "admin@clinic.test", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Fatal("second bootstrap should be a no-op")
	}
	if len(users.users) != 1 {
		t.Errorf("accounts = %d, want 1", len(users.users))
	}
}
