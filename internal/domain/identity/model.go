package identity

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
)

// User maps to the users table. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Specializations is the closed set of medical specializations a doctor can
// be registered under.
var Specializations = []string{
	"Cardiology", "Dermatology", "Endocrinology", "Gastroenterology",
	"Neurology", "Oncology", "Orthopedics", "Pediatrics", "Psychiatry",
	"Radiology", "General Medicine", "Gynecology", "Ophthalmology",
	"ENT", "Urology",
}

var specializationSet = func() map[string]bool {
	m := make(map[string]bool, len(Specializations))
	for _, s := range Specializations {
		m[s] = true
	}
	return m
}()

// IsValidSpecialization reports whether s is a known specialization.
func IsValidSpecialization(s string) bool {
	return specializationSet[s]
}

// Weekdays in calendar order, matching time.Weekday.String().
var Weekdays = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var weekdaySet = func() map[string]bool {
	m := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		m[d] = true
	}
	return m
}()

// DayRule is one entry of a doctor's weekly availability. Times are wall
// clock "HH:MM" strings.
type DayRule struct {
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// Doctor maps to the doctors table. Email is joined from users on reads and
// never written through this struct.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"-" json:"email,omitempty"`
	Specialization string    `db:"specialization" json:"specialization"`
	Phone          string    `db:"phone" json:"phone"`
	Experience     int       `db:"experience" json:"experience"`
	Qualification  string    `db:"qualification" json:"qualification"`
	Availability   []DayRule `db:"availability" json:"availability"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PublicView strips roster-internal fields for the anonymous booking surface.
func (d *Doctor) PublicView() map[string]interface{} {
	return map[string]interface{}{
		"id":             d.ID,
		"name":           d.Name,
		"specialization": d.Specialization,
		"experience":     d.Experience,
		"qualification":  d.Qualification,
		"availability":   d.Availability,
	}
}

// DefaultAvailability returns the weekly template assigned to new doctors:
// Monday through Friday 09:00-17:00, weekend entries present but disabled.
func DefaultAvailability() []DayRule {
	rules := []DayRule{
		{Day: "Monday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{Day: "Tuesday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{Day: "Wednesday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{Day: "Thursday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{Day: "Friday", StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
		{Day: "Saturday", StartTime: "09:00", EndTime: "13:00", IsAvailable: false},
		{Day: "Sunday", StartTime: "09:00", EndTime: "13:00", IsAvailable: false},
	}
	return rules
}

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether s is a well-formed "HH:MM" wall clock time.
func ValidTimeOfDay(s string) bool {
	return timePattern.MatchString(s)
}

// ValidateAvailability checks a weekly rule set: known day names, no
// duplicate days, well-formed times.
func ValidateAvailability(rules []DayRule) error {
	if len(rules) == 0 {
		return apperr.Validation("Availability must not be empty", "availability")
	}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if !weekdaySet[r.Day] {
			return apperr.Validation("Invalid day name: "+r.Day, "availability")
		}
		if seen[r.Day] {
			return apperr.Validation("Duplicate day: "+r.Day, "availability")
		}
		seen[r.Day] = true
		if !ValidTimeOfDay(r.StartTime) || !ValidTimeOfDay(r.EndTime) {
			return apperr.Validation("Times must be in HH:MM format", "availability")
		}
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
