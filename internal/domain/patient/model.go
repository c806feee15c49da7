package patient

import (
	"time"

	"github.com/google/uuid"
)

// Genders is the closed set accepted on intake and updates.
var Genders = []string{"Male", "Female", "Other"}

var genderSet = func() map[string]bool {
	m := make(map[string]bool, len(Genders))
	for _, g := range Genders {
		m[g] = true
	}
	return m
}()

// IsValidGender reports whether g is a known gender value.
func IsValidGender(g string) bool {
	return genderSet[g]
}

// MedicalRecord is one entry of a patient's history. DoctorID is the doctor
// who wrote or last rewrote the entry.
type MedicalRecord struct {
	Disease    string    `json:"disease"`
	Diagnosis  string    `json:"diagnosis"`
	Treatment  string    `json:"treatment"`
	DoctorID   uuid.UUID `json:"doctor_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Patient maps to the patients table. MedicalHistory is stored as an ordered
// jsonb list; BillingAmount stays nil until a doctor sets it.
type Patient struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Email          string          `db:"email" json:"email"`
	Phone          string          `db:"phone" json:"phone"`
	Age            int             `db:"age" json:"age"`
	Gender         string          `db:"gender" json:"gender"`
	Description    *string         `db:"description" json:"description,omitempty"`
	MedicalHistory []MedicalRecord `db:"medical_history" json:"medical_history"`
	BillingAmount  *float64        `db:"billing_amount" json:"billing_amount,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
