package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists login accounts. Get methods return (nil, nil) when
// no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DoctorRepository persists doctor profiles. Get methods return (nil, nil)
// when no row matches.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	UpdateAvailability(ctx context.Context, id uuid.UUID, rules []DayRule) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
	ListActive(ctx context.Context, specialization string) ([]*Doctor, error)
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
}
