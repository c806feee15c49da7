package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, email, password_hash, role, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1,$2,$3,$4)`,
		u.ID, u.Email, u.PasswordHash, u.Role)
	if isUniqueViolation(err) {
		return apperr.Conflict("User with this email already exists")
	}
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET email=$2, password_hash=$3, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Email, u.PasswordHash)
	if isUniqueViolation(err) {
		return apperr.Conflict("User with this email already exists")
	}
	return err
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `d.id, d.user_id, d.name, d.specialization, d.phone, d.experience,
	d.qualification, d.availability, d.is_active, d.created_at, d.updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var avail []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialization, &d.Phone, &d.Experience,
		&d.Qualification, &avail, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(avail) > 0 {
		if err := json.Unmarshal(avail, &d.Availability); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}
	return &d, nil
}

func scanDoctorWithEmail(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var avail []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Specialization, &d.Phone, &d.Experience,
		&d.Qualification, &avail, &d.IsActive, &d.CreatedAt, &d.UpdatedAt, &d.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(avail) > 0 {
		if err := json.Unmarshal(avail, &d.Availability); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	avail, err := json.Marshal(d.Availability)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO doctors (id, user_id, name, specialization, phone, experience, qualification, availability, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.UserID, d.Name, d.Specialization, d.Phone, d.Experience, d.Qualification, avail, d.IsActive)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors d WHERE d.id = $1`, id))
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors d WHERE d.user_id = $1`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE doctors SET name=$2, specialization=$3, phone=$4, experience=$5,
			qualification=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.Phone, d.Experience, d.Qualification)
	return err
}

func (r *doctorRepoPG) UpdateAvailability(ctx context.Context, id uuid.UUID, rules []DayRule) error {
	avail, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("encode availability: %w", err)
	}
	_, err = r.pool.Exec(ctx, `UPDATE doctors SET availability=$2, updated_at=NOW() WHERE id = $1`, id, avail)
	return err
}

func (r *doctorRepoPG) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE doctors SET is_active=$2, updated_at=NOW() WHERE id = $1`, id, active)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+doctorCols+`, u.email
		FROM doctors d JOIN users u ON u.id = d.user_id
		ORDER BY d.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctorWithEmail(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *doctorRepoPG) ListActive(ctx context.Context, specialization string) ([]*Doctor, error) {
	query := `SELECT ` + doctorCols + ` FROM doctors d WHERE d.is_active`
	var args []interface{}
	if specialization != "" {
		query += ` AND d.specialization = $1`
		args = append(args, specialization)
	}
	query += ` ORDER BY d.name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n)
	return n, err
}

func (r *doctorRepoPG) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors WHERE is_active`).Scan(&n)
	return n, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
