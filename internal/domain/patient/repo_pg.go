package patient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const patientCols = `id, name, email, phone, age, gender, description,
	medical_history, billing_amount, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var history []byte
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Age, &p.Gender, &p.Description,
		&history, &p.BillingAmount, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.MedicalHistory); err != nil {
			return nil, fmt.Errorf("decode medical history: %w", err)
		}
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	history, err := json.Marshal(p.MedicalHistory)
	if err != nil {
		return fmt.Errorf("encode medical history: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, phone, age, gender, description, medical_history, billing_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Name, p.Email, p.Phone, p.Age, p.Gender, p.Description, history, p.BillingAmount)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `
		SELECT `+patientCols+` FROM patients WHERE email = $1
		ORDER BY created_at ASC LIMIT 1`, email))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET name=$2, email=$3, phone=$4, age=$5, gender=$6,
			description=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Email, p.Phone, p.Age, p.Gender, p.Description)
	return err
}

func (r *repoPG) UpdateMedicalHistory(ctx context.Context, id uuid.UUID, records []MedicalRecord) error {
	history, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode medical history: %w", err)
	}
	_, err = r.pool.Exec(ctx, `UPDATE patients SET medical_history=$2, updated_at=NOW() WHERE id = $1`, id, history)
	return err
}

func (r *repoPG) UpdateBilling(ctx context.Context, id uuid.UUID, amount float64) error {
	_, err := r.pool.Exec(ctx, `UPDATE patients SET billing_amount=$2, updated_at=NOW() WHERE id = $1`, id, amount)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patients
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n)
	return n, err
}
