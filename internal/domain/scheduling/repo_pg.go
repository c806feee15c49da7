package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) AppointmentRepository { return &repoPG{pool: pool} }

const apptCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.time_slot,
	a.status, a.reason, a.notes, a.created_at, a.updated_at`

const apptJoinedCols = apptCols + `,
	p.id, p.name, p.email, p.phone, p.age, p.gender,
	d.id, d.name, d.specialization`

const apptJoins = `
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.TimeSlot,
		&a.Status, &a.Reason, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanJoinedAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var ps PatientSummary
	var ds DoctorSummary
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.TimeSlot,
		&a.Status, &a.Reason, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&ps.ID, &ps.Name, &ps.Email, &ps.Phone, &ps.Age, &ps.Gender,
		&ds.ID, &ds.Name, &ds.Specialization)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Patient = &ps
	a.Doctor = &ds
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, appointment_date, time_slot, status, reason, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.PatientID, a.DoctorID, a.AppointmentDate, a.TimeSlot, a.Status, a.Reason, a.Notes)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("This time slot is already booked")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanJoinedAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptJoinedCols+apptJoins+` WHERE a.id = $1`, id))
}

func (r *repoPG) BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT time_slot FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2
		  AND status IN ('pending','confirmed')
		ORDER BY time_slot ASC`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var slots []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *repoPG) ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptJoinedCols+apptJoins+`
		ORDER BY a.appointment_date DESC, a.time_slot DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectJoined(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, status string, limit, offset int) ([]*Appointment, int, error) {
	where := ` WHERE a.doctor_id = $1`
	countQuery := `SELECT COUNT(*) FROM appointments a` + where
	args := []interface{}{doctorID}
	if status != "" {
		where += ` AND a.status = $2`
		countQuery = `SELECT COUNT(*) FROM appointments a WHERE a.doctor_id = $1 AND a.status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + apptJoinedCols + apptJoins + where + `
		ORDER BY a.appointment_date ASC, a.time_slot ASC`
	if status != "" {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := collectJoined(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repoPG) ListAllByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointments a
		WHERE a.doctor_id = $1
		ORDER BY a.created_at DESC`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) UpdateStatus(ctx context.Context, id, doctorID uuid.UUID, status string, notes *string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments a SET status = $3, notes = COALESCE($4, notes), updated_at = NOW()
		WHERE a.id = $1 AND a.doctor_id = $2
		RETURNING `+apptCols, id, doctorID, status, notes)
	return scanAppointment(row)
}

func (r *repoPG) HasAppointment(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments WHERE doctor_id = $1 AND patient_id = $2
		)`, doctorID, patientID).Scan(&exists)
	return exists, err
}

func (r *repoPG) Count(ctx context.Context, status string) (int, error) {
	var n int
	var err error
	if status == "" {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n)
	} else {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE status = $1`, status).Scan(&n)
	}
	return n, err
}

func (r *repoPG) CountByDoctor(ctx context.Context, doctorID uuid.UUID, status string) (int, error) {
	var n int
	var err error
	if status == "" {
		err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE doctor_id = $1`, doctorID).Scan(&n)
	} else {
		err = r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND status = $2`, doctorID, status).Scan(&n)
	}
	return n, err
}

func (r *repoPG) CountDistinctPatients(ctx context.Context, doctorID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT patient_id) FROM appointments WHERE doctor_id = $1`, doctorID).Scan(&n)
	return n, err
}

func (r *repoPG) CountOnDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND appointment_date = $2`, doctorID, date).Scan(&n)
	return n, err
}

func (r *repoPG) Recent(ctx context.Context, n int) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptJoinedCols+apptJoins+`
		ORDER BY a.created_at DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJoined(rows)
}

func collectJoined(rows pgx.Rows) ([]*Appointment, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := scanJoinedAppointment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
