package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"exam-scheduler/internal/model"
)

const appointmentSelect = `SELECT a.id, a.patient_name, a.patient_email, a.patient_phone,
	a.exam_id, a.date_time, a.notes, a.status, a.created_at, a.updated_at,
	e.id, e.name, e.specialty, e.description, e.price
	FROM appointments a JOIN exams e ON e.id = a.exam_id`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a     model.Appointment
		e     model.Exam
		price decimal.NullDecimal
	)
	err := row.Scan(
		&a.ID, &a.PatientName, &a.PatientEmail, &a.PatientPhone,
		&a.ExamID, &a.DateTime, &a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		&e.ID, &e.Name, &e.Specialty, &e.Description, &price,
	)
	if err != nil {
		return nil, err
	}
	if price.Valid {
		e.Price = &price.Decimal
	}
	a.Exam = &e
	return &a, nil
}

// CreateAppointment inserts a and fills in its id and timestamps. A second
// scheduled booking for the same slot surfaces as ErrConflict.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (patient_name, patient_email, patient_phone, exam_id, date_time, notes, status)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id, created_at, updated_at`,
		a.PatientName, a.PatientEmail, a.PatientPhone, a.ExamID, a.DateTime, a.Notes, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate("store.CreateAppointment", err)
}

// ListAppointments returns the appointments matching f ordered by date_time.
func (s *Store) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	const op = "store.ListAppointments"

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != nil {
		where = append(where, "a.status = "+arg(string(*f.Status)))
	}
	if f.ExamID != 0 {
		where = append(where, "a.exam_id = "+arg(f.ExamID))
	}
	if f.From != nil {
		where = append(where, "a.date_time >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "a.date_time <= "+arg(*f.To))
	}
	if f.ExcludeID != 0 {
		where = append(where, "a.id <> "+arg(f.ExcludeID))
	}

	q := appointmentSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY a.date_time, a.id"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		out = append(out, *a)
	}
	return out, translate(op, rows.Err())
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, translate("store.GetAppointment", err)
	}
	return a, nil
}

// UpdateAppointment writes every mutable column of a and refreshes
// a.UpdatedAt.
func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE appointments
		 SET patient_name=$1, patient_email=$2, patient_phone=$3, exam_id=$4,
		     date_time=$5, notes=$6, status=$7, updated_at=NOW()
		 WHERE id=$8
		 RETURNING updated_at`,
		a.PatientName, a.PatientEmail, a.PatientPhone, a.ExamID,
		a.DateTime, a.Notes, a.Status, a.ID,
	).Scan(&a.UpdatedAt)
	return translate("store.UpdateAppointment", err)
}

func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return translate("store.DeleteAppointment", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("store.DeleteAppointment", pgx.ErrNoRows)
	}
	return nil
}
