package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"exam-scheduler/internal/model"
)

const examCols = `id, name, specialty, description, price`

func scanExam(row pgx.Row) (*model.Exam, error) {
	var (
		e     model.Exam
		price decimal.NullDecimal
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Specialty, &e.Description, &price); err != nil {
		return nil, err
	}
	if price.Valid {
		e.Price = &price.Decimal
	}
	return &e, nil
}

func (s *Store) listExams(ctx context.Context, op, q string, args ...any) ([]model.Exam, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, translate(op, err)
	}
	defer rows.Close()

	out := []model.Exam{}
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, translate(op, err)
		}
		out = append(out, *e)
	}
	return out, translate(op, rows.Err())
}

func (s *Store) ListExams(ctx context.Context) ([]model.Exam, error) {
	return s.listExams(ctx, "store.ListExams",
		`SELECT `+examCols+` FROM exams ORDER BY specialty, name, id`)
}

func (s *Store) ExamsBySpecialty(ctx context.Context, specialty string) ([]model.Exam, error) {
	return s.listExams(ctx, "store.ExamsBySpecialty",
		`SELECT `+examCols+` FROM exams WHERE specialty = $1 ORDER BY name, id`, specialty)
}

func (s *Store) GetExam(ctx context.Context, id int64) (*model.Exam, error) {
	e, err := scanExam(s.pool.QueryRow(ctx, `SELECT `+examCols+` FROM exams WHERE id = $1`, id))
	if err != nil {
		return nil, translate("store.GetExam", err)
	}
	return e, nil
}

func (s *Store) CreateExam(ctx context.Context, e *model.Exam) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO exams (name, specialty, description, price) VALUES ($1,$2,$3,$4) RETURNING id`,
		e.Name, e.Specialty, e.Description, e.Price,
	).Scan(&e.ID)
	return translate("store.CreateExam", err)
}

func (s *Store) UpdateExam(ctx context.Context, e *model.Exam) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE exams SET name=$1, specialty=$2, description=$3, price=$4 WHERE id=$5`,
		e.Name, e.Specialty, e.Description, e.Price, e.ID,
	)
	if err != nil {
		return translate("store.UpdateExam", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("store.UpdateExam", pgx.ErrNoRows)
	}
	return nil
}

// DeleteExam fails with ErrReferenced while appointments still point at it.
func (s *Store) DeleteExam(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	if err != nil {
		return translate("store.DeleteExam", err)
	}
	if tag.RowsAffected() == 0 {
		return translate("store.DeleteExam", pgx.ErrNoRows)
	}
	return nil
}

func (s *Store) CountExams(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`).Scan(&n)
	return n, translate("store.CountExams", err)
}
