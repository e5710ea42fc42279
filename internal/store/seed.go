package store

import (
	"context"

	"github.com/shopspring/decimal"

	"exam-scheduler/internal/model"
)

func strPtr(s string) *string { return &s }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// DefaultExams is the starter catalog inserted into an empty database.
func DefaultExams() []model.Exam {
	return []model.Exam{
		{Name: "Hemograma Completo", Specialty: "Hematologia", Description: strPtr("Análise completa das células sanguíneas"), Price: price("45.00")},
		{Name: "Raio-X Tórax", Specialty: "Radiologia", Description: strPtr("Imagem radiográfica da região torácica"), Price: price("80.00")},
		{Name: "Eletrocardiograma", Specialty: "Cardiologia", Description: strPtr("Registro da atividade elétrica do coração"), Price: price("120.00")},
		{Name: "Ultrassom Abdominal", Specialty: "Radiologia", Description: strPtr("Exame de imagem do abdômen por ultrassonografia"), Price: price("150.00")},
		{Name: "Ressonância Magnética", Specialty: "Radiologia", Description: strPtr("Exame de imagem por ressonância magnética"), Price: price("450.00")},
		{Name: "Glicemia em Jejum", Specialty: "Bioquímica", Description: strPtr("Medição dos níveis de glicose no sangue"), Price: price("25.00")},
		{Name: "Colesterol Total e Frações", Specialty: "Bioquímica", Description: strPtr("Análise do perfil lipídico"), Price: price("55.00")},
		{Name: "TSH e T4 Livre", Specialty: "Endocrinologia", Description: strPtr("Avaliação da função tireoidiana"), Price: price("85.00")},
	}
}

// SeedExams inserts exams in one transaction when the catalog is empty and
// returns how many rows it wrote.
func (s *Store) SeedExams(ctx context.Context, exams []model.Exam) (int, error) {
	const op = "store.SeedExams"

	n, err := s.CountExams(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, translate(op, err)
	}
	defer tx.Rollback(ctx)

	for _, e := range exams {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exams (name, specialty, description, price) VALUES ($1,$2,$3,$4)`,
			e.Name, e.Specialty, e.Description, e.Price,
		); err != nil {
			return 0, translate(op, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, translate(op, err)
	}
	return len(exams), nil
}
