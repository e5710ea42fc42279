package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/store"
)

// ExamPatch carries exam fields for create and update. On update a nil
// field is left unchanged and an empty Description clears it.
type ExamPatch struct {
	Name        *string
	Specialty   *string
	Description *string
	Price       *decimal.Decimal
}

func (s *Service) ListExams(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.exams.ListExams(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

func (s *Service) ExamsBySpecialty(ctx context.Context, specialty string) ([]model.Exam, error) {
	exams, err := s.exams.ExamsBySpecialty(ctx, specialty)
	if err != nil {
		return nil, fmt.Errorf("exams by specialty: %w", err)
	}
	return exams, nil
}

func (s *Service) GetExam(ctx context.Context, id int64) (*model.Exam, error) {
	return s.lookupExam(ctx, id)
}

func (s *Service) CreateExam(ctx context.Context, p ExamPatch) (*model.Exam, error) {
	var e model.Exam
	switch {
	case p.Name == nil || strings.TrimSpace(*p.Name) == "":
		return nil, fmt.Errorf("%w: name", ErrMissingField)
	case p.Specialty == nil || strings.TrimSpace(*p.Specialty) == "":
		return nil, fmt.Errorf("%w: specialty", ErrMissingField)
	}
	if err := applyExamPatch(&e, p); err != nil {
		return nil, err
	}

	if err := s.exams.CreateExam(ctx, &e); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}
	s.log.Info().Int64("exam_id", e.ID).Str("name", e.Name).Msg("exam created")
	return &e, nil
}

func (s *Service) UpdateExam(ctx context.Context, id int64, p ExamPatch) (*model.Exam, error) {
	e, err := s.lookupExam(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyExamPatch(e, p); err != nil {
		return nil, err
	}

	err = s.exams.UpdateExam(ctx, e)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update exam %d: %w", id, err)
	}
	return e, nil
}

// DeleteExam removes an exam that no appointment references.
func (s *Service) DeleteExam(ctx context.Context, id int64) error {
	err := s.exams.DeleteExam(ctx, id)
	switch {
	case err == nil:
		s.log.Info().Int64("exam_id", id).Msg("exam deleted")
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrExamNotFound
	case errors.Is(err, store.ErrReferenced):
		return ErrExamInUse
	}
	return fmt.Errorf("delete exam %d: %w", id, err)
}

func applyExamPatch(e *model.Exam, p ExamPatch) error {
	if p.Name != nil && *p.Name != "" {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return fmt.Errorf("%w: name", ErrMissingField)
		}
		if err := checkLen("name", name, maxNameLen); err != nil {
			return err
		}
		e.Name = name
	}
	if p.Specialty != nil && *p.Specialty != "" {
		specialty := strings.TrimSpace(*p.Specialty)
		if specialty == "" {
			return fmt.Errorf("%w: specialty", ErrMissingField)
		}
		if err := checkLen("specialty", specialty, maxNameLen); err != nil {
			return err
		}
		e.Specialty = specialty
	}
	if p.Description != nil {
		e.Description = optionalText(p.Description)
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: price must not be negative", ErrInvalidField)
		}
		price := p.Price.Round(2)
		e.Price = &price
	}
	return nil
}
