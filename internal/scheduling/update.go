package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/store"
)

// Patch is a partial appointment edit. A nil field leaves the stored value
// alone; an empty PatientPhone or Notes clears it.
type Patch struct {
	PatientName  *string
	PatientEmail *string
	PatientPhone *string
	ExamID       *int64
	DateTime     *string
	Notes        *string
	Status       *string
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Appointment, error) {
	a, err := s.appointments.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment %d: %w", id, err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.appointments.DeleteAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	s.log.Info().Int64("appointment_id", id).Msg("appointment deleted")
	return nil
}

// Update applies p to appointment id. Status is overwritten without a
// legality check, and the date is not required to be in the future. A move
// to another exam or time that leaves the record scheduled must land on a
// free slot.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (*model.Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *a

	if p.PatientName != nil && *p.PatientName != "" {
		name := strings.TrimSpace(*p.PatientName)
		if name == "" {
			return nil, fmt.Errorf("%w: patientName", ErrMissingField)
		}
		if err := checkLen("patientName", name, maxNameLen); err != nil {
			return nil, err
		}
		a.PatientName = name
	}
	if p.PatientEmail != nil && *p.PatientEmail != "" {
		email := strings.TrimSpace(*p.PatientEmail)
		if err := checkEmail(email); err != nil {
			return nil, err
		}
		a.PatientEmail = email
	}
	if p.PatientPhone != nil {
		phone, err := s.normalizePhone(p.PatientPhone)
		if err != nil {
			return nil, err
		}
		a.PatientPhone = phone
	}
	if p.Notes != nil {
		a.Notes = optionalText(p.Notes)
	}
	if p.DateTime != nil && strings.TrimSpace(*p.DateTime) != "" {
		at, err := s.parseTime("dateTime", *p.DateTime)
		if err != nil {
			return nil, err
		}
		a.DateTime = at
	}
	if p.Status != nil {
		st := model.Status(*p.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *p.Status)
		}
		a.Status = st
	}
	if p.ExamID != nil && *p.ExamID != 0 && *p.ExamID != a.ExamID {
		exam, err := s.lookupExam(ctx, *p.ExamID)
		if err != nil {
			return nil, err
		}
		a.ExamID = exam.ID
		a.Exam = exam
	}

	moved := a.ExamID != before.ExamID || !a.DateTime.Equal(before.DateTime)
	reopened := a.Status != before.Status
	if a.Status == model.StatusScheduled && (moved || reopened) {
		if err := s.checkSlot(ctx, a.ExamID, a.DateTime, a.ID); err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	if a.Status != before.Status {
		s.announce(ctx, *a, before.Status)
	}
	return a, nil
}

// save persists a, mapping store failures onto the service's errors.
func (s *Service) save(ctx context.Context, a *model.Appointment) error {
	err := s.appointments.UpdateAppointment(ctx, a)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrSlotConflict
	case errors.Is(err, store.ErrReferenced):
		return ErrExamNotFound
	}
	return fmt.Errorf("update appointment %d: %w", a.ID, err)
}

func (s *Service) announce(ctx context.Context, a model.Appointment, from model.Status) {
	if err := s.notifier.StatusChanged(ctx, a, from); err != nil {
		s.log.Warn().Err(err).Int64("appointment_id", a.ID).Msg("status notification failed")
	}
}
