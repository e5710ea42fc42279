package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/store"
)

// Candidate is a booking request as submitted by the client. DateTime stays
// raw so that an absent value is reported before an unparseable one.
type Candidate struct {
	PatientName  string
	PatientEmail string
	PatientPhone *string
	ExamID       int64
	DateTime     string
	Notes        *string
}

func (c Candidate) missingField() string {
	switch {
	case strings.TrimSpace(c.PatientName) == "":
		return "patientName"
	case strings.TrimSpace(c.PatientEmail) == "":
		return "patientEmail"
	case c.ExamID == 0:
		return "examId"
	case strings.TrimSpace(c.DateTime) == "":
		return "dateTime"
	}
	return ""
}

// Admit validates c and, when every check passes, persists it as a new
// scheduled appointment. Checks run in order and the first failure wins:
// required fields, exam existence, field shape, future date, free slot.
func (s *Service) Admit(ctx context.Context, c Candidate) (*model.Appointment, error) {
	a, err := s.admit(ctx, c)
	s.recorder.Admission(Outcome(err))
	if err != nil {
		return nil, err
	}

	if err := s.notifier.Booked(ctx, *a); err != nil {
		s.log.Warn().Err(err).Int64("appointment_id", a.ID).Msg("booking notification failed")
	}
	return a, nil
}

func (s *Service) admit(ctx context.Context, c Candidate) (*model.Appointment, error) {
	now := s.now()

	if field := c.missingField(); field != "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	// an unknown exam is reported whatever shape the other fields have
	exam, err := s.lookupExam(ctx, c.ExamID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(c.PatientName)
	email := strings.TrimSpace(c.PatientEmail)
	if err := checkLen("patientName", name, maxNameLen); err != nil {
		return nil, err
	}
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	phone, err := s.normalizePhone(c.PatientPhone)
	if err != nil {
		return nil, err
	}
	at, err := s.parseTime("dateTime", c.DateTime)
	if err != nil {
		return nil, err
	}

	if !at.After(now) {
		return nil, ErrPastOrPresentDate
	}

	if err := s.checkSlot(ctx, c.ExamID, at, 0); err != nil {
		return nil, err
	}

	a := &model.Appointment{
		PatientName:  name,
		PatientEmail: email,
		PatientPhone: phone,
		ExamID:       exam.ID,
		DateTime:     at,
		Notes:        optionalText(c.Notes),
		Status:       model.StatusScheduled,
	}
	if err := s.appointments.CreateAppointment(ctx, a); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			// lost the race to a concurrent booking of the same slot
			return nil, ErrSlotConflict
		case errors.Is(err, store.ErrReferenced):
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	a.Exam = exam

	s.log.Info().
		Int64("appointment_id", a.ID).
		Int64("exam_id", a.ExamID).
		Time("date_time", a.DateTime).
		Msg("appointment scheduled")
	return a, nil
}

func (s *Service) lookupExam(ctx context.Context, id int64) (*model.Exam, error) {
	exam, err := s.exams.GetExam(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup exam %d: %w", id, err)
	}
	return exam, nil
}

// checkSlot fails with ErrSlotConflict when another scheduled appointment
// holds (examID, at). excludeID skips the appointment being edited.
func (s *Service) checkSlot(ctx context.Context, examID int64, at time.Time, excludeID int64) error {
	scheduled := model.StatusScheduled
	taken, err := s.appointments.ListAppointments(ctx, model.AppointmentFilter{
		Status:    &scheduled,
		ExamID:    examID,
		From:      &at,
		To:        &at,
		ExcludeID: excludeID,
	})
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if len(taken) > 0 {
		return ErrSlotConflict
	}
	return nil
}
