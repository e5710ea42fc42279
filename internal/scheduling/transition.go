package scheduling

import (
	"context"
	"fmt"

	"exam-scheduler/internal/model"
)

var transitions = map[model.Status][]model.Status{
	model.StatusScheduled: {model.StatusConfirmed, model.StatusCancelled},
	model.StatusConfirmed: {model.StatusCompleted, model.StatusCancelled},
}

// CanTransition reports whether from may move to to under the whitelist.
// Staying put is always allowed.
func CanTransition(from, to model.Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ChangeStatus moves appointment id to status. The target is validated
// before the record is read, so an unknown status never touches storage.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status string) (*model.Appointment, error) {
	to := model.Status(status)
	if !to.Valid() {
		s.recorder.Transition("", to, Outcome(ErrInvalidStatus))
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		s.recorder.Transition("", to, Outcome(err))
		return nil, err
	}
	from := a.Status

	if from == to {
		s.recorder.Transition(from, to, Outcome(nil))
		return a, nil
	}
	if s.strict && !CanTransition(from, to) {
		s.recorder.Transition(from, to, Outcome(ErrIllegalTransition))
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	if to == model.StatusScheduled {
		// only reachable in lenient mode; reopening must not double-book
		if err := s.checkSlot(ctx, a.ExamID, a.DateTime, a.ID); err != nil {
			s.recorder.Transition(from, to, Outcome(err))
			return nil, err
		}
	}

	a.Status = to
	err = s.save(ctx, a)
	s.recorder.Transition(from, to, Outcome(err))
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("appointment_id", a.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("appointment status changed")
	s.announce(ctx, *a, from)
	return a, nil
}
