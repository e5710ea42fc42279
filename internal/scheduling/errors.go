package scheduling

import "errors"

// Every rejection the service produces wraps exactly one of these; anything
// else coming out of the service is an internal failure.
var (
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidField      = errors.New("invalid field")
	ErrExamNotFound      = errors.New("exam not found")
	ErrPastOrPresentDate = errors.New("appointment date must be in the future")
	ErrSlotConflict      = errors.New("an appointment is already scheduled for this exam at this time")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrIllegalTransition = errors.New("status transition not allowed")
	ErrNotFound          = errors.New("appointment not found")
	ErrExamInUse         = errors.New("exam is referenced by existing appointments")
)

var classified = []error{
	ErrMissingField, ErrInvalidField, ErrExamNotFound, ErrPastOrPresentDate,
	ErrSlotConflict, ErrInvalidStatus, ErrIllegalTransition, ErrNotFound, ErrExamInUse,
}

// Classify returns the sentinel err wraps, or nil for an internal failure.
func Classify(err error) error {
	for _, c := range classified {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}

// Outcome is the metrics label for err; "ok" when err is nil.
func Outcome(err error) string {
	switch Classify(err) {
	case nil:
		if err == nil {
			return "ok"
		}
		return "internal_failure"
	case ErrMissingField:
		return "missing_field"
	case ErrInvalidField:
		return "invalid_field"
	case ErrExamNotFound:
		return "exam_not_found"
	case ErrPastOrPresentDate:
		return "past_or_present_date"
	case ErrSlotConflict:
		return "slot_conflict"
	case ErrInvalidStatus:
		return "invalid_status"
	case ErrIllegalTransition:
		return "illegal_transition"
	case ErrNotFound:
		return "not_found"
	default:
		return "exam_in_use"
	}
}
