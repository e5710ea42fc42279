package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"exam-scheduler/internal/model"
)

// ListQuery holds the raw query-string filters; empty means unfiltered.
type ListQuery struct {
	Status    string
	StartDate string
	EndDate   string
}

// List returns appointments matching q in ascending dateTime order. Both
// date bounds are inclusive.
func (s *Service) List(ctx context.Context, q ListQuery) ([]model.Appointment, error) {
	var f model.AppointmentFilter

	if v := strings.TrimSpace(q.Status); v != "" {
		st := model.Status(v)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
		}
		f.Status = &st
	}
	if v := strings.TrimSpace(q.StartDate); v != "" {
		t, err := s.parseBound("startDate", v, false)
		if err != nil {
			return nil, err
		}
		f.From = &t
	}
	if v := strings.TrimSpace(q.EndDate); v != "" {
		t, err := s.parseBound("endDate", v, true)
		if err != nil {
			return nil, err
		}
		f.To = &t
	}

	out, err := s.appointments.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// parseBound accepts full timestamps and bare dates. A bare end date covers
// the whole day.
func (s *Service) parseBound(field, raw string, end bool) (time.Time, error) {
	if d, err := time.ParseInLocation(time.DateOnly, raw, s.loc); err == nil {
		if end {
			return d.AddDate(0, 0, 1).Add(-time.Microsecond), nil
		}
		return d, nil
	}
	return s.parseTime(field, raw)
}
