package scheduling_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/scheduling"
	"exam-scheduler/internal/scheduling/schedtest"
)

var now = time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC)

const slot = "2030-01-15T09:00:00Z"

type notifications struct {
	mu      sync.Mutex
	booked  []int64
	changed []string
	err     error
}

func (n *notifications) Booked(_ context.Context, a model.Appointment) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.booked = append(n.booked, a.ID)
	return n.err
}

func (n *notifications) StatusChanged(_ context.Context, a model.Appointment, from model.Status) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, string(from)+"->"+string(a.Status))
	return n.err
}

type outcomes struct {
	admissions  []string
	transitions []string
}

func (o *outcomes) Admission(outcome string) { o.admissions = append(o.admissions, outcome) }

func (o *outcomes) Transition(from, to model.Status, outcome string) {
	o.transitions = append(o.transitions, string(from)+"->"+string(to)+":"+outcome)
}

func newService(t *testing.T, opts ...scheduling.Option) (*scheduling.Service, *schedtest.Repo) {
	t.Helper()
	repo := schedtest.Seeded()
	opts = append([]scheduling.Option{
		scheduling.WithClock(func() time.Time { return now }),
		scheduling.WithLocation(time.UTC),
	}, opts...)
	return scheduling.NewService(repo, repo, opts...), repo
}

func candidate(repo *schedtest.Repo) scheduling.Candidate {
	return scheduling.Candidate{
		PatientName:  "Maria Silva",
		PatientEmail: "maria@example.com",
		ExamID:       repo.ExamByName("Hemograma Completo").ID,
		DateTime:     slot,
	}
}

func strPtr(s string) *string { return &s }

func TestAdmit_ValidCandidateIsScheduled(t *testing.T) {
	svc, repo := newService(t)

	c := candidate(repo)
	c.PatientPhone = strPtr("(11) 98765-4321")
	c.Notes = strPtr("jejum de 8 horas")

	a, err := svc.Admit(context.Background(), c)
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Equal(t, model.StatusScheduled, a.Status)
	require.NotNil(t, a.Exam)
	assert.Equal(t, "Hemograma Completo", a.Exam.Name)
	assert.True(t, a.DateTime.Equal(time.Date(2030, 1, 15, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, a.PatientPhone)
	assert.Equal(t, "+5511987654321", *a.PatientPhone)
	assert.Equal(t, 1, repo.Len())
}

func TestAdmit_KeepsUnrecognisedPhoneAsTyped(t *testing.T) {
	svc, repo := newService(t)
	c := candidate(repo)
	c.PatientPhone = strPtr("ramal 42")

	a, err := svc.Admit(context.Background(), c)
	require.NoError(t, err)
	require.NotNil(t, a.PatientPhone)
	assert.Equal(t, "ramal 42", *a.PatientPhone)
}

func TestAdmit_EmptyOptionalFieldsAreNull(t *testing.T) {
	svc, repo := newService(t)
	c := candidate(repo)
	c.PatientPhone = strPtr("")
	c.Notes = strPtr("")

	a, err := svc.Admit(context.Background(), c)
	require.NoError(t, err)
	assert.Nil(t, a.PatientPhone)
	assert.Nil(t, a.Notes)
}

func TestAdmit_MissingFields(t *testing.T) {
	svc, repo := newService(t)

	tests := []struct {
		name  string
		edit  func(*scheduling.Candidate)
		field string
	}{
		{"no name", func(c *scheduling.Candidate) { c.PatientName = "" }, "patientName"},
		{"blank name", func(c *scheduling.Candidate) { c.PatientName = "   " }, "patientName"},
		{"no email", func(c *scheduling.Candidate) { c.PatientEmail = "" }, "patientEmail"},
		{"no exam", func(c *scheduling.Candidate) { c.ExamID = 0 }, "examId"},
		{"no date", func(c *scheduling.Candidate) { c.DateTime = "" }, "dateTime"},
		{"missing beats malformed", func(c *scheduling.Candidate) {
			c.PatientName = ""
			c.PatientEmail = "not-an-email"
			c.DateTime = "tomorrow"
		}, "patientName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate(repo)
			tt.edit(&c)
			_, err := svc.Admit(context.Background(), c)
			require.ErrorIs(t, err, scheduling.ErrMissingField)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
	assert.Equal(t, 0, repo.Len())
}

func TestAdmit_InvalidFields(t *testing.T) {
	svc, repo := newService(t)

	tests := []struct {
		name string
		edit func(*scheduling.Candidate)
	}{
		{"email without domain", func(c *scheduling.Candidate) { c.PatientEmail = "maria@" }},
		{"email with spaces", func(c *scheduling.Candidate) { c.PatientEmail = "maria silva@example.com" }},
		{"name too long", func(c *scheduling.Candidate) { c.PatientName = strings.Repeat("á", 101) }},
		{"phone too long", func(c *scheduling.Candidate) { c.PatientPhone = strPtr(strings.Repeat("9", 21)) }},
		{"unparseable date", func(c *scheduling.Candidate) { c.DateTime = "15/01/2030 09:00" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate(repo)
			tt.edit(&c)
			_, err := svc.Admit(context.Background(), c)
			require.ErrorIs(t, err, scheduling.ErrInvalidField)
		})
	}
	assert.Equal(t, 0, repo.Len())
}

func TestAdmit_LengthsCountCharactersNotBytes(t *testing.T) {
	svc, repo := newService(t)
	c := candidate(repo)
	c.PatientName = strings.Repeat("á", 100)

	_, err := svc.Admit(context.Background(), c)
	require.NoError(t, err)
}

func TestAdmit_UnknownExam(t *testing.T) {
	svc, repo := newService(t)

	c := candidate(repo)
	c.ExamID = 9999
	_, err := svc.Admit(context.Background(), c)
	require.ErrorIs(t, err, scheduling.ErrExamNotFound)

	// exam lookup runs before the date check
	c.DateTime = "2020-01-01T09:00:00Z"
	_, err = svc.Admit(context.Background(), c)
	require.ErrorIs(t, err, scheduling.ErrExamNotFound)
	assert.Equal(t, 0, repo.Len())
}

func TestAdmit_UnknownExamWinsOverMalformedFields(t *testing.T) {
	svc, repo := newService(t)

	tests := []struct {
		name string
		edit func(*scheduling.Candidate)
	}{
		{"bad email", func(c *scheduling.Candidate) { c.PatientEmail = "not-an-email" }},
		{"bad date", func(c *scheduling.Candidate) { c.DateTime = "tomorrow" }},
		{"name too long", func(c *scheduling.Candidate) { c.PatientName = strings.Repeat("a", 101) }},
		{"phone too long", func(c *scheduling.Candidate) { c.PatientPhone = strPtr(strings.Repeat("9", 21)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate(repo)
			c.ExamID = 9999
			tt.edit(&c)
			_, err := svc.Admit(context.Background(), c)
			require.ErrorIs(t, err, scheduling.ErrExamNotFound)
		})
	}
	assert.Equal(t, 0, repo.Len())
}

func TestAdmit_RejectsPastAndPresentForEveryExam(t *testing.T) {
	svc, repo := newService(t)
	exams, err := repo.ListExams(context.Background())
	require.NoError(t, err)
	require.Len(t, exams, 8)

	for _, e := range exams {
		for _, at := range []string{now.Format(time.RFC3339), "2029-12-31T23:59:59Z", "2030-01-10T08:59:59-03:00"} {
			c := candidate(repo)
			c.ExamID = e.ID
			c.DateTime = at
			_, err := svc.Admit(context.Background(), c)
			require.ErrorIs(t, err, scheduling.ErrPastOrPresentDate, "%s at %s", e.Name, at)
		}
	}
	assert.Equal(t, 0, repo.Len())
}

func TestAdmit_OneScheduledAppointmentPerSlot(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	first, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)

	_, err = svc.Admit(ctx, candidate(repo))
	require.ErrorIs(t, err, scheduling.ErrSlotConflict)

	// same instant written with another offset
	c := candidate(repo)
	c.DateTime = "2030-01-15T06:00:00-03:00"
	_, err = svc.Admit(ctx, c)
	require.ErrorIs(t, err, scheduling.ErrSlotConflict)

	// another exam at the same time is fine
	c = candidate(repo)
	c.ExamID = repo.ExamByName("Raio-X Tórax").ID
	_, err = svc.Admit(ctx, c)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, first.ID, "cancelled")
	require.NoError(t, err)

	again, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, again.Status)
	assert.Equal(t, 3, repo.Len())
}

// slotBlind hides existing bookings from the pre-check, the way a concurrent
// request would see the table before the other insert commits.
type slotBlind struct{ *schedtest.Repo }

func (slotBlind) ListAppointments(context.Context, model.AppointmentFilter) ([]model.Appointment, error) {
	return []model.Appointment{}, nil
}

func TestAdmit_UniqueIndexViolationIsSlotConflict(t *testing.T) {
	ctx := context.Background()
	repo := schedtest.Seeded()
	svc := scheduling.NewService(repo, slotBlind{repo}, scheduling.WithClock(func() time.Time { return now }))

	_, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)
	_, err = svc.Admit(ctx, candidate(repo))
	require.ErrorIs(t, err, scheduling.ErrSlotConflict)
	assert.Equal(t, 1, repo.Len())
}

func TestAdmit_StorageFailureIsInternal(t *testing.T) {
	rec := &outcomes{}
	svc, repo := newService(t, scheduling.WithRecorder(rec))
	c := candidate(repo)
	repo.Fail = errors.New("connection reset")

	_, err := svc.Admit(context.Background(), c)
	require.Error(t, err)
	assert.Nil(t, scheduling.Classify(err))
	assert.Equal(t, []string{"internal_failure"}, rec.admissions)
}

func TestAdmit_NotifiesAndRecords(t *testing.T) {
	n := &notifications{err: errors.New("smtp down")}
	rec := &outcomes{}
	svc, repo := newService(t, scheduling.WithNotifier(n), scheduling.WithRecorder(rec))

	a, err := svc.Admit(context.Background(), candidate(repo))
	require.NoError(t, err, "notification failures never fail the booking")
	_, err = svc.Admit(context.Background(), candidate(repo))
	require.Error(t, err)

	assert.Equal(t, []int64{a.ID}, n.booked)
	assert.Equal(t, []string{"ok", "slot_conflict"}, rec.admissions)
}

func TestChangeStatus_InvalidStatusLeavesRecordUntouched(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	a, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)

	for _, s := range []string{"", "pending", "SCHEDULED", "done"} {
		_, err := svc.ChangeStatus(ctx, a.ID, s)
		require.ErrorIs(t, err, scheduling.ErrInvalidStatus, s)
	}

	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, got.Status)
	assert.Equal(t, a.UpdatedAt, got.UpdatedAt)

	// the status is checked before the record is looked up
	_, err = svc.ChangeStatus(ctx, 9999, "pending")
	require.ErrorIs(t, err, scheduling.ErrInvalidStatus)
	_, err = svc.ChangeStatus(ctx, 9999, "confirmed")
	require.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestChangeStatus_StrictLifecycle(t *testing.T) {
	ctx := context.Background()
	n := &notifications{}
	rec := &outcomes{}
	svc, repo := newService(t, scheduling.WithNotifier(n), scheduling.WithRecorder(rec))
	require.True(t, svc.Strict())

	a, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, a.ID, "completed")
	require.ErrorIs(t, err, scheduling.ErrIllegalTransition)

	got, err := svc.ChangeStatus(ctx, a.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	require.NotNil(t, got.Exam)

	got, err = svc.ChangeStatus(ctx, a.ID, "confirmed")
	require.NoError(t, err, "re-applying the current status is a no-op")
	assert.Equal(t, model.StatusConfirmed, got.Status)

	_, err = svc.ChangeStatus(ctx, a.ID, "completed")
	require.NoError(t, err)

	for _, s := range []string{"scheduled", "confirmed", "cancelled"} {
		_, err = svc.ChangeStatus(ctx, a.ID, s)
		require.ErrorIs(t, err, scheduling.ErrIllegalTransition, s)
	}

	assert.Equal(t, []string{"scheduled->confirmed", "confirmed->completed"}, n.changed)
	assert.Equal(t, []string{
		"scheduled->completed:illegal_transition",
		"scheduled->confirmed:ok",
		"confirmed->confirmed:ok",
		"confirmed->completed:ok",
		"completed->scheduled:illegal_transition",
		"completed->confirmed:illegal_transition",
		"completed->cancelled:illegal_transition",
	}, rec.transitions)
}

func TestChangeStatus_LenientOverwritesButNeverDoubleBooks(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t, scheduling.WithStrictTransitions(false))

	a, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, a.ID, "completed")
	require.NoError(t, err)

	b, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, a.ID, "scheduled")
	require.ErrorIs(t, err, scheduling.ErrSlotConflict)

	_, err = svc.ChangeStatus(ctx, b.ID, "cancelled")
	require.NoError(t, err)
	got, err := svc.ChangeStatus(ctx, a.ID, "scheduled")
	require.NoError(t, err)
	assert.Equal(t, model.StatusScheduled, got.Status)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.Status
		want     bool
	}{
		{model.StatusScheduled, model.StatusConfirmed, true},
		{model.StatusScheduled, model.StatusCancelled, true},
		{model.StatusScheduled, model.StatusCompleted, false},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusScheduled, false},
		{model.StatusCancelled, model.StatusScheduled, false},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusCancelled, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scheduling.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	a, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)

	t.Run("missing record", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, scheduling.Patch{})
		require.ErrorIs(t, err, scheduling.ErrNotFound)
	})

	t.Run("unknown exam", func(t *testing.T) {
		id := int64(9999)
		_, err := svc.Update(ctx, a.ID, scheduling.Patch{ExamID: &id})
		require.ErrorIs(t, err, scheduling.ErrExamNotFound)
	})

	t.Run("status outside the enumeration", func(t *testing.T) {
		_, err := svc.Update(ctx, a.ID, scheduling.Patch{Status: strPtr("archived")})
		require.ErrorIs(t, err, scheduling.ErrInvalidStatus)
	})

	t.Run("nullish fields", func(t *testing.T) {
		got, err := svc.Update(ctx, a.ID, scheduling.Patch{
			PatientName:  strPtr("Maria S. Souza"),
			PatientPhone: strPtr("11 3333-4444"),
			Notes:        strPtr("trazer pedido médico"),
			DateTime:     strPtr(""),
		})
		require.NoError(t, err)
		assert.Equal(t, "Maria S. Souza", got.PatientName)
		assert.Equal(t, "maria@example.com", got.PatientEmail)
		assert.True(t, got.DateTime.Equal(a.DateTime))
		require.NotNil(t, got.Notes)

		got, err = svc.Update(ctx, a.ID, scheduling.Patch{Notes: strPtr(""), PatientPhone: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, got.Notes)
		assert.Nil(t, got.PatientPhone)
		assert.Equal(t, "Maria S. Souza", got.PatientName)
	})

	t.Run("swaps exam association", func(t *testing.T) {
		ecg := repo.ExamByName("Eletrocardiograma")
		got, err := svc.Update(ctx, a.ID, scheduling.Patch{ExamID: &ecg.ID})
		require.NoError(t, err)
		assert.Equal(t, ecg.ID, got.ExamID)
		require.NotNil(t, got.Exam)
		assert.Equal(t, "Eletrocardiograma", got.Exam.Name)
	})

	t.Run("past dates are accepted", func(t *testing.T) {
		got, err := svc.Update(ctx, a.ID, scheduling.Patch{DateTime: strPtr("2020-05-01T10:00:00Z")})
		require.NoError(t, err)
		assert.Equal(t, 2020, got.DateTime.Year())
	})

	t.Run("status overwritten without legality check", func(t *testing.T) {
		got, err := svc.Update(ctx, a.ID, scheduling.Patch{Status: strPtr("completed")})
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, got.Status)
		got, err = svc.Update(ctx, a.ID, scheduling.Patch{Status: strPtr("scheduled")})
		require.NoError(t, err)
		assert.Equal(t, model.StatusScheduled, got.Status)
	})
}

func TestUpdate_MovingOntoTakenSlotConflicts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	first, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)
	c := candidate(repo)
	c.DateTime = "2030-01-15T10:00:00Z"
	second, err := svc.Admit(ctx, c)
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, scheduling.Patch{DateTime: strPtr(slot)})
	require.ErrorIs(t, err, scheduling.ErrSlotConflict)

	// editing other fields in place does not collide with itself
	_, err = svc.Update(ctx, first.ID, scheduling.Patch{Notes: strPtr("retorno")})
	require.NoError(t, err)

	// a non-scheduled record may share the slot
	_, err = svc.Update(ctx, second.ID, scheduling.Patch{DateTime: strPtr(slot), Status: strPtr("cancelled")})
	require.NoError(t, err)
}

func TestList_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	exam := repo.ExamByName("Hemograma Completo")

	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}
	put := func(ts string, st model.Status) model.Appointment {
		return repo.Put(model.Appointment{
			PatientName: "p", PatientEmail: "p@example.com",
			ExamID: exam.ID, DateTime: at(ts), Status: st,
		})
	}
	d := put("2030-02-03T08:00:00Z", model.StatusScheduled)
	b := put("2030-02-01T08:00:00Z", model.StatusConfirmed)
	put("2030-01-31T23:59:59Z", model.StatusScheduled)
	c := put("2030-02-02T12:00:00Z", model.StatusScheduled)
	put("2030-02-04T00:00:00Z", model.StatusScheduled)

	got, err := svc.List(ctx, scheduling.ListQuery{
		StartDate: "2030-02-01T08:00:00Z",
		EndDate:   "2030-02-03T08:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID, d.ID}, ids(got))
	for _, a := range got {
		assert.NotNil(t, a.Exam)
	}

	got, err = svc.List(ctx, scheduling.ListQuery{StartDate: "2030-02-01", EndDate: "2030-02-03", Status: "scheduled"})
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, d.ID}, ids(got), "a bare end date covers the whole day")

	all, err := svc.List(ctx, scheduling.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = svc.List(ctx, scheduling.ListQuery{Status: "late"})
	require.ErrorIs(t, err, scheduling.ErrInvalidStatus)
	_, err = svc.List(ctx, scheduling.ListQuery{StartDate: "next week"})
	require.ErrorIs(t, err, scheduling.ErrInvalidField)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	svc, _ := newService(t)
	got, err := svc.List(context.Background(), scheduling.ListQuery{Status: "completed"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func ids(as []model.Appointment) []int64 {
	out := make([]int64, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)
	a, err := svc.Admit(ctx, candidate(repo))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, a.ID), scheduling.ErrNotFound)
	_, err = svc.Get(ctx, a.ID)
	require.ErrorIs(t, err, scheduling.ErrNotFound)
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	t.Run("listing order", func(t *testing.T) {
		exams, err := svc.ListExams(ctx)
		require.NoError(t, err)
		require.Len(t, exams, 8)
		assert.Equal(t, "Bioquímica", exams[0].Specialty)
		assert.Equal(t, "Colesterol Total e Frações", exams[0].Name)

		radio, err := svc.ExamsBySpecialty(ctx, "Radiologia")
		require.NoError(t, err)
		names := make([]string, len(radio))
		for i, e := range radio {
			names[i] = e.Name
		}
		assert.Equal(t, []string{"Raio-X Tórax", "Ressonância Magnética", "Ultrassom Abdominal"}, names)
	})

	t.Run("create requires name and specialty", func(t *testing.T) {
		_, err := svc.CreateExam(ctx, scheduling.ExamPatch{Name: strPtr("Urina Tipo 1")})
		require.ErrorIs(t, err, scheduling.ErrMissingField)
	})

	t.Run("negative price", func(t *testing.T) {
		p := decimal.NewFromInt(-1)
		_, err := svc.CreateExam(ctx, scheduling.ExamPatch{Name: strPtr("X"), Specialty: strPtr("Y"), Price: &p})
		require.ErrorIs(t, err, scheduling.ErrInvalidField)
	})

	t.Run("create update delete", func(t *testing.T) {
		p := decimal.RequireFromString("30.5")
		e, err := svc.CreateExam(ctx, scheduling.ExamPatch{
			Name:        strPtr("Urina Tipo 1"),
			Specialty:   strPtr("Bioquímica"),
			Description: strPtr("Exame de urina"),
			Price:       &p,
		})
		require.NoError(t, err)
		assert.Equal(t, "30.5", e.Price.String())

		e, err = svc.UpdateExam(ctx, e.ID, scheduling.ExamPatch{Description: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, e.Description)
		assert.Equal(t, "Urina Tipo 1", e.Name)

		require.NoError(t, svc.DeleteExam(ctx, e.ID))
		require.ErrorIs(t, svc.DeleteExam(ctx, e.ID), scheduling.ErrExamNotFound)
		_, err = svc.GetExam(ctx, e.ID)
		require.ErrorIs(t, err, scheduling.ErrExamNotFound)
	})

	t.Run("referenced exam cannot be deleted", func(t *testing.T) {
		a, err := svc.Admit(ctx, candidate(repo))
		require.NoError(t, err)
		require.ErrorIs(t, svc.DeleteExam(ctx, a.ExamID), scheduling.ErrExamInUse)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", scheduling.Outcome(nil))
	assert.Equal(t, "internal_failure", scheduling.Outcome(errors.New("boom")))
	assert.Equal(t, "slot_conflict", scheduling.Outcome(scheduling.ErrSlotConflict))
	assert.Equal(t, "missing_field", scheduling.Outcome(errors.Join(errors.New("x"), scheduling.ErrMissingField)))
	assert.Equal(t, "exam_in_use", scheduling.Outcome(scheduling.ErrExamInUse))
}
