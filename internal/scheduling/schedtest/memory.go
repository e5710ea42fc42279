// Package schedtest provides in-memory repositories that mirror the
// Postgres store's semantics closely enough for service and handler tests:
// the same sentinel errors, the scheduled-slot unique index and the exam
// foreign key.
package schedtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/store"
)

type Repo struct {
	mu           sync.Mutex
	exams        map[int64]model.Exam
	appointments map[int64]model.Appointment
	nextExam     int64
	nextAppt     int64

	// Fail, when set, is returned by every call.
	Fail error
}

func New() *Repo {
	return &Repo{
		exams:        map[int64]model.Exam{},
		appointments: map[int64]model.Appointment{},
	}
}

// Seeded returns a repo holding the default catalog.
func Seeded() *Repo {
	r := New()
	for _, e := range store.DefaultExams() {
		_ = r.CreateExam(context.Background(), &e)
	}
	return r
}

// ExamByName returns the first exam named name.
func (r *Repo) ExamByName(name string) model.Exam {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := int64(1); id <= r.nextExam; id++ {
		if e, ok := r.exams[id]; ok && e.Name == name {
			return e
		}
	}
	panic(fmt.Sprintf("schedtest: no exam named %q", name))
}

// Put stores a as-is, bypassing validation. Handy for records in the past.
func (r *Repo) Put(a model.Appointment) model.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextAppt++
	a.ID = r.nextAppt
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.appointments[a.ID] = a
	return r.withExam(a)
}

func (r *Repo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appointments)
}

func (r *Repo) ListExams(ctx context.Context) ([]model.Exam, error) {
	return r.listExams(func(model.Exam) bool { return true }, true)
}

func (r *Repo) ExamsBySpecialty(ctx context.Context, specialty string) ([]model.Exam, error) {
	return r.listExams(func(e model.Exam) bool { return e.Specialty == specialty }, false)
}

func (r *Repo) listExams(keep func(model.Exam) bool, bySpecialty bool) ([]model.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := []model.Exam{}
	for _, e := range r.exams {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if bySpecialty && a.Specialty != b.Specialty {
			return a.Specialty < b.Specialty
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (r *Repo) GetExam(ctx context.Context, id int64) (*model.Exam, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	e, ok := r.exams[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (r *Repo) CreateExam(ctx context.Context, e *model.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	r.nextExam++
	e.ID = r.nextExam
	r.exams[e.ID] = *e
	return nil
}

func (r *Repo) UpdateExam(ctx context.Context, e *model.Exam) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if _, ok := r.exams[e.ID]; !ok {
		return store.ErrNotFound
	}
	r.exams[e.ID] = *e
	return nil
}

func (r *Repo) DeleteExam(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if _, ok := r.exams[id]; !ok {
		return store.ErrNotFound
	}
	for _, a := range r.appointments {
		if a.ExamID == id {
			return store.ErrReferenced
		}
	}
	delete(r.exams, id)
	return nil
}

func (r *Repo) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := []model.Appointment{}
	for _, a := range r.appointments {
		if matches(a, f) {
			out = append(out, r.withExam(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].DateTime.Before(out[j].DateTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matches(a model.Appointment, f model.AppointmentFilter) bool {
	switch {
	case f.Status != nil && a.Status != *f.Status:
		return false
	case f.ExamID != 0 && a.ExamID != f.ExamID:
		return false
	case f.From != nil && a.DateTime.Before(*f.From):
		return false
	case f.To != nil && a.DateTime.After(*f.To):
		return false
	case f.ExcludeID != 0 && a.ID == f.ExcludeID:
		return false
	}
	return true
}

func (r *Repo) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return nil, r.Fail
	}
	a, ok := r.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a = r.withExam(a)
	return &a, nil
}

func (r *Repo) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkWrite(*a); err != nil {
		return err
	}
	r.nextAppt++
	a.ID = r.nextAppt
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Exam = nil
	r.appointments[a.ID] = stored
	return nil
}

func (r *Repo) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[a.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.checkWrite(*a); err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	stored := *a
	stored.Exam = nil
	r.appointments[a.ID] = stored
	return nil
}

func (r *Repo) DeleteAppointment(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return r.Fail
	}
	if _, ok := r.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.appointments, id)
	return nil
}

// checkWrite enforces the exam foreign key and the scheduled-slot index.
func (r *Repo) checkWrite(a model.Appointment) error {
	if r.Fail != nil {
		return r.Fail
	}
	if _, ok := r.exams[a.ExamID]; !ok {
		return store.ErrReferenced
	}
	if a.Status != model.StatusScheduled {
		return nil
	}
	for _, other := range r.appointments {
		if other.ID != a.ID && other.Status == model.StatusScheduled &&
			other.ExamID == a.ExamID && other.DateTime.Equal(a.DateTime) {
			return store.ErrConflict
		}
	}
	return nil
}

func (r *Repo) withExam(a model.Appointment) model.Appointment {
	if e, ok := r.exams[a.ExamID]; ok {
		a.Exam = &e
	}
	return a
}
