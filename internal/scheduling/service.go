package scheduling

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"exam-scheduler/internal/model"
)

type ExamRepository interface {
	ListExams(ctx context.Context) ([]model.Exam, error)
	ExamsBySpecialty(ctx context.Context, specialty string) ([]model.Exam, error)
	GetExam(ctx context.Context, id int64) (*model.Exam, error)
	CreateExam(ctx context.Context, e *model.Exam) error
	UpdateExam(ctx context.Context, e *model.Exam) error
	DeleteExam(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, id int64) error
}

// Notifier is told about bookings after they are persisted. Failures are
// logged and never undo the write.
type Notifier interface {
	Booked(ctx context.Context, a model.Appointment) error
	StatusChanged(ctx context.Context, a model.Appointment, from model.Status) error
}

// Recorder receives operation outcomes for metrics.
type Recorder interface {
	Admission(outcome string)
	Transition(from, to model.Status, outcome string)
}

type Service struct {
	exams        ExamRepository
	appointments AppointmentRepository

	notifier Notifier
	recorder Recorder
	log      zerolog.Logger
	now      func() time.Time
	loc      *time.Location
	region   string
	strict   bool
}

type Option func(*Service)

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock replaces time.Now; tests use it to pin "now".
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation sets the zone used for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

// WithPhoneRegion sets the default region for phone normalization.
func WithPhoneRegion(region string) Option { return func(s *Service) { s.region = region } }

// WithStrictTransitions toggles the transition whitelist. When off, any
// valid status may replace any other.
func WithStrictTransitions(on bool) Option { return func(s *Service) { s.strict = on } }

func NewService(exams ExamRepository, appointments AppointmentRepository, opts ...Option) *Service {
	s := &Service{
		exams:        exams,
		appointments: appointments,
		notifier:     nopNotifier{},
		recorder:     nopRecorder{},
		log:          zerolog.Nop(),
		now:          time.Now,
		loc:          time.Local,
		region:       "BR",
		strict:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strict reports whether the transition whitelist is enforced.
func (s *Service) Strict() bool { return s.strict }

type nopNotifier struct{}

func (nopNotifier) Booked(context.Context, model.Appointment) error { return nil }

func (nopNotifier) StatusChanged(context.Context, model.Appointment, model.Status) error {
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Admission(string) {}

func (nopRecorder) Transition(model.Status, model.Status, string) {}
