// Package notify e-mails patients when their appointment is booked or its
// status changes. Delivery is asynchronous and best-effort.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"exam-scheduler/internal/model"
)

var ErrQueueFull = errors.New("notify: queue full")

// Sender delivers composed messages; *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from   string
	sender Sender
	queue  chan *gomail.Message
	loc    *time.Location
	log    zerolog.Logger
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NewSMTP returns a Mailer delivering through an SMTP relay.
func NewSMTP(cfg SMTPConfig, loc *time.Location, log zerolog.Logger) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return New(cfg.From, d, 256, loc, log)
}

func New(from string, sender Sender, queueSize int, loc *time.Location, log zerolog.Logger) *Mailer {
	if loc == nil {
		loc = time.UTC
	}
	return &Mailer{
		from:   from,
		sender: sender,
		queue:  make(chan *gomail.Message, queueSize),
		loc:    loc,
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

func (m *Mailer) Booked(_ context.Context, a model.Appointment) error {
	body := fmt.Sprintf("Olá %s,\n\nSeu exame %s foi agendado para %s.\n",
		a.PatientName, examName(a), m.when(a.DateTime))
	if a.Notes != nil && *a.Notes != "" {
		body += "\nObservações: " + *a.Notes + "\n"
	}
	return m.enqueue(a, "Agendamento confirmado", body)
}

func (m *Mailer) StatusChanged(_ context.Context, a model.Appointment, from model.Status) error {
	body := fmt.Sprintf("Olá %s,\n\nO status do seu exame %s em %s mudou de %s para %s.\n",
		a.PatientName, examName(a), m.when(a.DateTime), from, a.Status)
	return m.enqueue(a, "Atualização do agendamento", body)
}

func (m *Mailer) enqueue(a model.Appointment, subject, body string) error {
	msg := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", strings.TrimSpace(a.PatientEmail))
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	select {
	case m.queue <- msg:
		return nil
	default:
		return fmt.Errorf("%w: appointment %d", ErrQueueFull, a.ID)
	}
}

// Run delivers queued messages until ctx is cancelled, then flushes what
// is already queued.
func (m *Mailer) Run(ctx context.Context) {
	for {
		select {
		case msg := <-m.queue:
			m.send(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-m.queue:
					m.send(msg)
				default:
					return
				}
			}
		}
	}
}

// Start runs the delivery loop in the background. The returned stop
// cancels it and waits for the flush to finish or ctx to expire.
func (m *Mailer) Start() (stop func(ctx context.Context) error) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Run(runCtx)
	}()

	return func(ctx context.Context) error {
		cancel()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("notify: flush interrupted: %w", ctx.Err())
		}
	}
}

func (m *Mailer) send(msg *gomail.Message) {
	if err := m.sender.DialAndSend(msg); err != nil {
		m.log.Warn().Err(err).Strs("to", msg.GetHeader("To")).Msg("send failed")
		return
	}
	m.log.Debug().Strs("to", msg.GetHeader("To")).Msg("sent")
}

func (m *Mailer) when(t time.Time) string {
	return t.In(m.loc).Format("02/01/2006 15:04")
}

func examName(a model.Appointment) string {
	if a.Exam != nil {
		return a.Exam.Name
	}
	return fmt.Sprintf("#%d", a.ExamID)
}
