package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var statuses = []Status{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}

// Statuses lists every appointment status in lifecycle order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether the lifecycle ends at s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type Exam struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Specialty   string           `json:"specialty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

type Appointment struct {
	ID           int64     `json:"id"`
	PatientName  string    `json:"patientName"`
	PatientEmail string    `json:"patientEmail"`
	PatientPhone *string   `json:"patientPhone,omitempty"`
	ExamID       int64     `json:"examId"`
	Exam         *Exam     `json:"exam,omitempty"`
	DateTime     time.Time `json:"dateTime"`
	Notes        *string   `json:"notes,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StaffUser is a receptionist account allowed to mutate the schedule.
type StaffUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AppointmentFilter narrows an appointment listing. Zero values mean "no
// constraint"; From and To are both inclusive.
type AppointmentFilter struct {
	Status    *Status
	ExamID    int64
	From      *time.Time
	To        *time.Time
	ExcludeID int64
}
