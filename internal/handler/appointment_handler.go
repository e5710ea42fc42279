package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"exam-scheduler/internal/model"
	"exam-scheduler/internal/scheduling"
)

// examID accepts 3 as well as "3"; form clients send either. Anything that
// is not an integer decodes as 0, which admission reports as missing.
type examID int64

func (id *examID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		var f float64
		if json.Unmarshal(b, &f) == nil && f == float64(int64(f)) {
			n = int64(f)
		}
	}
	*id = examID(n)
	return nil
}

type appointmentRequest struct {
	PatientName  *string `json:"patientName"`
	PatientEmail *string `json:"patientEmail"`
	PatientPhone *string `json:"patientPhone"`
	ExamID       *examID `json:"examId"`
	DateTime     *string `json:"dateTime"`
	Notes        *string `json:"notes"`
	Status       *string `json:"status"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r appointmentRequest) candidate() scheduling.Candidate {
	c := scheduling.Candidate{
		PatientName:  deref(r.PatientName),
		PatientEmail: deref(r.PatientEmail),
		PatientPhone: r.PatientPhone,
		DateTime:     deref(r.DateTime),
		Notes:        r.Notes,
	}
	if r.ExamID != nil {
		c.ExamID = int64(*r.ExamID)
	}
	return c
}

func (r appointmentRequest) patch() scheduling.Patch {
	p := scheduling.Patch{
		PatientName:  r.PatientName,
		PatientEmail: r.PatientEmail,
		PatientPhone: r.PatientPhone,
		DateTime:     r.DateTime,
		Notes:        r.Notes,
		Status:       r.Status,
	}
	if r.ExamID != nil {
		id := int64(*r.ExamID)
		p.ExamID = &id
	}
	return p
}

func (h *Handler) ListAppointments(c echo.Context) error {
	out, err := h.svc.List(c.Request().Context(), scheduling.ListQuery{
		Status:    c.QueryParam("status"),
		StartDate: c.QueryParam("startDate"),
		EndDate:   c.QueryParam("endDate"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := pathID(c, scheduling.ErrNotFound)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// CreateAppointment ignores any status in the body; new bookings always
// start out scheduled.
func (h *Handler) CreateAppointment(c echo.Context) error {
	var req appointmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Admit(c.Request().Context(), req.candidate())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	id, err := pathID(c, scheduling.ErrNotFound)
	if err != nil {
		return err
	}
	var req appointmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Update(c.Request().Context(), id, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateAppointmentStatus rejects an unknown status before looking at the
// path id, so a bad body wins over a malformed id.
func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	if !model.Status(req.Status).Valid() {
		return fmt.Errorf("%w: %q", scheduling.ErrInvalidStatus, req.Status)
	}
	id, err := pathID(c, scheduling.ErrNotFound)
	if err != nil {
		return err
	}
	a, err := h.svc.ChangeStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := pathID(c, scheduling.ErrNotFound)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
