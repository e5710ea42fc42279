package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"exam-scheduler/internal/scheduling"
)

// Price accepts a JSON number or a decimal string.
type examRequest struct {
	Name        *string          `json:"name"`
	Specialty   *string          `json:"specialty"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

func (r examRequest) patch() scheduling.ExamPatch {
	return scheduling.ExamPatch{
		Name:        r.Name,
		Specialty:   r.Specialty,
		Description: r.Description,
		Price:       r.Price,
	}
}

func (h *Handler) ListExams(c echo.Context) error {
	exams, err := h.svc.ListExams(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exams)
}

func (h *Handler) ExamsBySpecialty(c echo.Context) error {
	exams, err := h.svc.ExamsBySpecialty(c.Request().Context(), c.Param("specialty"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exams)
}

func (h *Handler) GetExam(c echo.Context) error {
	id, err := pathID(c, scheduling.ErrExamNotFound)
	if err != nil {
		return err
	}
	e, err := h.svc.GetExam(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) CreateExam(c echo.Context) error {
	var req examRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := h.svc.CreateExam(c.Request().Context(), req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) UpdateExam(c echo.Context) error {
	id, err := pathID(c, scheduling.ErrExamNotFound)
	if err != nil {
		return err
	}
	var req examRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := h.svc.UpdateExam(c.Request().Context(), id, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) DeleteExam(c echo.Context) error {
	id, err := pathID(c, scheduling.ErrExamNotFound)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteExam(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
