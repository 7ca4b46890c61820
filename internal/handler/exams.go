package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

func (h *ConsoleHandler) CreateExam(c echo.Context) error {
	var body model.Exam
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	if body.EndTime <= body.StartTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Exams.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

func (h *ConsoleHandler) ListExams(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Exams.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ConsoleHandler) GetExam(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "exam id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	e, err := h.Exams.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

// UpdateExam handles PUT /v1/exams/:id.  The path id wins over any
// exam_id in the body.
func (h *ConsoleHandler) UpdateExam(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "exam id")
	}
	body := model.Exam{ExamID: id}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	body.ExamID = id
	if body.EndTime <= body.StartTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Exams.Update(ctx, id, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, body)
}

func (h *ConsoleHandler) DeleteExam(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "exam id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Exams.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
