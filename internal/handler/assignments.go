package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// CreateHallAssignment handles POST /v1/hall-assignments, binding a hall
// (and optionally an invigilator) to an exam.
func (h *ConsoleHandler) CreateHallAssignment(c echo.Context) error {
	var body model.HallAssignment
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	if body.EndTime <= body.StartTime {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_time must be after start_time"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Assignments.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

// ListHallAssignments handles GET /v1/hall-assignments?exam_id=.
func (h *ConsoleHandler) ListHallAssignments(c echo.Context) error {
	examID, ok := queryID(c, "exam_id")
	if !ok {
		return badID(c, "exam_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Assignments.List(ctx, examID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
