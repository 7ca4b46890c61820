package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// CreateStudent handles POST /v1/students.
func (h *ConsoleHandler) CreateStudent(c echo.Context) error {
	var body model.Student
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Students.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

// ListStudents handles GET /v1/students.
func (h *ConsoleHandler) ListStudents(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Students.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetStudent handles GET /v1/students/:id.
func (h *ConsoleHandler) GetStudent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "student id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Students.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateStudent handles PUT /v1/students/:id.  SRN and date of birth are
// not editable.
func (h *ConsoleHandler) UpdateStudent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "student id")
	}
	var body model.StudentUpdate
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Students.Update(ctx, id, body); err != nil {
		return writeError(c, err)
	}
	s, err := h.Students.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// DeleteStudent handles DELETE /v1/students/:id.
func (h *ConsoleHandler) DeleteStudent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "student id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Students.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
