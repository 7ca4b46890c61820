package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// CreateSeatCheck handles POST /v1/seat-checks.
func (h *ConsoleHandler) CreateSeatCheck(c echo.Context) error {
	var body model.SeatCheck
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.SeatChecks.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

// ListSeatChecks handles GET /v1/seat-checks.
func (h *ConsoleHandler) ListSeatChecks(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.SeatChecks.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}
