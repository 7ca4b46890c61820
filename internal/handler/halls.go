package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// CreateHall handles POST /v1/halls.
func (h *ConsoleHandler) CreateHall(c echo.Context) error {
	var body model.Hall
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Halls.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

// ListHalls handles GET /v1/halls.
func (h *ConsoleHandler) ListHalls(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Halls.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetHall handles GET /v1/halls/:id.
func (h *ConsoleHandler) GetHall(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "hall id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	hall, err := h.Halls.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, hall)
}

// CreateSeat handles POST /v1/seats.  The hall must exist; the foreign key
// reports it as a conflict otherwise, so check first for a clearer 404.
func (h *ConsoleHandler) CreateSeat(c echo.Context) error {
	var body model.Seat
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Halls.GetByID(ctx, body.HallID); err != nil {
		return writeError(c, err)
	}
	if err := h.Seats.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

// ListSeats handles GET /v1/seats with an optional ?hall_id= filter.
func (h *ConsoleHandler) ListSeats(c echo.Context) error {
	hallID, ok := queryID(c, "hall_id")
	if !ok {
		return badID(c, "hall_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Seats.List(ctx, hallID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ConsoleHandler) GetSeat(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "seat id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ConsoleHandler) UpdateSeat(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "seat id")
	}
	var body model.SeatUpdate
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Seats.Update(ctx, id, body); err != nil {
		return writeError(c, err)
	}
	s, err := h.Seats.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *ConsoleHandler) DeleteSeat(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "seat id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Seats.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
