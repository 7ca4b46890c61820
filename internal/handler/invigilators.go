package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

func (h *ConsoleHandler) CreateInvigilator(c echo.Context) error {
	var body model.Invigilator
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Invigilators.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

func (h *ConsoleHandler) ListInvigilators(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Invigilators.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ConsoleHandler) GetInvigilator(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "invigilator id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	v, err := h.Invigilators.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *ConsoleHandler) UpdateInvigilator(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "invigilator id")
	}
	body := model.Invigilator{InvigilatorID: id}
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	body.InvigilatorID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Invigilators.Update(ctx, id, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, body)
}

func (h *ConsoleHandler) DeleteInvigilator(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "invigilator id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Invigilators.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
