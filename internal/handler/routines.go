package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/repository"
)

// RoutineHandler exposes the stored routines shipped with the schema.
type RoutineHandler struct {
	Routines repository.Routines
}

func NewRoutineHandler(r repository.Routines) *RoutineHandler {
	return &RoutineHandler{Routines: r}
}

type routineAllocateReq struct {
	ExamID    uint64 `json:"exam_id"    validate:"required"`
	StudentID uint64 `json:"student_id" validate:"required"`
	SeatID    uint64 `json:"seat_id"    validate:"required"`
}

type routineRemoveReq struct {
	AllocationID uint64 `json:"allocation_id" validate:"required"`
}

// Allocate handles POST /v1/routines/allocate.  The routine reports its
// own outcome as a message; it is passed through unchanged.
func (h *RoutineHandler) Allocate(c echo.Context) error {
	var req routineAllocateReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	msg, err := h.Routines.Allocate(ctx, req.ExamID, req.StudentID, req.SeatID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// Remove handles POST /v1/routines/remove.
func (h *RoutineHandler) Remove(c echo.Context) error {
	var req routineRemoveReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	msg, err := h.Routines.Remove(ctx, req.AllocationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// Count handles GET /v1/routines/count?exam_id=.
func (h *RoutineHandler) Count(c echo.Context) error {
	examID, ok := queryID(c, "exam_id")
	if !ok || examID == nil {
		return badID(c, "exam_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	n, err := h.Routines.Count(ctx, *examID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"exam_id": *examID, "allocated": n})
}

// Occupancy handles GET /v1/routines/occupancy?exam_id=&hall_id=.
func (h *RoutineHandler) Occupancy(c echo.Context) error {
	examID, ok := queryID(c, "exam_id")
	if !ok || examID == nil {
		return badID(c, "exam_id")
	}
	hallID, ok := queryID(c, "hall_id")
	if !ok || hallID == nil {
		return badID(c, "hall_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	pct, err := h.Routines.Occupancy(ctx, *examID, *hallID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"exam_id": *examID, "hall_id": *hallID, "occupancy_pct": pct})
}

// Seat handles GET /v1/routines/seat?srn=.
func (h *RoutineHandler) Seat(c echo.Context) error {
	srn := strings.TrimSpace(c.QueryParam("srn"))
	if srn == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "srn required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	seat, err := h.Routines.Lookup(ctx, srn)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"srn": srn, "seat": seat})
}
