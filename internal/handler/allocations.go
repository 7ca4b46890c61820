package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/middleware"
	"github.com/iliyamo/exam-seat-allocator/internal/model"
	"github.com/iliyamo/exam-seat-allocator/internal/service"
)

// CreateAllocation handles POST /v1/allocations.  Operators may pick the
// seat by hand and leave student_id empty.
func (h *ConsoleHandler) CreateAllocation(c echo.Context) error {
	var body model.Allocation
	if ok, err := bindValid(c, &body); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Allocations.Create(ctx, &body); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, body)
}

// ListAllocations handles GET /v1/allocations?exam_id=.
func (h *ConsoleHandler) ListAllocations(c echo.Context) error {
	examID, ok := queryID(c, "exam_id")
	if !ok {
		return badID(c, "exam_id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Allocations.List(ctx, examID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *ConsoleHandler) DeleteAllocation(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "allocation id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Allocations.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AutoAllocator is the part of service.AutoAllocator the HTTP layer uses.
type AutoAllocator interface {
	Simulate(ctx context.Context, examID uint64) (*service.Simulation, error)
	Run(ctx context.Context, examID, operatorID uint64) (*service.RunResult, error)
}

// AllocationHandler serves the auto-allocate endpoints.  RunTimeout caps
// one run; it matches the exam lock TTL so the transaction is cancelled
// before the lock can expire under it.
type AllocationHandler struct {
	Auto       AutoAllocator
	RunTimeout time.Duration
}

// defaultRunTimeout applies when no lock TTL is configured.
const defaultRunTimeout = 30 * time.Second

func NewAllocationHandler(auto AutoAllocator, runTimeout time.Duration) *AllocationHandler {
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}
	return &AllocationHandler{Auto: auto, RunTimeout: runTimeout}
}

// Simulate handles GET /v1/exams/:id/auto-allocate/simulate.
func (h *AllocationHandler) Simulate(c echo.Context) error {
	examID, ok := pathID(c, "id")
	if !ok {
		return badID(c, "exam id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	sim, err := h.Auto.Simulate(ctx, examID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sim)
}

// Run handles POST /v1/exams/:id/auto-allocate.  A run that places nobody
// still answers 200; the flags in the body say why.
func (h *AllocationHandler) Run(c echo.Context) error {
	examID, ok := pathID(c, "id")
	if !ok {
		return badID(c, "exam id")
	}
	operatorID, _ := middleware.UserID(c)
	// the run may insert thousands of rows, so it gets the lock TTL rather
	// than requestTimeout
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.RunTimeout)
	defer cancel()
	res, err := h.Auto.Run(ctx, examID, operatorID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
