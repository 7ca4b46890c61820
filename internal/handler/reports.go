package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/repository"
)

// ReportHandler serves the seat map, the dashboard and ad-hoc SELECT.
type ReportHandler struct {
	Reports *repository.ReportRepo
	Halls   *repository.HallRepo
}

func NewReportHandler(reports *repository.ReportRepo, halls *repository.HallRepo) *ReportHandler {
	return &ReportHandler{Reports: reports, Halls: halls}
}

type seatMapResp struct {
	HallID uint64                     `json:"hall_id"`
	ExamID *uint64                    `json:"exam_id,omitempty"`
	PerRow int                        `json:"per_row"`
	Rows   [][]repository.SeatMapCell `json:"rows"`
	Seats  []repository.SeatMapCell   `json:"seats"`
}

// SeatMap handles GET /v1/halls/:id/seat-map?exam_id=&per_row=.
func (h *ReportHandler) SeatMap(c echo.Context) error {
	hallID, ok := pathID(c, "id")
	if !ok {
		return badID(c, "hall id")
	}
	examID, ok := queryID(c, "exam_id")
	if !ok {
		return badID(c, "exam_id")
	}
	perRow := repository.SeatsPerRow
	if raw := c.QueryParam("per_row"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "per_row must be between 1 and 50"})
		}
		perRow = n
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Halls.GetByID(ctx, hallID); err != nil {
		return writeError(c, err)
	}
	cells, err := h.Reports.SeatMap(ctx, hallID, examID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, seatMapResp{
		HallID: hallID,
		ExamID: examID,
		PerRow: perRow,
		Rows:   repository.ChunkSeats(cells, perRow),
		Seats:  cells,
	})
}

// Dashboard handles GET /v1/dashboard.
func (h *ReportHandler) Dashboard(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	halls, exams, err := h.Reports.Dashboard(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"halls": halls, "exams": exams})
}

type selectReq struct {
	Query string `json:"query" validate:"required"`
}

// RunSelect handles POST /v1/queries/select.  Errors raised by MySQL for
// the operator's own query are returned as 400 with the server message.
func (h *ReportHandler) RunSelect(c echo.Context) error {
	var req selectReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Reports.RunSelect(ctx, req.Query)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": me.Message, "code": me.Number})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
