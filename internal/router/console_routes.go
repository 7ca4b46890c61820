package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exam-seat-allocator/internal/handler"
)

// RegisterConsole wires the CRUD pages and the auto-allocate endpoints
// onto the protected group.
func RegisterConsole(g *echo.Group, h *handler.ConsoleHandler, alloc *handler.AllocationHandler) {
	g.POST("/students", h.CreateStudent)
	g.GET("/students", h.ListStudents)
	g.GET("/students/:id", h.GetStudent)
	g.PUT("/students/:id", h.UpdateStudent)
	g.DELETE("/students/:id", h.DeleteStudent)

	g.POST("/exams", h.CreateExam)
	g.GET("/exams", h.ListExams)
	g.GET("/exams/:id", h.GetExam)
	g.PUT("/exams/:id", h.UpdateExam)
	g.DELETE("/exams/:id", h.DeleteExam)
	g.GET("/exams/:id/auto-allocate/simulate", alloc.Simulate)
	g.POST("/exams/:id/auto-allocate", alloc.Run)

	g.POST("/halls", h.CreateHall)
	g.GET("/halls", h.ListHalls)
	g.GET("/halls/:id", h.GetHall)

	g.POST("/seats", h.CreateSeat)
	g.GET("/seats", h.ListSeats)
	g.GET("/seats/:id", h.GetSeat)
	g.PUT("/seats/:id", h.UpdateSeat)
	g.DELETE("/seats/:id", h.DeleteSeat)

	g.POST("/invigilators", h.CreateInvigilator)
	g.GET("/invigilators", h.ListInvigilators)
	g.GET("/invigilators/:id", h.GetInvigilator)
	g.PUT("/invigilators/:id", h.UpdateInvigilator)
	g.DELETE("/invigilators/:id", h.DeleteInvigilator)

	g.POST("/hall-assignments", h.CreateHallAssignment)
	g.GET("/hall-assignments", h.ListHallAssignments)

	g.POST("/allocations", h.CreateAllocation)
	g.GET("/allocations", h.ListAllocations)
	g.DELETE("/allocations/:id", h.DeleteAllocation)

	g.POST("/seat-checks", h.CreateSeatCheck)
	g.GET("/seat-checks", h.ListSeatChecks)
}

// RegisterReports wires the read views.  cache wraps only the seat map and
// the dashboard; ad-hoc SELECT results are never cached.
func RegisterReports(g *echo.Group, r *handler.ReportHandler, rt *handler.RoutineHandler, cache echo.MiddlewareFunc) {
	g.GET("/halls/:id/seat-map", r.SeatMap, cache)
	g.GET("/dashboard", r.Dashboard, cache)
	g.POST("/queries/select", r.RunSelect)

	g.POST("/routines/allocate", rt.Allocate)
	g.POST("/routines/remove", rt.Remove)
	g.GET("/routines/count", rt.Count)
	g.GET("/routines/occupancy", rt.Occupancy)
	g.GET("/routines/seat", rt.Seat)
}
