package handler

import (
	"github.com/iliyamo/exam-seat-allocator/internal/repository"
)

// ConsoleHandler serves the CRUD pages of the console: students, exams,
// halls, seats, invigilators, hall assignments, manual allocations and
// seat checks.
type ConsoleHandler struct {
	Students     *repository.StudentRepo
	Exams        *repository.ExamRepo
	Halls        *repository.HallRepo
	Seats        *repository.SeatRepo
	Invigilators *repository.InvigilatorRepo
	Assignments  *repository.HallAssignmentRepo
	Allocations  *repository.AllocationRepo
	SeatChecks   *repository.SeatCheckRepo
}

// NewConsoleHandler panics if any repository is nil; a half-wired console
// would fail on first use instead of at startup.
func NewConsoleHandler(
	students *repository.StudentRepo,
	exams *repository.ExamRepo,
	halls *repository.HallRepo,
	seats *repository.SeatRepo,
	invigilators *repository.InvigilatorRepo,
	assignments *repository.HallAssignmentRepo,
	allocations *repository.AllocationRepo,
	checks *repository.SeatCheckRepo,
) *ConsoleHandler {
	if students == nil || exams == nil || halls == nil || seats == nil ||
		invigilators == nil || assignments == nil || allocations == nil || checks == nil {
		panic("nil repository passed to NewConsoleHandler")
	}
	return &ConsoleHandler{
		Students:     students,
		Exams:        exams,
		Halls:        halls,
		Seats:        seats,
		Invigilators: invigilators,
		Assignments:  assignments,
		Allocations:  allocations,
		SeatChecks:   checks,
	}
}
