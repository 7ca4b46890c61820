// Package service holds the workflows that span several repositories: the
// auto-allocation cycle and the event publisher it reports to.
package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/exam-seat-allocator/internal/allocation"
	"github.com/iliyamo/exam-seat-allocator/internal/database"
	"github.com/iliyamo/exam-seat-allocator/internal/queue"
	"github.com/iliyamo/exam-seat-allocator/internal/repository"
)

// EventPublisher receives allocation.completed events.  AMQPPublisher is
// the production implementation.
type EventPublisher interface {
	PublishAllocationCompleted(ctx context.Context, event queue.AllocationCompletedEvent) error
}

// Simulation is the read-only preview of an auto-allocate run.
type Simulation struct {
	ExamID        uint64                `json:"exam_id"`
	Students      []uint64              `json:"unallocated_students"`
	Seats         []repository.FreeSeat `json:"free_seats"`
	StudentCount  int                   `json:"student_count"`
	SeatCount     int                   `json:"seat_count"`
	WouldAllocate int                   `json:"would_allocate"`
}

// RunResult describes a committed auto-allocate run.  An empty run is a
// normal outcome; the two flags say why nothing (more) could be placed.
type RunResult struct {
	ExamID           uint64                `json:"exam_id"`
	Allocated        int                   `json:"allocated"`
	NoStudentsLeft   bool                  `json:"no_students_left"`
	NoSeatsLeft      bool                  `json:"no_seats_left"`
	UnplacedStudents int                   `json:"unplaced_students"`
	RemainingSeats   int                   `json:"remaining_seats"`
	Allocations      []allocation.Proposal `json:"allocations"`
}

// AutoAllocator runs fetch, plan and commit for one exam at a time.
type AutoAllocator struct {
	db     *sql.DB
	allocs *repository.AllocationRepo
	locker allocation.Locker
	events EventPublisher // nil disables events
	log    zerolog.Logger
}

func NewAutoAllocator(db *sql.DB, allocs *repository.AllocationRepo, locker allocation.Locker, events EventPublisher, log zerolog.Logger) *AutoAllocator {
	return &AutoAllocator{db: db, allocs: allocs, locker: locker, events: events, log: log}
}

// Simulate lists what a run would consider right now.  Nothing is locked
// or written, so a later Run may see different data.
func (a *AutoAllocator) Simulate(ctx context.Context, examID uint64) (*Simulation, error) {
	if err := a.allocs.CheckExam(ctx, a.db, examID, false); err != nil {
		return nil, err
	}
	students, err := a.allocs.UnallocatedStudents(ctx, a.db, examID)
	if err != nil {
		return nil, err
	}
	seats, err := a.allocs.FreeSeats(ctx, a.db, examID)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		ExamID:        examID,
		Students:      students,
		Seats:         seats,
		StudentCount:  len(students),
		SeatCount:     len(seats),
		WouldAllocate: min(len(students), len(seats)),
	}, nil
}

// Run allocates every unallocated student it can to a free seat of the
// exam's halls.  The cycle holds the exam lock and a single transaction,
// so either all proposals are stored or none are.  It returns
// allocation.ErrExamLocked when another run holds the exam and
// repository.ErrExamNotFound for an unknown exam.
func (a *AutoAllocator) Run(ctx context.Context, examID, operatorID uint64) (*RunResult, error) {
	release, err := a.locker.Acquire(ctx, examID)
	if err != nil {
		return nil, err
	}
	defer release()

	res := &RunResult{ExamID: examID, Allocations: []allocation.Proposal{}}
	err = database.WithTx(ctx, a.db, nil, func(tx *sql.Tx) error {
		if err := a.allocs.CheckExam(ctx, tx, examID, true); err != nil {
			return err
		}
		students, err := a.allocs.UnallocatedStudents(ctx, tx, examID)
		if err != nil {
			return err
		}
		seats, err := a.allocs.FreeSeats(ctx, tx, examID)
		if err != nil {
			return err
		}
		res.NoStudentsLeft = len(students) == 0
		res.NoSeatsLeft = len(seats) == 0
		if res.NoStudentsLeft || res.NoSeatsLeft {
			res.UnplacedStudents = len(students)
			res.RemainingSeats = len(seats)
			return nil
		}

		next, err := a.allocs.NextID(ctx, tx)
		if err != nil {
			return err
		}
		seatIDs := make([]uint64, len(seats))
		for i, s := range seats {
			seatIDs[i] = s.SeatID
		}
		plan := allocation.Plan(examID, students, seatIDs, next)
		if err := a.allocs.InsertBatch(ctx, tx, plan); err != nil {
			return err
		}
		res.Allocations = plan
		res.Allocated = len(plan)
		res.UnplacedStudents = len(students) - len(plan)
		res.RemainingSeats = len(seats) - len(plan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	release()

	a.log.Info().
		Uint64("exam_id", examID).
		Uint64("operator_id", operatorID).
		Int("allocated", res.Allocated).
		Int("unplaced", res.UnplacedStudents).
		Msg("auto-allocate committed")

	if res.Allocated > 0 {
		a.publish(ctx, res, operatorID)
	}
	return res, nil
}

// publish is best effort: the allocations are already committed.
func (a *AutoAllocator) publish(ctx context.Context, res *RunResult, operatorID uint64) {
	if a.events == nil {
		return
	}
	ev := queue.AllocationCompletedEvent{
		EventID:           uuid.NewString(),
		ExamID:            res.ExamID,
		OperatorID:        operatorID,
		Allocated:         res.Allocated,
		FirstAllocationID: res.Allocations[0].AllocationID,
		LastAllocationID:  res.Allocations[len(res.Allocations)-1].AllocationID,
		UnplacedStudents:  res.UnplacedStudents,
		RemainingSeats:    res.RemainingSeats,
		CompletedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.events.PublishAllocationCompleted(pctx, ev); err != nil {
		a.log.Warn().Err(err).Uint64("exam_id", res.ExamID).Msg("allocation.completed not published")
	}
}
