package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seat-allocator/internal/allocation"
	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// ErrAllocationNotFound is returned when an allocation lookup fails.
var ErrAllocationNotFound = errors.New("allocation not found")

// Querier is satisfied by both *sql.DB and *sql.Tx so the auto-allocate
// reads can run inside the caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// FreeSeat is an eligible, unallocated seat of an exam.
type FreeSeat struct {
	SeatID     uint64 `json:"seat_id"`
	HallID     uint64 `json:"hall_id"`
	SeatNumber string `json:"seat_number"`
}

// rows per INSERT statement; 4 placeholders each keeps us far below the
// 65535 placeholder limit of a prepared statement
const insertBatchSize = 1000

type AllocationRepo struct {
	db *sql.DB
}

func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{db: db} }

// Create inserts a manual allocation.  A second allocation of the same
// seat or student in one exam yields ErrDuplicate.
func (r *AllocationRepo) Create(ctx context.Context, a *model.Allocation) error {
	const q = `INSERT INTO allocations (allocation_id, exam_id, student_id, seat_id) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, a.AllocationID, a.ExamID, a.StudentID, a.SeatID)
	return mapDBError("create allocation", err)
}

// List returns allocations ordered by id, optionally only those of examID.
func (r *AllocationRepo) List(ctx context.Context, examID *uint64) ([]model.Allocation, error) {
	q := `SELECT allocation_id, exam_id, student_id, seat_id FROM allocations`
	var args []any
	if examID != nil {
		q += ` WHERE exam_id = ?`
		args = append(args, *examID)
	}
	q += ` ORDER BY allocation_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Allocation{}
	for rows.Next() {
		var a model.Allocation
		if err := rows.Scan(&a.AllocationID, &a.ExamID, &a.StudentID, &a.SeatID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an allocation.  Seat checks referencing it yield
// ErrReferenced.
func (r *AllocationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM allocations WHERE allocation_id = ?`, id)
	if err != nil {
		return mapDBError("delete allocation", err)
	}
	return expectOne(res, ErrAllocationNotFound)
}

// CheckExam returns ErrExamNotFound unless the exam exists.  With lock set
// the exam row stays locked until q's transaction ends.
func (r *AllocationRepo) CheckExam(ctx context.Context, q Querier, examID uint64, lock bool) error {
	query := `SELECT exam_id FROM exams WHERE exam_id = ?`
	if lock {
		query += ` FOR UPDATE`
	}
	var id uint64
	if err := q.QueryRowContext(ctx, query, examID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrExamNotFound
		}
		return err
	}
	return nil
}

// UnallocatedStudents lists students without an allocation for examID, in
// ascending id order.
func (r *AllocationRepo) UnallocatedStudents(ctx context.Context, q Querier, examID uint64) ([]uint64, error) {
	const query = `SELECT s.student_id FROM students s
	               WHERE s.student_id NOT IN (
	                   SELECT student_id FROM allocations WHERE exam_id = ? AND student_id IS NOT NULL)
	               ORDER BY s.student_id`
	rows, err := q.QueryContext(ctx, query, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// FreeSeats lists seats of the halls assigned to examID that hold no
// allocation for it, ordered by hall then seat label.
func (r *AllocationRepo) FreeSeats(ctx context.Context, q Querier, examID uint64) ([]FreeSeat, error) {
	const query = `SELECT seat_id, hall_id, seat_number FROM seats
	               WHERE seat_id NOT IN (SELECT seat_id FROM allocations WHERE exam_id = ?)
	                 AND hall_id IN (SELECT hall_id FROM hall_assignments WHERE exam_id = ?)
	               ORDER BY hall_id, seat_number`
	rows, err := q.QueryContext(ctx, query, examID, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FreeSeat{}
	for rows.Next() {
		var s FreeSeat
		if err := rows.Scan(&s.SeatID, &s.HallID, &s.SeatNumber); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// NextID returns max(allocation_id)+1, or 1 for an empty table.  Inside a
// transaction the read locks the index tail so two runs cannot pick the
// same starting id.
func (r *AllocationRepo) NextID(ctx context.Context, q Querier) (uint64, error) {
	var next uint64
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(allocation_id), 0) + 1 FROM allocations FOR UPDATE`).Scan(&next)
	return next, err
}

// InsertBatch writes the proposals with multi-row INSERTs.  Callers pass a
// transaction so a failed chunk leaves nothing behind.
func (r *AllocationRepo) InsertBatch(ctx context.Context, q Querier, plan []allocation.Proposal) error {
	for start := 0; start < len(plan); start += insertBatchSize {
		end := min(start+insertBatchSize, len(plan))
		query := `INSERT INTO allocations (allocation_id, exam_id, student_id, seat_id) VALUES `
		args := make([]any, 0, (end-start)*4)
		for i, p := range plan[start:end] {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?)"
			args = append(args, p.AllocationID, p.ExamID, p.StudentID, p.SeatID)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return mapDBError("insert allocations", err)
		}
	}
	return nil
}
