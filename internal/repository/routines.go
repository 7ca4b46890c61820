package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Routines is the set of stored procedures and functions shipped with the
// schema.  Callers depend on this interface so an in-process implementation
// could replace the database one.
type Routines interface {
	// Allocate calls allocate_student_to_seat and returns its status message.
	Allocate(ctx context.Context, examID, studentID, seatID uint64) (string, error)
	// Remove calls remove_allocation and returns its status message.
	Remove(ctx context.Context, allocationID uint64) (string, error)
	// Count returns how many students are allocated for the exam.
	Count(ctx context.Context, examID uint64) (int64, error)
	// Occupancy returns the percentage of a hall's seats taken in the exam.
	Occupancy(ctx context.Context, examID, hallID uint64) (float64, error)
	// Lookup returns "<hall name> <seat label>" for a student SRN, or
	// ErrNotFound.
	Lookup(ctx context.Context, srn string) (string, error)
}

// MySQLRoutines runs the routines inside the database.
type MySQLRoutines struct {
	db *sql.DB
}

func NewMySQLRoutines(db *sql.DB) *MySQLRoutines { return &MySQLRoutines{db: db} }

var _ Routines = (*MySQLRoutines)(nil)

func (r *MySQLRoutines) Allocate(ctx context.Context, examID, studentID, seatID uint64) (string, error) {
	return r.callMessage(ctx, "allocate_student_to_seat", `CALL allocate_student_to_seat(?, ?, ?)`, examID, studentID, seatID)
}

func (r *MySQLRoutines) Remove(ctx context.Context, allocationID uint64) (string, error) {
	return r.callMessage(ctx, "remove_allocation", `CALL remove_allocation(?)`, allocationID)
}

// callMessage reads the first column of the first row and then drains every
// remaining result set; a CALL leaves at least one trailing status result
// and the connection is unusable until it is consumed.
func (r *MySQLRoutines) callMessage(ctx context.Context, name, query string, args ...any) (string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return "", mapDBError(name, err)
	}
	defer rows.Close()

	var msg sql.NullString
	if rows.Next() {
		if err := rows.Scan(&msg); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
	}
	for rows.Next() {
	}
	for rows.NextResultSet() {
		for rows.Next() {
		}
	}
	if err := rows.Err(); err != nil {
		return "", mapDBError(name, err)
	}
	if !msg.Valid {
		return "done", nil
	}
	return msg.String, nil
}

func (r *MySQLRoutines) Count(ctx context.Context, examID uint64) (int64, error) {
	var n sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT count_allocated_students(?)`, examID).Scan(&n); err != nil {
		return 0, mapDBError("count_allocated_students", err)
	}
	return n.Int64, nil
}

func (r *MySQLRoutines) Occupancy(ctx context.Context, examID, hallID uint64) (float64, error) {
	var pct sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT hall_occupancy(?, ?)`, examID, hallID).Scan(&pct); err != nil {
		return 0, mapDBError("hall_occupancy", err)
	}
	return pct.Float64, nil
}

func (r *MySQLRoutines) Lookup(ctx context.Context, srn string) (string, error) {
	var seat sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT get_student_seat(?)`, srn).Scan(&seat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", mapDBError("get_student_seat", err)
	}
	if !seat.Valid || seat.String == "" {
		return "", ErrNotFound
	}
	return seat.String, nil
}
