package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// HallAssignmentRepo manages exam ↔ hall bindings.  A hall only becomes
// eligible for auto-allocation of an exam through a row here.
type HallAssignmentRepo struct {
	db *sql.DB
}

func NewHallAssignmentRepo(db *sql.DB) *HallAssignmentRepo { return &HallAssignmentRepo{db: db} }

func (r *HallAssignmentRepo) Create(ctx context.Context, a *model.HallAssignment) error {
	const q = `INSERT INTO hall_assignments (assignment_id, exam_id, hall_id, invigilator_id, start_time, end_time)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, a.AssignmentID, a.ExamID, a.HallID, a.InvigilatorID, a.StartTime, a.EndTime)
	return mapDBError("create hall assignment", err)
}

// List returns assignments ordered by id, optionally only those of examID.
func (r *HallAssignmentRepo) List(ctx context.Context, examID *uint64) ([]model.HallAssignment, error) {
	q := `SELECT assignment_id, exam_id, hall_id, invigilator_id,
	             TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s')
	      FROM hall_assignments`
	var args []any
	if examID != nil {
		q += ` WHERE exam_id = ?`
		args = append(args, *examID)
	}
	q += ` ORDER BY assignment_id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.HallAssignment{}
	for rows.Next() {
		var a model.HallAssignment
		if err := rows.Scan(&a.AssignmentID, &a.ExamID, &a.HallID, &a.InvigilatorID, &a.StartTime, &a.EndTime); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
