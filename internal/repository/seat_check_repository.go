package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

type SeatCheckRepo struct {
	db *sql.DB
}

func NewSeatCheckRepo(db *sql.DB) *SeatCheckRepo { return &SeatCheckRepo{db: db} }

func (r *SeatCheckRepo) Create(ctx context.Context, c *model.SeatCheck) error {
	const q = `INSERT INTO seat_checks (check_id, allocation_id, checked_by, status, remarks) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.CheckID, c.AllocationID, c.CheckedBy, c.Status, c.Remarks)
	return mapDBError("create seat check", err)
}

func (r *SeatCheckRepo) List(ctx context.Context) ([]model.SeatCheck, error) {
	const q = `SELECT check_id, allocation_id, checked_by, status, remarks FROM seat_checks ORDER BY check_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.SeatCheck{}
	for rows.Next() {
		var c model.SeatCheck
		if err := rows.Scan(&c.CheckID, &c.AllocationID, &c.CheckedBy, &c.Status, &c.Remarks); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
