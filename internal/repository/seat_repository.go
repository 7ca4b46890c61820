package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup fails.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo encapsulates database operations on the seats table.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// Create inserts a single seat.  A seat label that already exists in the
// hall, or an unknown hall, is reported through mapDBError.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
	const q = `INSERT INTO seats (seat_id, hall_id, seat_number, is_accessible, remarks) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.SeatID, s.HallID, s.SeatNumber, s.IsAccessible, s.Remarks)
	return mapDBError("create seat", err)
}

// List returns seats ordered by hall then seat label.  A non-nil hallID
// restricts the result to that hall.
func (r *SeatRepo) List(ctx context.Context, hallID *uint64) ([]model.Seat, error) {
	q := `SELECT seat_id, hall_id, seat_number, is_accessible, remarks FROM seats`
	var args []any
	if hallID != nil {
		q += ` WHERE hall_id = ?`
		args = append(args, *hallID)
	}
	q += ` ORDER BY hall_id, seat_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.SeatID, &s.HallID, &s.SeatNumber, &s.IsAccessible, &s.Remarks); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT seat_id, hall_id, seat_number, is_accessible, remarks FROM seats WHERE seat_id = ?`
	var s model.Seat
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.SeatID, &s.HallID, &s.SeatNumber, &s.IsAccessible, &s.Remarks); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SeatRepo) Update(ctx context.Context, id uint64, u model.SeatUpdate) error {
	const q = `UPDATE seats SET seat_number = ?, is_accessible = ?, remarks = ? WHERE seat_id = ?`
	res, err := r.db.ExecContext(ctx, q, u.SeatNumber, u.IsAccessible, u.Remarks, id)
	if err != nil {
		return mapDBError("update seat", err)
	}
	return expectOne(res, ErrSeatNotFound)
}

// Delete removes a seat.  Seats with allocations yield ErrReferenced.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE seat_id = ?`, id)
	if err != nil {
		return mapDBError("delete seat", err)
	}
	return expectOne(res, ErrSeatNotFound)
}
