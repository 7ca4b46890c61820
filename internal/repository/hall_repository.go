package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// ErrHallNotFound is returned when a hall lookup fails.
var ErrHallNotFound = errors.New("hall not found")

// HallRepo provides methods to create and retrieve halls.  Halls are not
// updated or deleted through the console; seats and assignments hang off
// them.
type HallRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// Create inserts a new hall.  The id is supplied by the operator.
func (r *HallRepo) Create(ctx context.Context, h *model.Hall) error {
	const q = `INSERT INTO halls (hall_id, hall_name, capacity, location) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, h.HallID, h.HallName, h.Capacity, h.Location)
	return mapDBError("create hall", err)
}

// GetByID retrieves a hall by its ID.  It returns ErrHallNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = `SELECT hall_id, hall_name, capacity, location FROM halls WHERE hall_id = ?`
	var h model.Hall
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.HallID, &h.HallName, &h.Capacity, &h.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]model.Hall, error) {
	const q = `SELECT hall_id, hall_name, capacity, location FROM halls ORDER BY hall_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Hall{}
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.HallID, &h.HallName, &h.Capacity, &h.Location); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
