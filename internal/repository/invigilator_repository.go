package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

var ErrInvigilatorNotFound = errors.New("invigilator not found")

type InvigilatorRepo struct {
	db *sql.DB
}

func NewInvigilatorRepo(db *sql.DB) *InvigilatorRepo { return &InvigilatorRepo{db: db} }

func (r *InvigilatorRepo) Create(ctx context.Context, v *model.Invigilator) error {
	const q = `INSERT INTO invigilators (invigilator_id, full_name, email, phone, assigned) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, v.InvigilatorID, v.FullName, v.Email, v.Phone, v.Assigned)
	return mapDBError("create invigilator", err)
}

func (r *InvigilatorRepo) List(ctx context.Context) ([]model.Invigilator, error) {
	const q = `SELECT invigilator_id, full_name, email, phone, assigned FROM invigilators ORDER BY invigilator_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Invigilator{}
	for rows.Next() {
		var v model.Invigilator
		if err := rows.Scan(&v.InvigilatorID, &v.FullName, &v.Email, &v.Phone, &v.Assigned); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *InvigilatorRepo) GetByID(ctx context.Context, id uint64) (*model.Invigilator, error) {
	const q = `SELECT invigilator_id, full_name, email, phone, assigned FROM invigilators WHERE invigilator_id = ?`
	var v model.Invigilator
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&v.InvigilatorID, &v.FullName, &v.Email, &v.Phone, &v.Assigned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvigilatorNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *InvigilatorRepo) Update(ctx context.Context, id uint64, v *model.Invigilator) error {
	const q = `UPDATE invigilators SET full_name = ?, email = ?, phone = ?, assigned = ? WHERE invigilator_id = ?`
	res, err := r.db.ExecContext(ctx, q, v.FullName, v.Email, v.Phone, v.Assigned, id)
	if err != nil {
		return mapDBError("update invigilator", err)
	}
	return expectOne(res, ErrInvigilatorNotFound)
}

func (r *InvigilatorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invigilators WHERE invigilator_id = ?`, id)
	if err != nil {
		return mapDBError("delete invigilator", err)
	}
	return expectOne(res, ErrInvigilatorNotFound)
}
