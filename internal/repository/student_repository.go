package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// ErrStudentNotFound is returned when a student lookup fails.
var ErrStudentNotFound = errors.New("student not found")

// StudentRepo provides CRUD over the students table.
type StudentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

const studentColumns = `student_id, srn, full_name, department, year_of_study, email, phone, gender,
	DATE_FORMAT(dob, '%Y-%m-%d')`

func scanStudent(sc interface{ Scan(...any) error }, s *model.Student) error {
	return sc.Scan(&s.StudentID, &s.SRN, &s.FullName, &s.Department, &s.YearOfStudy,
		&s.Email, &s.Phone, &s.Gender, &s.DOB)
}

// Create inserts a student with an operator supplied id.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	const q = `INSERT INTO students (student_id, srn, full_name, department, year_of_study, email, phone, gender, dob)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, s.StudentID, s.SRN, s.FullName, s.Department, s.YearOfStudy,
		s.Email, s.Phone, s.Gender, s.DOB)
	return mapDBError("create student", err)
}

// List returns all students ordered by id.
func (r *StudentRepo) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY student_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID returns ErrStudentNotFound when no row matches.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (*model.Student, error) {
	var s model.Student
	err := scanStudent(r.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE student_id = ?`, id), &s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Update overwrites the mutable columns of a student.
func (r *StudentRepo) Update(ctx context.Context, id uint64, u model.StudentUpdate) error {
	const q = `UPDATE students SET full_name = ?, department = ?, year_of_study = ?, email = ?, phone = ?, gender = ?
	           WHERE student_id = ?`
	res, err := r.db.ExecContext(ctx, q, u.FullName, u.Department, u.YearOfStudy, u.Email, u.Phone, u.Gender, id)
	if err != nil {
		return mapDBError("update student", err)
	}
	return expectOne(res, ErrStudentNotFound)
}

// Delete removes a student.  Students that still hold allocations yield
// ErrReferenced.
func (r *StudentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE student_id = ?`, id)
	if err != nil {
		return mapDBError("delete student", err)
	}
	return expectOne(res, ErrStudentNotFound)
}

// expectOne turns "zero rows affected" into notFound.  The DSN sets
// clientFoundRows so an UPDATE that changes nothing still counts.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
