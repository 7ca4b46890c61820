package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

// ErrExamNotFound is returned when an exam lookup fails.
var ErrExamNotFound = errors.New("exam not found")

type ExamRepo struct {
	db *sql.DB
}

func NewExamRepo(db *sql.DB) *ExamRepo {
	return &ExamRepo{db: db}
}

const examColumns = `exam_id, course_code, course_name, DATE_FORMAT(exam_date, '%Y-%m-%d'),
	TIME_FORMAT(start_time, '%H:%i:%s'), TIME_FORMAT(end_time, '%H:%i:%s'), total_marks`

func scanExam(sc interface{ Scan(...any) error }, e *model.Exam) error {
	return sc.Scan(&e.ExamID, &e.CourseCode, &e.CourseName, &e.ExamDate, &e.StartTime, &e.EndTime, &e.TotalMarks)
}

func (r *ExamRepo) Create(ctx context.Context, e *model.Exam) error {
	const q = `INSERT INTO exams (exam_id, course_code, course_name, exam_date, start_time, end_time, total_marks)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, e.ExamID, e.CourseCode, e.CourseName, e.ExamDate, e.StartTime, e.EndTime, e.TotalMarks)
	return mapDBError("create exam", err)
}

// List returns exams ordered by date, then start time.
func (r *ExamRepo) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+examColumns+` FROM exams ORDER BY exam_date, start_time, exam_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Exam{}
	for rows.Next() {
		var e model.Exam
		if err := scanExam(rows, &e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *ExamRepo) GetByID(ctx context.Context, id uint64) (*model.Exam, error) {
	var e model.Exam
	if err := scanExam(r.db.QueryRowContext(ctx, `SELECT `+examColumns+` FROM exams WHERE exam_id = ?`, id), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Update overwrites every column but the id.
func (r *ExamRepo) Update(ctx context.Context, id uint64, e *model.Exam) error {
	const q = `UPDATE exams SET course_code = ?, course_name = ?, exam_date = ?, start_time = ?, end_time = ?, total_marks = ?
	           WHERE exam_id = ?`
	res, err := r.db.ExecContext(ctx, q, e.CourseCode, e.CourseName, e.ExamDate, e.StartTime, e.EndTime, e.TotalMarks, id)
	if err != nil {
		return mapDBError("update exam", err)
	}
	return expectOne(res, ErrExamNotFound)
}

func (r *ExamRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE exam_id = ?`, id)
	if err != nil {
		return mapDBError("delete exam", err)
	}
	return expectOne(res, ErrExamNotFound)
}
