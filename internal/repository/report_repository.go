package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Errors returned by RunSelect before anything reaches the database.
var (
	ErrNotSelect      = errors.New("only SELECT statements are allowed")
	ErrMultiStatement = errors.New("only a single statement is allowed")
)

// SeatsPerRow is how many seats a seat map row shows.
const SeatsPerRow = 6

// SeatMapCell is one seat of a hall and, when an exam was given, its
// occupant.
type SeatMapCell struct {
	SeatID       uint64  `json:"seat_id"`
	SeatNumber   string  `json:"seat_number"`
	IsAccessible bool    `json:"is_accessible"`
	AllocationID *uint64 `json:"allocation_id,omitempty"`
	StudentID    *uint64 `json:"student_id,omitempty"`
	SRN          *string `json:"srn,omitempty"`
	FullName     *string `json:"full_name,omitempty"`
}

// HallFill is the number of allocated seats in a hall across all exams.
type HallFill struct {
	HallName string `json:"hall_name"`
	Filled   int64  `json:"filled"`
}

// ExamFill is the number of allocations of an exam, keyed by course code.
type ExamFill struct {
	CourseCode string `json:"course_code"`
	Allocated  int64  `json:"allocated"`
}

// QueryResult is the tabular output of RunSelect.  Truncated is set when
// the row cap cut the result short.
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated"`
}

// ReportRepo serves the read-only views of the console.
type ReportRepo struct {
	db      *sql.DB
	maxRows int
}

func NewReportRepo(db *sql.DB, maxRows int) *ReportRepo {
	if maxRows <= 0 {
		maxRows = 500
	}
	return &ReportRepo{db: db, maxRows: maxRows}
}

// SeatMap lists the seats of hallID in label order.  With a non-nil examID
// every seat carries the allocation and student holding it in that exam.
func (r *ReportRepo) SeatMap(ctx context.Context, hallID uint64, examID *uint64) ([]SeatMapCell, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if examID == nil {
		const q = `SELECT seat_id, seat_number, is_accessible FROM seats WHERE hall_id = ? ORDER BY seat_number`
		rows, err = r.db.QueryContext(ctx, q, hallID)
	} else {
		const q = `SELECT s.seat_id, s.seat_number, s.is_accessible, a.allocation_id, st.student_id, st.srn, st.full_name
		           FROM seats s
		           LEFT JOIN allocations a ON a.seat_id = s.seat_id AND a.exam_id = ?
		           LEFT JOIN students st ON st.student_id = a.student_id
		           WHERE s.hall_id = ?
		           ORDER BY s.seat_number`
		rows, err = r.db.QueryContext(ctx, q, *examID, hallID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SeatMapCell{}
	for rows.Next() {
		var c SeatMapCell
		dest := []any{&c.SeatID, &c.SeatNumber, &c.IsAccessible}
		if examID != nil {
			dest = append(dest, &c.AllocationID, &c.StudentID, &c.SRN, &c.FullName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChunkSeats splits cells into display rows of perRow seats.
func ChunkSeats(cells []SeatMapCell, perRow int) [][]SeatMapCell {
	if perRow <= 0 {
		perRow = SeatsPerRow
	}
	out := make([][]SeatMapCell, 0, (len(cells)+perRow-1)/perRow)
	for start := 0; start < len(cells); start += perRow {
		out = append(out, cells[start:min(start+perRow, len(cells))])
	}
	return out
}

// Dashboard returns seats filled per hall and allocations per exam.
func (r *ReportRepo) Dashboard(ctx context.Context) ([]HallFill, []ExamFill, error) {
	const qHalls = `SELECT h.hall_name, COUNT(a.allocation_id)
	                FROM halls h
	                LEFT JOIN seats s ON s.hall_id = h.hall_id
	                LEFT JOIN allocations a ON a.seat_id = s.seat_id
	                GROUP BY h.hall_name
	                ORDER BY h.hall_name`
	const qExams = `SELECT e.course_code, COUNT(a.allocation_id)
	                FROM exams e
	                LEFT JOIN allocations a ON a.exam_id = e.exam_id
	                GROUP BY e.course_code
	                ORDER BY e.course_code`

	halls := []HallFill{}
	if err := r.collect(ctx, qHalls, func(rows *sql.Rows) error {
		var h HallFill
		if err := rows.Scan(&h.HallName, &h.Filled); err != nil {
			return err
		}
		halls = append(halls, h)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("hall fill: %w", err)
	}

	exams := []ExamFill{}
	if err := r.collect(ctx, qExams, func(rows *sql.Rows) error {
		var e ExamFill
		if err := rows.Scan(&e.CourseCode, &e.Allocated); err != nil {
			return err
		}
		exams = append(exams, e)
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("exam fill: %w", err)
	}
	return halls, exams, nil
}

func (r *ReportRepo) collect(ctx context.Context, q string, each func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CheckSelect normalizes an ad-hoc query: it trims whitespace and one
// trailing semicolon, then rejects anything that is not a single SELECT.
func CheckSelect(query string) (string, error) {
	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	if len(q) < len("SELECT") || !strings.EqualFold(q[:len("SELECT")], "SELECT") {
		return "", ErrNotSelect
	}
	if len(q) > len("SELECT") {
		next := rune(q[len("SELECT")])
		if next != '(' && next != '*' && !unicode.IsSpace(next) {
			return "", ErrNotSelect
		}
	}
	if strings.Contains(q, ";") {
		return "", ErrMultiStatement
	}
	return q, nil
}

// RunSelect executes an operator supplied SELECT in a read-only
// transaction and returns at most maxRows rows.
func (r *ReportRepo) RunSelect(ctx context.Context, query string) (*QueryResult, error) {
	q, err := CheckSelect(query)
	if err != nil {
		return nil, err
	}
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	// nothing to commit
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &QueryResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		if len(res.Rows) == r.maxRows {
			res.Truncated = true
			break
		}
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
