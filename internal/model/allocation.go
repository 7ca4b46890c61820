package model

// Allocation places a student on a seat for one exam.  The database
// enforces at most one allocation per (exam, student) and per (exam, seat).
// StudentID is nullable because operators may reserve a seat manually
// without naming a student yet.
type Allocation struct {
	AllocationID uint64  `json:"allocation_id" validate:"required"`
	ExamID       uint64  `json:"exam_id"       validate:"required"`
	StudentID    *uint64 `json:"student_id,omitempty"`
	SeatID       uint64  `json:"seat_id"       validate:"required"`
}
