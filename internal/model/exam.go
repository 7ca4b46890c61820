package model

// Exam is a row of the `exams` table.  Dates are YYYY-MM-DD and times are
// HH:MM:SS, the way MySQL renders DATE and TIME columns.
type Exam struct {
	ExamID     uint64 `json:"exam_id"     validate:"required"`
	CourseCode string `json:"course_code" validate:"required,max=20"`
	CourseName string `json:"course_name" validate:"required,max=120"`
	ExamDate   string `json:"exam_date"   validate:"required,datetime=2006-01-02"`
	StartTime  string `json:"start_time"  validate:"required,datetime=15:04:05"`
	EndTime    string `json:"end_time"    validate:"required,datetime=15:04:05"`
	TotalMarks int    `json:"total_marks" validate:"min=0"`
}
