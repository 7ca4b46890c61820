package model

// HallAssignment binds a hall to an exam, optionally with an invigilator.
// Only halls bound this way are eligible for auto-allocation of that exam.
type HallAssignment struct {
	AssignmentID  uint64  `json:"assignment_id" validate:"required"`
	ExamID        uint64  `json:"exam_id"       validate:"required"`
	HallID        uint64  `json:"hall_id"       validate:"required"`
	InvigilatorID *uint64 `json:"invigilator_id,omitempty"`
	StartTime     string  `json:"start_time"    validate:"required,datetime=15:04:05"`
	EndTime       string  `json:"end_time"      validate:"required,datetime=15:04:05"`
}
