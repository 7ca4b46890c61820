package model

// Invigilator supervises halls during exams.  Assigned is a manual flag.
type Invigilator struct {
	InvigilatorID uint64  `json:"invigilator_id" validate:"required"`
	FullName      string  `json:"full_name"      validate:"required,max=120"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Assigned      bool    `json:"assigned"`
}
