package model

// Student is a row of the `students` table.  student_id is assigned by the
// operator, not by the database.
//
// Fields:
//  StudentID   – externally assigned primary key.
//  SRN         – unique student registration number.
//  FullName    – display name.
//  Department  – owning department code (e.g. CSE).
//  YearOfStudy – 1 through 8.
//  Email       – optional contact address.
//  Phone       – optional contact number.
//  Gender      – M, F or O.
//  DOB         – date of birth as YYYY-MM-DD (optional).
type Student struct {
	StudentID   uint64  `json:"student_id"    validate:"required"`
	SRN         string  `json:"srn"           validate:"required,max=32"`
	FullName    string  `json:"full_name"     validate:"required,max=120"`
	Department  string  `json:"department"    validate:"required,max=60"`
	YearOfStudy int     `json:"year_of_study" validate:"min=1,max=8"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Gender      string  `json:"gender"        validate:"required,oneof=M F O"`
	DOB         *string `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// StudentUpdate carries the columns an operator may change after creation.
// SRN and date of birth are fixed once a student exists.
type StudentUpdate struct {
	FullName    string  `json:"full_name"     validate:"required,max=120"`
	Department  string  `json:"department"    validate:"required,max=60"`
	YearOfStudy int     `json:"year_of_study" validate:"min=1,max=8"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Gender      string  `json:"gender"        validate:"required,oneof=M F O"`
}
