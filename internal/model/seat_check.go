package model

// SeatCheck records an invigilator verifying an allocation on exam day.
type SeatCheck struct {
	CheckID      uint64  `json:"check_id"      validate:"required"`
	AllocationID uint64  `json:"allocation_id" validate:"required"`
	CheckedBy    *uint64 `json:"checked_by,omitempty"`
	Status       string  `json:"status"        validate:"required,oneof=OK MISMATCH ABSENT OTHER"`
	Remarks      *string `json:"remarks,omitempty" validate:"omitempty,max=255"`
}
