package model

// Seat is a physical seat inside a hall.  SeatNumber is a label such as
// "A1"; seats of a hall are always listed in label order.
//
// Fields:
//  SeatID       – externally assigned primary key.
//  HallID       – owning hall.
//  SeatNumber   – label unique within the hall.
//  IsAccessible – reserved for students needing accessible seating.
//  Remarks      – free text (optional).
type Seat struct {
	SeatID       uint64  `json:"seat_id"     validate:"required"`
	HallID       uint64  `json:"hall_id"     validate:"required"`
	SeatNumber   string  `json:"seat_number" validate:"required,max=16"`
	IsAccessible bool    `json:"is_accessible"`
	Remarks      *string `json:"remarks,omitempty" validate:"omitempty,max=255"`
}

// SeatUpdate carries the mutable seat columns.  A seat never moves halls.
type SeatUpdate struct {
	SeatNumber   string  `json:"seat_number" validate:"required,max=16"`
	IsAccessible bool    `json:"is_accessible"`
	Remarks      *string `json:"remarks,omitempty" validate:"omitempty,max=255"`
}
