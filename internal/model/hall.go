package model

// Hall is an examination room.  Capacity is informational; the seats table
// is what auto-allocation actually draws from.
//
// Fields:
//  HallID   – externally assigned primary key.
//  HallName – label used on seat maps and dashboards (e.g. LH-101).
//  Capacity – declared number of seats.
//  Location – optional building / floor description.
type Hall struct {
	HallID   uint64  `json:"hall_id"   validate:"required"`
	HallName string  `json:"hall_name" validate:"required,max=60"`
	Capacity int     `json:"capacity"  validate:"min=1"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=120"`
}
