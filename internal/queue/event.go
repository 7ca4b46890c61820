// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// AllocationCompletedQueue is the durable queue carrying
// AllocationCompletedEvent messages.
const AllocationCompletedQueue = "allocation.completed"

// AllocationCompletedEvent is published after an auto-allocate run has
// committed.  It carries enough for an audit trail without querying the
// primary database.
type AllocationCompletedEvent struct {
	EventID           string `json:"event_id"`
	ExamID            uint64 `json:"exam_id"`
	OperatorID        uint64 `json:"operator_id"`
	Allocated         int    `json:"allocated"`
	FirstAllocationID uint64 `json:"first_allocation_id,omitempty"`
	LastAllocationID  uint64 `json:"last_allocation_id,omitempty"`
	UnplacedStudents  int    `json:"unplaced_students"`
	RemainingSeats    int    `json:"remaining_seats"`
	CompletedAt       string `json:"completed_at"`
}
