// Package allocation holds the greedy seat planner used by auto-allocate
// and the per-exam lock that serializes planning cycles.
package allocation

// Proposal is one allocation the planner wants persisted.
type Proposal struct {
	AllocationID uint64 `json:"allocation_id"`
	ExamID       uint64 `json:"exam_id"`
	StudentID    uint64 `json:"student_id"`
	SeatID       uint64 `json:"seat_id"`
}

// Plan pairs the i-th student with the i-th seat for the first
// min(len(students), len(seats)) positions and numbers the results
// nextAllocID, nextAllocID+1, ... in order.
//
// students must be the exam's unallocated students in ascending id order;
// seats must be the free seats of the exam's halls ordered by hall and seat
// label.  Plan does not re-check or re-sort either list, so the caller is
// responsible for excluding anything that already holds an allocation for
// examID.  An empty plan is a valid result, never an error.
func Plan(examID uint64, students, seats []uint64, nextAllocID uint64) []Proposal {
	n := len(students)
	if len(seats) < n {
		n = len(seats)
	}
	out := make([]Proposal, n)
	for i := 0; i < n; i++ {
		out[i] = Proposal{
			AllocationID: nextAllocID + uint64(i),
			ExamID:       examID,
			StudentID:    students[i],
			SeatID:       seats[i],
		}
	}
	return out
}
