package allocation

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanExamples(t *testing.T) {
	const exam = 42
	tests := []struct {
		name     string
		students []uint64
		seats    []uint64
		next     uint64
		want     []Proposal
	}{
		{
			name:  "no students",
			seats: []uint64{101, 102},
			next:  1,
			want:  []Proposal{},
		},
		{
			name: "nothing at all",
			next: 1,
			want: []Proposal{},
		},
		{
			name:     "fewer seats than students",
			students: []uint64{5, 9},
			seats:    []uint64{101},
			next:     7,
			want:     []Proposal{{7, exam, 5, 101}},
		},
		{
			name:     "one seat each",
			students: []uint64{5, 9},
			seats:    []uint64{101, 102},
			next:     7,
			want:     []Proposal{{7, exam, 5, 101}, {8, exam, 9, 102}},
		},
		{
			name:     "fewer students than seats",
			students: []uint64{3},
			seats:    []uint64{201, 202, 203},
			next:     1,
			want:     []Proposal{{1, exam, 3, 201}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(exam, tt.students, tt.seats, tt.next)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		students := ascendingIDs(rng, rng.Intn(30))
		seats := shuffledIDs(rng, rng.Intn(30))
		next := uint64(rng.Intn(1000) + 1)

		plan := Plan(9, students, seats, next)

		n := min(len(students), len(seats))
		require.Len(t, plan, n)
		for i, p := range plan {
			assert.Equal(t, uint64(9), p.ExamID)
			assert.Equal(t, students[i], p.StudentID, "student prefix order")
			assert.Equal(t, seats[i], p.SeatID, "seat prefix order kept without re-sorting")
			assert.Equal(t, next+uint64(i), p.AllocationID, "contiguous ids")
		}
		assert.Equal(t, plan, Plan(9, students, seats, next), "same input, same plan")
	}
}

func TestPlanDoesNotMutateInput(t *testing.T) {
	students := []uint64{1, 2, 3}
	seats := []uint64{30, 10, 20}
	Plan(1, students, seats, 1)
	assert.Equal(t, []uint64{1, 2, 3}, students)
	assert.Equal(t, []uint64{30, 10, 20}, seats)
}

func ascendingIDs(rng *rand.Rand, n int) []uint64 {
	out := make([]uint64, n)
	cur := uint64(0)
	for i := range out {
		cur += uint64(rng.Intn(5) + 1)
		out[i] = cur
	}
	return out
}

func shuffledIDs(rng *rand.Rand, n int) []uint64 {
	out := ascendingIDs(rng, n)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
