package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutinesCallDrainsResultSets(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewMySQLRoutines(db)

	mock.ExpectQuery(regexp.QuoteMeta("CALL allocate_student_to_seat(?, ?, ?)")).
		WithArgs(uint64(4), uint64(5), uint64(101)).
		WillReturnRows(
			sqlmock.NewRows([]string{"message"}).AddRow("Allocated student 5 to seat 101"),
			sqlmock.NewRows([]string{"status"}),
		)
	mock.ExpectQuery(regexp.QuoteMeta("CALL remove_allocation(?)")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"message"}))

	msg, err := r.Allocate(context.Background(), 4, 5, 101)
	require.NoError(t, err)
	assert.Equal(t, "Allocated student 5 to seat 101", msg)

	msg, err = r.Remove(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "done", msg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutinesFunctions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewMySQLRoutines(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count_allocated_students(?)")).WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT hall_occupancy(?, ?)")).WithArgs(uint64(4), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"pct"}).AddRow(37.5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT get_student_seat(?)")).WithArgs("PES5").
		WillReturnRows(sqlmock.NewRows([]string{"seat"}).AddRow("LH-101 A1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT get_student_seat(?)")).WithArgs("NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"seat"}).AddRow(nil))

	n, err := r.Count(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	pct, err := r.Occupancy(ctx, 4, 1)
	require.NoError(t, err)
	assert.InDelta(t, 37.5, pct, 0.001)

	seat, err := r.Lookup(ctx, "PES5")
	require.NoError(t, err)
	assert.Equal(t, "LH-101 A1", seat)

	_, err = r.Lookup(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}
