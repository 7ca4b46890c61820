package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-allocator/internal/model"
)

func TestStudentCRUD(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewStudentRepo(db)
	ctx := context.Background()

	email := "asha@example.edu"
	s := &model.Student{StudentID: 5, SRN: "PES5", FullName: "Asha", Department: "CSE", YearOfStudy: 2, Email: &email, Gender: "F"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO students")).
		WithArgs(uint64(5), "PES5", "Asha", "CSE", 2, &email, nil, "F", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(ctx, s))

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE student_id = ?")).WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "srn", "full_name", "department", "year_of_study", "email", "phone", "gender", "dob"}).
			AddRow(5, "PES5", "Asha", "CSE", 2, email, nil, "F", "2004-03-01"))
	got, err := repo.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "PES5", got.SRN)
	require.NotNil(t, got.DOB)
	assert.Equal(t, "2004-03-01", *got.DOB)
	assert.Nil(t, got.Phone)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Update(ctx, 6, model.StudentUpdate{FullName: "X", Department: "ECE", YearOfStudy: 1, Gender: "M"})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	mock.ExpectExec("DELETE FROM students").WithArgs(uint64(5)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	assert.ErrorIs(t, repo.Delete(ctx, 5), ErrReferenced)

	mock.ExpectQuery("FROM students WHERE student_id").WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))
	_, err = repo.GetByID(ctx, 9)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatListByHall(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM seats WHERE hall_id = ? ORDER BY hall_id, seat_number")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "hall_id", "seat_number", "is_accessible", "remarks"}).
			AddRow(101, 1, "A1", false, nil))

	hall := uint64(1)
	seats, err := NewSeatRepo(db).List(context.Background(), &hall)
	require.NoError(t, err)
	assert.Equal(t, []model.Seat{{SeatID: 101, HallID: 1, SeatNumber: "A1"}}, seats)
}
