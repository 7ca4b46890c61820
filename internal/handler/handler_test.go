package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exam-seat-allocator/internal/allocation"
	"github.com/iliyamo/exam-seat-allocator/internal/repository"
	"github.com/iliyamo/exam-seat-allocator/internal/service"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func newConsole(db *sql.DB) *ConsoleHandler {
	return NewConsoleHandler(
		repository.NewStudentRepo(db),
		repository.NewExamRepo(db),
		repository.NewHallRepo(db),
		repository.NewSeatRepo(db),
		repository.NewInvigilatorRepo(db),
		repository.NewHallAssignmentRepo(db),
		repository.NewAllocationRepo(db),
		repository.NewSeatCheckRepo(db),
	)
}

func newJSONRequest(method, path, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func record(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func serve(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	return record(e, newJSONRequest(method, path, body))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestCreateStudentValidation(t *testing.T) {
	db, _ := newMock(t)
	e := echo.New()
	e.POST("/students", newConsole(db).CreateStudent)

	rec := serve(e, http.MethodPost, "/students", `{"srn":"PES1","gender":"X","year_of_study":3}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := decode(t, rec)["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "required", fields["student_id"])
	assert.Equal(t, "oneof", fields["gender"])
	assert.Equal(t, "required", fields["full_name"])

	rec = serve(e, http.MethodPost, "/students", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStudentDuplicate(t *testing.T) {
	db, mock := newMock(t)
	e := echo.New()
	e.POST("/students", newConsole(db).CreateStudent)

	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'PES1' for key 'srn'"})
	rec := serve(e, http.MethodPost, "/students",
		`{"student_id":1,"srn":"PES1","full_name":"Asha","department":"CSE","year_of_study":2,"gender":"F"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetStudentNotFoundAndBadID(t *testing.T) {
	db, mock := newMock(t)
	e := echo.New()
	e.GET("/students/:id", newConsole(db).GetStudent)

	mock.ExpectQuery("FROM students WHERE student_id").WithArgs(uint64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))
	rec := serve(e, http.MethodGet, "/students/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "student not found", decode(t, rec)["error"])

	rec = serve(e, http.MethodGet, "/students/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(e, http.MethodGet, "/students/0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExamRejectsInvertedTimes(t *testing.T) {
	db, _ := newMock(t)
	e := echo.New()
	e.POST("/exams", newConsole(db).CreateExam)

	rec := serve(e, http.MethodPost, "/exams",
		`{"exam_id":7,"course_code":"CS101","course_name":"Intro","exam_date":"2026-05-04","start_time":"12:00:00","end_time":"09:00:00","total_marks":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSeatsFilter(t *testing.T) {
	db, mock := newMock(t)
	e := echo.New()
	e.GET("/seats", newConsole(db).ListSeats)

	mock.ExpectQuery("FROM seats WHERE hall_id").WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "hall_id", "seat_number", "is_accessible", "remarks"}).
			AddRow(11, 3, "A1", false, nil))
	rec := serve(e, http.MethodGet, "/seats?hall_id=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seat_number":"A1"`)

	rec = serve(e, http.MethodGet, "/seats?hall_id=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAllocationReferenced(t *testing.T) {
	db, mock := newMock(t)
	e := echo.New()
	e.DELETE("/allocations/:id", newConsole(db).DeleteAllocation)

	mock.ExpectExec("DELETE FROM allocations").WithArgs(uint64(9)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})
	rec := serve(e, http.MethodDelete, "/allocations/9", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type fakeAuto struct {
	sim      *service.Simulation
	res      *service.RunResult
	err      error
	operator uint64
	deadline time.Time
}

func (f *fakeAuto) Simulate(ctx context.Context, examID uint64) (*service.Simulation, error) {
	return f.sim, f.err
}

func (f *fakeAuto) Run(ctx context.Context, examID, operatorID uint64) (*service.RunResult, error) {
	f.operator = operatorID
	f.deadline, _ = ctx.Deadline()
	return f.res, f.err
}

func TestAutoAllocateEndpoints(t *testing.T) {
	auto := &fakeAuto{
		sim: &service.Simulation{ExamID: 4, Students: []uint64{1, 2}, Seats: []repository.FreeSeat{}, StudentCount: 2},
		res: &service.RunResult{ExamID: 4, NoSeatsLeft: true, UnplacedStudents: 2, Allocations: []allocation.Proposal{}},
	}
	h := NewAllocationHandler(auto, 0)
	e := echo.New()
	e.GET("/exams/:id/auto-allocate/simulate", h.Simulate)
	e.POST("/exams/:id/auto-allocate", func(c echo.Context) error {
		c.Set("user_id", uint64(17))
		return h.Run(c)
	})

	rec := serve(e, http.MethodGet, "/exams/4/auto-allocate/simulate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["would_allocate"])

	rec = serve(e, http.MethodPost, "/exams/4/auto-allocate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["no_seats_left"])
	assert.Equal(t, []any{}, body["allocations"])
	assert.Equal(t, uint64(17), auto.operator)
}

func TestRunBoundedByLockTTL(t *testing.T) {
	auto := &fakeAuto{res: &service.RunResult{ExamID: 4, Allocations: []allocation.Proposal{}}}
	h := NewAllocationHandler(auto, 45*time.Second)
	e := echo.New()
	e.POST("/exams/:id/auto-allocate", h.Run)

	before := time.Now()
	rec := serve(e, http.MethodPost, "/exams/4/auto-allocate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, auto.deadline.IsZero(), "run context must carry a deadline")
	assert.WithinDuration(t, before.Add(45*time.Second), auto.deadline, 5*time.Second)

	assert.Equal(t, defaultRunTimeout, NewAllocationHandler(auto, 0).RunTimeout)
}

func TestAutoAllocateErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{allocation.ErrExamLocked, http.StatusConflict},
		{repository.ErrExamNotFound, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{sql.ErrConnDone, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := NewAllocationHandler(&fakeAuto{err: tc.err}, time.Second)
		e := echo.New()
		e.POST("/exams/:id/auto-allocate", h.Run)
		rec := serve(e, http.MethodPost, "/exams/4/auto-allocate", "")
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestRunSelect(t *testing.T) {
	db, mock := newMock(t)
	h := NewReportHandler(repository.NewReportRepo(db, 10), repository.NewHallRepo(db))
	e := echo.New()
	e.POST("/queries/select", h.RunSelect)

	rec := serve(e, http.MethodPost, "/queries/select", `{"query":"DELETE FROM students"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(e, http.MethodPost, "/queries/select", `{"query":"SELECT 1; DROP TABLE exams"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT nope FROM students").
		WillReturnError(&mysql.MySQLError{Number: 1054, Message: "Unknown column 'nope' in 'field list'"})
	mock.ExpectRollback()
	rec = serve(e, http.MethodPost, "/queries/select", `{"query":"SELECT nope FROM students"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(1054), decode(t, rec)["code"])
}

func TestSeatMapRows(t *testing.T) {
	db, mock := newMock(t)
	h := NewReportHandler(repository.NewReportRepo(db, 10), repository.NewHallRepo(db))
	e := echo.New()
	e.GET("/halls/:id/seat-map", h.SeatMap)

	mock.ExpectQuery("FROM halls WHERE hall_id").WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"hall_id", "hall_name", "capacity", "location"}).AddRow(2, "LH-2", 3, nil))
	mock.ExpectQuery("FROM seats WHERE hall_id").WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id", "seat_number", "is_accessible"}).
			AddRow(1, "A1", false).AddRow(2, "A2", false).AddRow(3, "A3", true))
	rec := serve(e, http.MethodGet, "/halls/2/seat-map?per_row=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp seatMapResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	assert.Len(t, resp.Rows[0], 2)
	assert.Len(t, resp.Rows[1], 1)
	assert.Len(t, resp.Seats, 3)

	rec = serve(e, http.MethodGet, "/halls/2/seat-map?per_row=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeRoutines struct {
	seat string
	err  error
}

func (f fakeRoutines) Allocate(ctx context.Context, examID, studentID, seatID uint64) (string, error) {
	return "Allocation successful", f.err
}
func (f fakeRoutines) Remove(ctx context.Context, allocationID uint64) (string, error) {
	return "done", f.err
}
func (f fakeRoutines) Count(ctx context.Context, examID uint64) (int64, error) { return 3, f.err }
func (f fakeRoutines) Occupancy(ctx context.Context, examID, hallID uint64) (float64, error) {
	return 37.5, f.err
}
func (f fakeRoutines) Lookup(ctx context.Context, srn string) (string, error) { return f.seat, f.err }

func TestRoutineEndpoints(t *testing.T) {
	e := echo.New()
	h := NewRoutineHandler(fakeRoutines{seat: "LH-1 A3"})
	e.POST("/routines/allocate", h.Allocate)
	e.GET("/routines/count", h.Count)
	e.GET("/routines/occupancy", h.Occupancy)
	e.GET("/routines/seat", h.Seat)

	rec := serve(e, http.MethodPost, "/routines/allocate", `{"exam_id":1,"student_id":2,"seat_id":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Allocation successful", decode(t, rec)["message"])

	rec = serve(e, http.MethodPost, "/routines/allocate", `{"exam_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(e, http.MethodGet, "/routines/count", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(e, http.MethodGet, "/routines/count?exam_id=1", "")
	assert.Equal(t, float64(3), decode(t, rec)["allocated"])

	rec = serve(e, http.MethodGet, "/routines/occupancy?exam_id=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(e, http.MethodGet, "/routines/occupancy?exam_id=1&hall_id=2", "")
	assert.Equal(t, 37.5, decode(t, rec)["occupancy_pct"])

	rec = serve(e, http.MethodGet, "/routines/seat?srn=PES1", "")
	assert.Equal(t, "LH-1 A3", decode(t, rec)["seat"])

	e2 := echo.New()
	e2.GET("/routines/seat", NewRoutineHandler(fakeRoutines{err: repository.ErrNotFound}).Seat)
	rec = serve(e2, http.MethodGet, "/routines/seat?srn=PES9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRejectsInvalidIdentifiers(t *testing.T) {
	db, mock := newMock(t)
	h := NewAdminHandler(repository.NewAdminRepo(db, "exam_seat_allocator", "svc"))
	e := echo.New()
	e.DELETE("/admin/users/:user", h.DropUser)
	e.POST("/admin/users/:user/grant", h.Grant)
	e.GET("/admin/triggers/:name", h.ShowTrigger)

	rec := serve(e, http.MethodDelete, "/admin/users/bob'--", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(e, http.MethodGet, "/admin/triggers/x%3BDROP", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(e, http.MethodPost, "/admin/users/bob/grant", `{"level":"superuser"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mock.ExpectExec("DROP USER 'bob'@'%'").
		WillReturnError(&mysql.MySQLError{Number: 1396, Message: "Operation DROP USER failed"})
	rec = serve(e, http.MethodDelete, "/admin/users/bob", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	mock.ExpectExec("GRANT SELECT ON `exam_seat_allocator`.\\* TO 'bob'@'localhost'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	rec = serve(e, http.MethodPost, "/admin/users/bob/grant?host=localhost", `{"level":"read_only"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
