package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/timetable-api/internal/models"
)

func TestSessionRepositoryInsertDay(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_days (id, timetable_id, day_of_week) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), "tt-1", "MONDAY").
		WillReturnResult(sqlmock.NewResult(1, 1))

	day := &models.TimetableDay{TimetableID: "tt-1", DayOfWeek: "MONDAY"}
	require.NoError(t, repo.InsertDay(context.Background(), nil, day))
	assert.NotEmpty(t, day.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryInsertSession(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_sessions")).
		WithArgs(sqlmock.AnyArg(), "day-1", "math", "room-101", "teacher-1", "09:00", "10:00", string(models.SessionTypeLecture)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.TimetableSession{
		TimetableDayID: "day-1",
		CourseID:       "math",
		RoomID:         "room-101",
		InstructorID:   "teacher-1",
		StartTime:      "09:00",
		EndTime:        "10:00",
		SessionType:    models.SessionTypeLecture,
	}
	require.NoError(t, repo.InsertSession(context.Background(), nil, session))
	assert.NotEmpty(t, session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDeleteByTimetable(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_sessions")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_days WHERE timetable_id = $1")).
		WithArgs("tt-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByTimetable(context.Background(), nil, "tt-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByTimetable(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "timetable_day_id", "course_id", "room_id", "instructor_id", "start_time", "end_time", "session_type", "day_of_week"}).
		AddRow("s1", "day-1", "math", "room-101", "teacher-1", "09:00", "10:00", string(models.SessionTypeLecture), "MONDAY")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN timetable_days d ON d.id = s.timetable_day_id")).
		WithArgs("tt-1").
		WillReturnRows(rows)

	list, err := repo.ListByTimetable(context.Background(), "tt-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "MONDAY", list[0].DayOfWeek)
	assert.Equal(t, "math", list[0].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryPublishedOccupancy(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"timetable_id", "room_id", "instructor_id", "day_of_week", "start_time", "end_time", "session_type"}).
		AddRow("tt-1", "room-101", "teacher-1", "MONDAY", "09:00", "10:00", string(models.SessionTypeLecture))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.status = $1 AND (s.room_id = ANY($2) OR s.instructor_id = ANY($3))")).
		WithArgs(string(models.TimetableStatusPublished), pq.Array([]string{"room-101"}), pq.Array([]string{"teacher-1"})).
		WillReturnRows(rows)

	sessions, err := repo.PublishedOccupancy(context.Background(), nil, []string{"room-101"}, []string{"teacher-1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "room-101", sessions[0].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryPublishedOccupancyShortCircuitsEmptyFilters(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	sessions, err := repo.PublishedOccupancy(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListPublishedAt(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"timetable_id", "room_id", "instructor_id", "day_of_week", "start_time", "end_time", "session_type"}).
		AddRow("tt-1", "room-101", "teacher-1", "MONDAY", "09:00", "10:00", string(models.SessionTypeLecture))
	mock.ExpectQuery(regexp.QuoteMeta("AND s.room_id = $2 AND d.day_of_week = $3 AND s.start_time = $4")).
		WithArgs(string(models.TimetableStatusPublished), "room-101", "MONDAY", "09:00").
		WillReturnRows(rows)

	sessions, err := repo.ListPublishedAt(context.Background(), nil, "room-101", "MONDAY", "09:00")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "tt-1", sessions[0].TimetableID)
	assert.Equal(t, "teacher-1", sessions[0].InstructorID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
