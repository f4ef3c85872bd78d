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

func TestInstructorAssignmentRepositoryActiveByCourses(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInstructorAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "instructor_id", "active"}).
		AddRow("a1", "math", "teacher-1", true).
		AddRow("a2", "physics", "teacher-2", true)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE active = TRUE AND course_id = ANY($1)")).
		WithArgs(pq.Array([]string{"math", "physics"})).
		WillReturnRows(rows)

	result, err := repo.ActiveByCourses(context.Background(), []string{"math", "physics"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"math": "teacher-1", "physics": "teacher-2"}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorAssignmentRepositoryActiveByCoursesEmptyInput(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInstructorAssignmentRepository(db)

	result, err := repo.ActiveByCourses(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorAssignmentRepositoryCountActiveByInstructor(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInstructorAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM instructor_assignments WHERE active = TRUE AND instructor_id = $1")).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountActiveByInstructor(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstructorAssignmentRepositoryCreate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInstructorAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instructor_assignments")).
		WithArgs(sqlmock.AnyArg(), "math", "teacher-1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.InstructorAssignment{CourseID: "math", InstructorID: "teacher-1"}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.True(t, assignment.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}
