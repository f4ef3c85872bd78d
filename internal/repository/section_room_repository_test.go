package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/timetable-api/internal/models"
)

func TestSectionRoomRepositoryListBySection(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSectionRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "department_id", "batch_id", "section", "room_id", "room_type"}).
		AddRow("sr-1", "dept-1", "batch-1", "A", "room-101", string(models.RoomTypeClassroom)).
		AddRow("sr-2", "dept-1", "batch-1", "A", "lab-1", string(models.RoomTypeLab))
	mock.ExpectQuery(regexp.QuoteMeta("FROM section_rooms")).
		WithArgs("dept-1", "batch-1", "A").
		WillReturnRows(rows)

	rooms, err := repo.ListBySection(context.Background(), "dept-1", "batch-1", "A")
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, models.RoomTypeClassroom, rooms[0].RoomType)
	assert.Equal(t, "lab-1", rooms[1].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRoomRepositoryCountSectionsForCourse(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSectionRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT sr.section)")).
		WithArgs("math").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountSectionsForCourse(context.Background(), "math")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
