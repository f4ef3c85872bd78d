package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/timetable-api/internal/models"
)

// SectionRoomRepository reads room inventory scoped to a section.
type SectionRoomRepository struct {
	db *sqlx.DB
}

// NewSectionRoomRepository constructs repository.
func NewSectionRoomRepository(db *sqlx.DB) *SectionRoomRepository {
	return &SectionRoomRepository{db: db}
}

// ListBySection returns the rooms owned by a section, classroom first.
func (r *SectionRoomRepository) ListBySection(ctx context.Context, departmentID, batchID, section string) ([]models.SectionRoom, error) {
	const query = `SELECT id, department_id, batch_id, section, room_id, room_type
FROM section_rooms
WHERE department_id = $1 AND batch_id = $2 AND section = $3
ORDER BY room_type ASC`
	var rooms []models.SectionRoom
	if err := r.db.SelectContext(ctx, &rooms, query, departmentID, batchID, section); err != nil {
		return nil, fmt.Errorf("list section rooms: %w", err)
	}
	return rooms, nil
}

// CountSectionsForCourse counts distinct sections that already exist for the
// batches a course is taught to. Feeds the instructor-load heuristic.
func (r *SectionRoomRepository) CountSectionsForCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(DISTINCT sr.section)
FROM section_rooms sr
JOIN course_batches cb ON cb.department_id = sr.department_id AND cb.batch_id = sr.batch_id
WHERE cb.course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count sections for course: %w", err)
	}
	return count, nil
}
