package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campus-ops/timetable-api/internal/models"
)

// InstructorAssignmentRepository maps courses to their teaching instructors.
type InstructorAssignmentRepository struct {
	db *sqlx.DB
}

// NewInstructorAssignmentRepository constructs repository.
func NewInstructorAssignmentRepository(db *sqlx.DB) *InstructorAssignmentRepository {
	return &InstructorAssignmentRepository{db: db}
}

// ActiveByCourses returns the active instructor for each of the given
// courses. Courses without an active assignment are absent from the map.
func (r *InstructorAssignmentRepository) ActiveByCourses(ctx context.Context, courseIDs []string) (map[string]string, error) {
	if len(courseIDs) == 0 {
		return map[string]string{}, nil
	}
	const query = `SELECT id, course_id, instructor_id, active
FROM instructor_assignments WHERE active = TRUE AND course_id = ANY($1)`
	var assignments []models.InstructorAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, pq.Array(courseIDs)); err != nil {
		return nil, fmt.Errorf("list active instructor assignments: %w", err)
	}
	result := make(map[string]string, len(assignments))
	for _, a := range assignments {
		result[a.CourseID] = a.InstructorID
	}
	return result, nil
}

// CountActiveByInstructor counts course-section assignments an instructor
// already carries.
func (r *InstructorAssignmentRepository) CountActiveByInstructor(ctx context.Context, instructorID string) (int, error) {
	const query = `SELECT COUNT(*) FROM instructor_assignments WHERE active = TRUE AND instructor_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, instructorID); err != nil {
		return 0, fmt.Errorf("count instructor assignments: %w", err)
	}
	return count, nil
}

// Create inserts a new active assignment.
func (r *InstructorAssignmentRepository) Create(ctx context.Context, assignment *models.InstructorAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.Active = true
	const query = `INSERT INTO instructor_assignments (id, course_id, instructor_id, active, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, assignment.ID, assignment.CourseID, assignment.InstructorID, assignment.Active, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert instructor assignment: %w", err)
	}
	return nil
}
