package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/timetable-api/internal/models"
)

// CourseRepository reads the course catalog scoped to cohort tuples.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course by its identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, code, name, lecture_hours, tutorial_hours, lab_hours FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByBatch returns the courses taught to a (department, batch, semester)
// cohort, in catalog order.
func (r *CourseRepository) ListByBatch(ctx context.Context, departmentID, batchID, semesterID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.code, c.name, c.lecture_hours, c.tutorial_hours, c.lab_hours
FROM courses c
JOIN course_batches cb ON cb.course_id = c.id
WHERE cb.department_id = $1 AND cb.batch_id = $2 AND cb.semester_id = $3
ORDER BY c.code ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, departmentID, batchID, semesterID); err != nil {
		return nil, fmt.Errorf("list courses for batch: %w", err)
	}
	return courses, nil
}
