package models

// InstructorAssignment maps a course to an instructor. At most one assignment
// per course is active for scheduling purposes.
type InstructorAssignment struct {
	ID           string `db:"id" json:"id"`
	CourseID     string `db:"course_id" json:"course_id"`
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	Active       bool   `db:"active" json:"active"`
}
