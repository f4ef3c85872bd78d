package models

// Course carries the weekly teaching-hour requirement used by the session
// decomposer. Immutable once sessions reference it within a published term.
type Course struct {
	ID            string `db:"id" json:"id"`
	Code          string `db:"code" json:"code"`
	Name          string `db:"name" json:"name"`
	LectureHours  int    `db:"lecture_hours" json:"lecture_hours"`
	TutorialHours int    `db:"tutorial_hours" json:"tutorial_hours"`
	LabHours      int    `db:"lab_hours" json:"lab_hours"`
}

// SessionRequest is one atomic bookable teaching unit derived from a course's
// weekly hour requirement.
type SessionRequest struct {
	CourseID string      `json:"course_id"`
	Type     SessionType `json:"type"`
}
