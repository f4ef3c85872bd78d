package models

import "time"

// TimetableStatus represents lifecycle phases for stored timetables.
type TimetableStatus string

const (
	TimetableStatusDraft     TimetableStatus = "DRAFT"
	TimetableStatusPublished TimetableStatus = "PUBLISHED"
)

// SessionType tags a session as lecture-length or lab-length.
type SessionType string

const (
	SessionTypeLecture SessionType = "LEC"
	SessionTypeLab     SessionType = "LAB"
)

// Weekdays is the working week in scheduling order.
var Weekdays = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

// IsWeekday reports whether the given day name is a working day.
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Timetable is one versioned schedule for a (department, batch, semester,
// section) tuple. At most one row per tuple is PUBLISHED at any time; the
// version manager enforces this transactionally.
type Timetable struct {
	ID           string          `db:"id" json:"id"`
	DepartmentID string          `db:"department_id" json:"department_id"`
	BatchID      string          `db:"batch_id" json:"batch_id"`
	SemesterID   string          `db:"semester_id" json:"semester_id"`
	Section      string          `db:"section" json:"section"`
	Status       TimetableStatus `db:"status" json:"status"`
	Version      int             `db:"version" json:"version"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// TimetableDay is a weekday bucket inside a timetable.
type TimetableDay struct {
	ID          string `db:"id" json:"id"`
	TimetableID string `db:"timetable_id" json:"timetable_id"`
	DayOfWeek   string `db:"day_of_week" json:"day_of_week"`
}

// TimetableSession is one placed session under a timetable day.
type TimetableSession struct {
	ID             string      `db:"id" json:"id"`
	TimetableDayID string      `db:"timetable_day_id" json:"timetable_day_id"`
	CourseID       string      `db:"course_id" json:"course_id"`
	RoomID         string      `db:"room_id" json:"room_id"`
	InstructorID   string      `db:"instructor_id" json:"instructor_id"`
	StartTime      string      `db:"start_time" json:"start_time"`
	EndTime        string      `db:"end_time" json:"end_time"`
	SessionType    SessionType `db:"session_type" json:"session_type"`
}

// SessionRow is a session joined with its owning day, used by read views.
type SessionRow struct {
	TimetableSession
	DayOfWeek string `db:"day_of_week" json:"day_of_week"`
}

// PublishedSession is the occupancy projection of a committed session under a
// PUBLISHED timetable; the scheduler's global conflict checks read these.
type PublishedSession struct {
	TimetableID  string      `db:"timetable_id" json:"timetable_id"`
	RoomID       string      `db:"room_id" json:"room_id"`
	InstructorID string      `db:"instructor_id" json:"instructor_id"`
	DayOfWeek    string      `db:"day_of_week" json:"day_of_week"`
	StartTime    string      `db:"start_time" json:"start_time"`
	EndTime      string      `db:"end_time" json:"end_time"`
	SessionType  SessionType `db:"session_type" json:"session_type"`
}

// TimetableValidationError rejects a manual submission in full, carrying the
// per-session issues that caused it.
type TimetableValidationError struct {
	Message string   `json:"message"`
	Issues  []string `json:"issues"`
}

// Error implements the error interface.
func (e *TimetableValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
