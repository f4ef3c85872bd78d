package dto

import "github.com/campus-ops/timetable-api/internal/models"

// GenerateTimetableRequest asks the engine to build and publish a timetable
// for a cohort tuple.
type GenerateTimetableRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	BatchID      string `json:"batchId" validate:"required"`
	SemesterID   string `json:"semesterId" validate:"required"`
	Section      string `json:"section" validate:"required,len=1,alpha"`
}

// ConflictEntry records one session request that could not be placed.
type ConflictEntry struct {
	CourseID    string             `json:"courseId"`
	SessionType models.SessionType `json:"sessionType"`
	Reason      string             `json:"reason"`
}

// GenerateTimetableResponse summarises a generation run. A non-empty conflict
// list is not a failure: the timetable commits with whatever was placed.
type GenerateTimetableResponse struct {
	Success       bool            `json:"success"`
	TimetableID   string          `json:"timetableId"`
	TotalSessions int             `json:"totalSessions"`
	Conflicts     []ConflictEntry `json:"conflicts"`
}

// ManualSessionRequest is one hand-authored session inside a submitted day.
type ManualSessionRequest struct {
	CourseID     string             `json:"courseId" validate:"required"`
	RoomID       string             `json:"roomId" validate:"required"`
	InstructorID string             `json:"instructorId" validate:"required"`
	StartTime    string             `json:"startTime" validate:"required"`
	EndTime      string             `json:"endTime" validate:"required"`
	SessionType  models.SessionType `json:"sessionType" validate:"required,oneof=LEC LAB"`
}

// ManualDayRequest groups submitted sessions under one weekday.
type ManualDayRequest struct {
	DayOfWeek string                 `json:"dayOfWeek" validate:"required"`
	Sessions  []ManualSessionRequest `json:"sessions" validate:"required,min=1,dive"`
}

// SubmitManualTimetableRequest carries a full hand-authored day/session tree.
// When TimetableID is set the submission replaces that timetable's tree;
// otherwise a new version is created for the tuple.
type SubmitManualTimetableRequest struct {
	DepartmentID string                 `json:"departmentId" validate:"required"`
	BatchID      string                 `json:"batchId" validate:"required"`
	SemesterID   string                 `json:"semesterId" validate:"required"`
	Section      string                 `json:"section" validate:"required,len=1,alpha"`
	TimetableID  string                 `json:"timetableId"`
	Status       models.TimetableStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
	Days         []ManualDayRequest     `json:"days" validate:"required,min=1,dive"`
}

// SetTimetableStatusRequest toggles publish state for a stored timetable.
type SetTimetableStatusRequest struct {
	Status models.TimetableStatus `json:"status" validate:"required,oneof=DRAFT PUBLISHED"`
}

// TimetableQuery filters stored timetables by cohort tuple.
type TimetableQuery struct {
	DepartmentID string `form:"departmentId" json:"departmentId"`
	BatchID      string `form:"batchId" json:"batchId"`
	SemesterID   string `form:"semesterId" json:"semesterId"`
	Section      string `form:"section" json:"section"`
}

// AssignInstructorRequest asks for one more section-of-course assignment,
// gated by the weekly-capacity heuristic.
type AssignInstructorRequest struct {
	DepartmentID string `json:"departmentId" validate:"required"`
	CourseID     string `json:"courseId" validate:"required"`
	InstructorID string `json:"instructorId" validate:"required"`
}

// TimetableDayView groups a stored day's sessions for read endpoints.
type TimetableDayView struct {
	DayOfWeek string                    `json:"dayOfWeek"`
	Sessions  []models.TimetableSession `json:"sessions"`
}

// TimetableView is the full session tree of one stored timetable.
type TimetableView struct {
	Timetable models.Timetable   `json:"timetable"`
	Days      []TimetableDayView `json:"days"`
}
