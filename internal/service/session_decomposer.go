package service

import (
	"github.com/campus-ops/timetable-api/internal/models"
)

// sessionCounts is the per-course decomposition of weekly hours into discrete
// bookable sessions. Rounding is always upward: a partial remainder still
// consumes a full slot.
type sessionCounts struct {
	Lecture int
	Lab     int
}

func decomposeCourse(course models.Course, cfg models.WorkHoursConfig) sessionCounts {
	return sessionCounts{
		Lecture: ceilDiv(course.LectureHours+course.TutorialHours, cfg.LectureDuration),
		Lab:     ceilDiv(course.LabHours, cfg.LabDuration),
	}
}

// buildSessionRequests expands a course list into the ordered request stream
// the scheduler consumes. Policy: every lecture request (courses in catalog
// order) precedes every lab request, so first-fit fills early slots with
// lectures; lecture and lab windows are otherwise free to interleave.
func buildSessionRequests(courses []models.Course, cfg models.WorkHoursConfig) []models.SessionRequest {
	var requests []models.SessionRequest
	for _, course := range courses {
		counts := decomposeCourse(course, cfg)
		for i := 0; i < counts.Lecture; i++ {
			requests = append(requests, models.SessionRequest{CourseID: course.ID, Type: models.SessionTypeLecture})
		}
	}
	for _, course := range courses {
		counts := decomposeCourse(course, cfg)
		for i := 0; i < counts.Lab; i++ {
			requests = append(requests, models.SessionRequest{CourseID: course.ID, Type: models.SessionTypeLab})
		}
	}
	return requests
}

func ceilDiv(hours, duration int) int {
	if hours <= 0 || duration <= 0 {
		return 0
	}
	return (hours + duration - 1) / duration
}
