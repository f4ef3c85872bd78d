package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campus-ops/timetable-api/internal/models"
)

// SessionRepository persists timetable days and session assignments and
// serves the published-occupancy reads the scheduler's conflict checks need.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertDay creates a weekday bucket under a timetable.
func (r *SessionRepository) InsertDay(ctx context.Context, exec sqlx.ExtContext, day *models.TimetableDay) error {
	if day.ID == "" {
		day.ID = uuid.NewString()
	}
	const query = `INSERT INTO timetable_days (id, timetable_id, day_of_week) VALUES ($1, $2, $3)`
	if _, err := r.exec(exec).ExecContext(ctx, query, day.ID, day.TimetableID, day.DayOfWeek); err != nil {
		return fmt.Errorf("insert timetable day: %w", err)
	}
	return nil
}

// InsertSession creates one session assignment under a day.
func (r *SessionRepository) InsertSession(ctx context.Context, exec sqlx.ExtContext, session *models.TimetableSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	const query = `INSERT INTO timetable_sessions (id, timetable_day_id, course_id, room_id, instructor_id, start_time, end_time, session_type)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.exec(exec).ExecContext(ctx, query,
		session.ID, session.TimetableDayID, session.CourseID, session.RoomID,
		session.InstructorID, session.StartTime, session.EndTime, session.SessionType,
	); err != nil {
		return fmt.Errorf("insert timetable session: %w", err)
	}
	return nil
}

// DeleteByTimetable removes the whole day/session tree of a timetable.
func (r *SessionRepository) DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error {
	target := r.exec(exec)
	const deleteSessions = `DELETE FROM timetable_sessions
WHERE timetable_day_id IN (SELECT id FROM timetable_days WHERE timetable_id = $1)`
	if _, err := target.ExecContext(ctx, deleteSessions, timetableID); err != nil {
		return fmt.Errorf("delete sessions for timetable: %w", err)
	}
	const deleteDays = `DELETE FROM timetable_days WHERE timetable_id = $1`
	if _, err := target.ExecContext(ctx, deleteDays, timetableID); err != nil {
		return fmt.Errorf("delete days for timetable: %w", err)
	}
	return nil
}

// ListByTimetable returns a timetable's sessions joined with their weekday.
func (r *SessionRepository) ListByTimetable(ctx context.Context, timetableID string) ([]models.SessionRow, error) {
	const query = `SELECT s.id, s.timetable_day_id, s.course_id, s.room_id, s.instructor_id,
s.start_time, s.end_time, s.session_type, d.day_of_week
FROM timetable_sessions s
JOIN timetable_days d ON d.id = s.timetable_day_id
WHERE d.timetable_id = $1
ORDER BY d.day_of_week ASC, s.start_time ASC`
	var rows []models.SessionRow
	if err := r.db.SelectContext(ctx, &rows, query, timetableID); err != nil {
		return nil, fmt.Errorf("list sessions for timetable: %w", err)
	}
	return rows, nil
}

// PublishedOccupancy loads every published session touching the given rooms or
// instructors. Runs on the caller's transaction so conflict checks read the
// same snapshot the pending writes land in.
func (r *SessionRepository) PublishedOccupancy(ctx context.Context, exec sqlx.ExtContext, roomIDs, instructorIDs []string) ([]models.PublishedSession, error) {
	if len(roomIDs) == 0 && len(instructorIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT d.timetable_id, s.room_id, s.instructor_id, d.day_of_week, s.start_time, s.end_time, s.session_type
FROM timetable_sessions s
JOIN timetable_days d ON d.id = s.timetable_day_id
JOIN timetables t ON t.id = d.timetable_id
WHERE t.status = $1 AND (s.room_id = ANY($2) OR s.instructor_id = ANY($3))`
	var sessions []models.PublishedSession
	rows, err := r.exec(exec).QueryxContext(ctx, query,
		models.TimetableStatusPublished, pq.Array(roomIDs), pq.Array(instructorIDs))
	if err != nil {
		return nil, fmt.Errorf("load published occupancy: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.PublishedSession
		if err := rows.StructScan(&s); err != nil {
			return nil, fmt.Errorf("scan published session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published occupancy: %w", err)
	}
	return sessions, nil
}

// ListPublishedAt returns published sessions occupying a room at an exact
// day/time. The manual validator uses it to report room/instructor clashes.
func (r *SessionRepository) ListPublishedAt(ctx context.Context, exec sqlx.ExtContext, roomID, dayOfWeek, startTime string) ([]models.PublishedSession, error) {
	const query = `SELECT d.timetable_id, s.room_id, s.instructor_id, d.day_of_week, s.start_time, s.end_time, s.session_type
FROM timetable_sessions s
JOIN timetable_days d ON d.id = s.timetable_day_id
JOIN timetables t ON t.id = d.timetable_id
WHERE t.status = $1 AND s.room_id = $2 AND d.day_of_week = $3 AND s.start_time = $4`
	var sessions []models.PublishedSession
	rows, err := r.exec(exec).QueryxContext(ctx, query,
		models.TimetableStatusPublished, roomID, dayOfWeek, startTime)
	if err != nil {
		return nil, fmt.Errorf("load published sessions at slot: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s models.PublishedSession
		if err := rows.StructScan(&s); err != nil {
			return nil, fmt.Errorf("scan published session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published sessions: %w", err)
	}
	return sessions, nil
}
