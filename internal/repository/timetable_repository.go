package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/timetable-api/internal/models"
)

// TimetableRepository persists versioned timetables for cohort tuples.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a timetable assigning the next version for the tuple.
func (r *TimetableRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error {
	if t == nil {
		return fmt.Errorf("timetable payload is nil")
	}
	if t.DepartmentID == "" || t.BatchID == "" || t.SemesterID == "" || t.Section == "" {
		return fmt.Errorf("department_id, batch_id, semester_id and section are required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.TimetableStatusDraft
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM timetables
WHERE department_id = $1 AND batch_id = $2 AND semester_id = $3 AND section = $4`
	if err := sqlx.GetContext(ctx, target, &t.Version, nextVersionQuery, t.DepartmentID, t.BatchID, t.SemesterID, t.Section); err != nil {
		return fmt.Errorf("compute next timetable version: %w", err)
	}

	const insertQuery = `
INSERT INTO timetables (id, department_id, batch_id, semester_id, section, status, version, created_at, updated_at)
VALUES (:id, :department_id, :batch_id, :semester_id, :section, :status, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, t); err != nil {
		return fmt.Errorf("insert timetable: %w", err)
	}
	return nil
}

// DemotePublished moves any published timetable for the tuple back to draft.
// Runs inside the caller's transaction so demote-then-insert is atomic.
func (r *TimetableRepository) DemotePublished(ctx context.Context, exec sqlx.ExtContext, departmentID, batchID, semesterID, section string) error {
	const query = `UPDATE timetables SET status = $1, updated_at = $2
WHERE department_id = $3 AND batch_id = $4 AND semester_id = $5 AND section = $6 AND status = $7`
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, query,
		models.TimetableStatusDraft, time.Now().UTC(),
		departmentID, batchID, semesterID, section,
		models.TimetableStatusPublished,
	); err != nil {
		return fmt.Errorf("demote published timetable: %w", err)
	}
	return nil
}

// FindByID loads a timetable by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	const query = `SELECT id, department_id, batch_id, semester_id, section, status, version, created_at, updated_at
FROM timetables WHERE id = $1`
	var t models.Timetable
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByTuple returns all versions for the cohort tuple, newest first.
func (r *TimetableRepository) ListByTuple(ctx context.Context, departmentID, batchID, semesterID, section string) ([]models.Timetable, error) {
	const query = `SELECT id, department_id, batch_id, semester_id, section, status, version, created_at, updated_at
FROM timetables
WHERE department_id = $1 AND batch_id = $2 AND semester_id = $3 AND section = $4
ORDER BY version DESC`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, departmentID, batchID, semesterID, section); err != nil {
		return nil, fmt.Errorf("list timetables: %w", err)
	}
	return timetables, nil
}

// UpdateStatus sets the status of a timetable.
func (r *TimetableRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error {
	const query = `UPDATE timetables SET status = $1, updated_at = $2 WHERE id = $3`
	target := r.exec(exec)
	result, err := target.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update timetable status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable and its day/session tree.
func (r *TimetableRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)

	const deleteSessions = `DELETE FROM timetable_sessions
WHERE timetable_day_id IN (SELECT id FROM timetable_days WHERE timetable_id = $1)`
	if _, err := target.ExecContext(ctx, deleteSessions, id); err != nil {
		return fmt.Errorf("delete timetable sessions: %w", err)
	}

	const deleteDays = `DELETE FROM timetable_days WHERE timetable_id = $1`
	if _, err := target.ExecContext(ctx, deleteDays, id); err != nil {
		return fmt.Errorf("delete timetable days: %w", err)
	}

	const deleteTimetable = `DELETE FROM timetables WHERE id = $1`
	result, err := target.ExecContext(ctx, deleteTimetable, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
