package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/campus-ops/timetable-api/internal/models"
)

// WorkHoursRepository reads department working-hours configuration.
type WorkHoursRepository struct {
	db *sqlx.DB
}

// NewWorkHoursRepository constructs repository.
func NewWorkHoursRepository(db *sqlx.DB) *WorkHoursRepository {
	return &WorkHoursRepository{db: db}
}

// FindByDepartment loads the single working-hours record for a department.
func (r *WorkHoursRepository) FindByDepartment(ctx context.Context, departmentID string) (*models.WorkHoursConfig, error) {
	const query = `SELECT department_id, day_start, day_end, lecture_duration, lab_duration
FROM work_hours_configs WHERE department_id = $1`
	var cfg models.WorkHoursConfig
	if err := r.db.GetContext(ctx, &cfg, query, departmentID); err != nil {
		return nil, err
	}
	return &cfg, nil
}
