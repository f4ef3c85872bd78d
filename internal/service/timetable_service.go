package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campus-ops/timetable-api/internal/dto"
	"github.com/campus-ops/timetable-api/internal/models"
	appErrors "github.com/campus-ops/timetable-api/pkg/errors"
	"github.com/campus-ops/timetable-api/pkg/export"
)

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// TimetableService serves stored timetables: reads, publish toggling,
// deletion and export. Published views are cached in Redis.
type TimetableService struct {
	timetables timetableStore
	sessions   sessionStore
	tx         txProvider
	cache      timetableCache
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewTimetableService wires dependencies.
func NewTimetableService(
	timetables timetableStore,
	sessions sessionStore,
	tx txProvider,
	cache timetableCache,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		timetables: timetables,
		sessions:   sessions,
		tx:         tx,
		cache:      cache,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Get loads a timetable's full session tree.
func (s *TimetableService) Get(ctx context.Context, id string) (*dto.TimetableView, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}

	cacheKey := fmt.Sprintf("timetable:view:%s", id)
	if s.cache != nil {
		var cached dto.TimetableView
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	rows, err := s.sessions.ListByTimetable(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable sessions")
	}

	view := buildTimetableView(*record, rows)

	if s.cache != nil && record.Status == models.TimetableStatusPublished {
		if cacheErr := s.cache.Set(ctx, cacheKey, view, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(cacheErr))
		}
	}
	return view, nil
}

// List returns all versions for a cohort tuple, newest first.
func (s *TimetableService) List(ctx context.Context, query dto.TimetableQuery) ([]models.Timetable, error) {
	if query.DepartmentID == "" || query.BatchID == "" || query.SemesterID == "" || query.Section == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "departmentId, batchId, semesterId and section are required")
	}
	list, err := s.timetables.ListByTuple(ctx, query.DepartmentID, query.BatchID, query.SemesterID, query.Section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return list, nil
}

// SetStatus toggles the publish state of a timetable. Publishing demotes any
// sibling published timetable for the same tuple in the same transaction, so
// the one-published-per-tuple invariant cannot be observed broken.
func (s *TimetableService) SetStatus(ctx context.Context, id string, status models.TimetableStatus) (*models.Timetable, error) {
	record, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if record.Status == status {
		return record, nil
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if status == models.TimetableStatusPublished {
		if err = s.timetables.DemotePublished(ctx, tx, record.DepartmentID, record.BatchID, record.SemesterID, record.Section); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to demote previous timetable")
			return nil, err
		}
	}
	if err = s.timetables.UpdateStatus(ctx, tx, id, status); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable status")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit status change")
		return nil, err
	}

	record.Status = status
	s.invalidate(ctx)
	return record, nil
}

// Delete removes a timetable and its day/session tree.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.timetables.Delete(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			return err
		}
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit deletion")
		return err
	}

	s.invalidate(ctx)
	return nil
}

// ExportDataset flattens a timetable into tabular form for CSV/PDF rendering.
func (s *TimetableService) ExportDataset(ctx context.Context, id string) (export.Dataset, string, error) {
	view, err := s.Get(ctx, id)
	if err != nil {
		return export.Dataset{}, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Course", "Room", "Instructor", "Type"},
	}
	for _, day := range view.Days {
		for _, session := range day.Sessions {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Day":        day.DayOfWeek,
				"Start":      session.StartTime,
				"End":        session.EndTime,
				"Course":     session.CourseID,
				"Room":       session.RoomID,
				"Instructor": session.InstructorID,
				"Type":       string(session.SessionType),
			})
		}
	}
	title := fmt.Sprintf("timetable %s-%s-%s section %s v%d",
		view.Timetable.DepartmentID, view.Timetable.BatchID, view.Timetable.SemesterID,
		view.Timetable.Section, view.Timetable.Version)
	return dataset, title, nil
}

func (s *TimetableService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "timetable:*"); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.Error(err))
	}
}

func buildTimetableView(record models.Timetable, rows []models.SessionRow) *dto.TimetableView {
	view := &dto.TimetableView{Timetable: record, Days: make([]dto.TimetableDayView, 0)}
	for _, day := range models.Weekdays {
		var sessions []models.TimetableSession
		for _, row := range rows {
			if row.DayOfWeek == day {
				sessions = append(sessions, row.TimetableSession)
			}
		}
		if len(sessions) > 0 {
			view.Days = append(view.Days, dto.TimetableDayView{DayOfWeek: day, Sessions: sessions})
		}
	}
	return view
}
