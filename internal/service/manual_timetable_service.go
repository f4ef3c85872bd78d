package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-ops/timetable-api/internal/dto"
	"github.com/campus-ops/timetable-api/internal/models"
	appErrors "github.com/campus-ops/timetable-api/pkg/errors"
)

// ManualTimetableService validates and persists hand-authored day/session
// trees. Submissions are all-or-nothing: a single invalid session rejects the
// whole payload and nothing is written.
type ManualTimetableService struct {
	timetables timetableStore
	sessions   sessionStore
	tx         txProvider
	cache      cacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
	brk        models.BreakWindow
}

// NewManualTimetableService wires dependencies.
func NewManualTimetableService(
	timetables timetableStore,
	sessions sessionStore,
	tx txProvider,
	cache cacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
	brk models.BreakWindow,
) *ManualTimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManualTimetableService{
		timetables: timetables,
		sessions:   sessions,
		tx:         tx,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		brk:        brk,
	}
}

// Submit validates the tree and persists it in one transaction. With a
// timetableId the submission replaces that timetable's sessions; without one
// a new version is created for the tuple. Publishing demotes any sibling
// published timetable for the same tuple.
func (s *ManualTimetableService) Submit(ctx context.Context, req dto.SubmitManualTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual timetable payload")
	}

	normalized, issues, err := s.normalize(req.Days)
	if err != nil {
		return nil, err
	}

	var record *models.Timetable
	if req.TimetableID != "" {
		record, err = s.timetables.FindByID(ctx, req.TimetableID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
		}
	}

	exempt, err := s.exemptTimetables(ctx, req, record)
	if err != nil {
		return nil, err
	}

	moreIssues, err := s.checkPublishedClashes(ctx, normalized, exempt)
	if err != nil {
		return nil, err
	}
	issues = append(issues, moreIssues...)

	if len(issues) > 0 {
		valErr := &models.TimetableValidationError{
			Message: "manual timetable rejected",
			Issues:  issues,
		}
		return nil, appErrors.Wrap(valErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, valErr.Message)
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

	if record != nil {
		if err = s.sessions.DeleteByTimetable(ctx, tx, record.ID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetable sessions")
			return nil, err
		}
		if req.Status == models.TimetableStatusPublished && record.Status != models.TimetableStatusPublished {
			if err = s.timetables.DemotePublished(ctx, tx, record.DepartmentID, record.BatchID, record.SemesterID, record.Section); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to demote previous timetable")
				return nil, err
			}
		}
		if record.Status != req.Status {
			if err = s.timetables.UpdateStatus(ctx, tx, record.ID, req.Status); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable status")
				return nil, err
			}
			record.Status = req.Status
		}
	} else {
		if req.Status == models.TimetableStatusPublished {
			if err = s.timetables.DemotePublished(ctx, tx, req.DepartmentID, req.BatchID, req.SemesterID, req.Section); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to demote previous timetable")
				return nil, err
			}
		}
		record = &models.Timetable{
			DepartmentID: req.DepartmentID,
			BatchID:      req.BatchID,
			SemesterID:   req.SemesterID,
			Section:      req.Section,
			Status:       req.Status,
		}
		if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
			return nil, err
		}
	}

	for _, day := range normalized {
		dayRecord := &models.TimetableDay{TimetableID: record.ID, DayOfWeek: day.name}
		if err = s.sessions.InsertDay(ctx, tx, dayRecord); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable day")
			return nil, err
		}
		for _, session := range day.sessions {
			row := &models.TimetableSession{
				TimetableDayID: dayRecord.ID,
				CourseID:       session.courseID,
				RoomID:         session.roomID,
				InstructorID:   session.instructorID,
				StartTime:      session.start.String(),
				EndTime:        session.end.String(),
				SessionType:    session.sessionType,
			}
			if err = s.sessions.InsertSession(ctx, tx, row); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session assignment")
				return nil, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit timetable transaction")
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.DeleteByPattern(ctx, "timetable:*"); cacheErr != nil {
			s.logger.Warn("timetable cache invalidation failed", zap.Error(cacheErr))
		}
	}

	s.logger.Info("manual timetable stored",
		zap.String("timetable_id", record.ID),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

type normalizedSession struct {
	courseID     string
	roomID       string
	instructorID string
	start        models.ClockMinutes
	end          models.ClockMinutes
	sessionType  models.SessionType
}

type normalizedDay struct {
	name     string
	sessions []normalizedSession
}

// normalize parses every submitted time into minute-of-day values and
// collects structural issues: unknown weekdays, inverted intervals, repeated
// same-time sessions within a day, and break-window violations.
func (s *ManualTimetableService) normalize(days []dto.ManualDayRequest) ([]normalizedDay, []string, error) {
	var issues []string
	result := make([]normalizedDay, 0, len(days))
	seenDays := make(map[string]struct{}, len(days))

	for _, day := range days {
		if !models.IsWeekday(day.DayOfWeek) {
			issues = append(issues, fmt.Sprintf("unknown weekday %q", day.DayOfWeek))
			continue
		}
		if _, dup := seenDays[day.DayOfWeek]; dup {
			issues = append(issues, fmt.Sprintf("weekday %s submitted more than once", day.DayOfWeek))
			continue
		}
		seenDays[day.DayOfWeek] = struct{}{}

		normalized := normalizedDay{name: day.DayOfWeek}
		seenTimes := make(map[string]struct{}, len(day.Sessions))
		for _, session := range day.Sessions {
			start, err := models.ParseClock(session.StartTime)
			if err != nil {
				issues = append(issues, fmt.Sprintf("invalid start time %q on %s", session.StartTime, day.DayOfWeek))
				continue
			}
			end, err := models.ParseClock(session.EndTime)
			if err != nil {
				issues = append(issues, fmt.Sprintf("invalid end time %q on %s", session.EndTime, day.DayOfWeek))
				continue
			}
			if end <= start {
				issues = append(issues, fmt.Sprintf("session on %s ends before it starts (%s-%s)", day.DayOfWeek, start, end))
				continue
			}

			timeKey := intervalKey("", day.DayOfWeek, start, end)
			if _, dup := seenTimes[timeKey]; dup {
				issues = append(issues, fmt.Sprintf("repeated session on %s between %s-%s", day.DayOfWeek, start, end))
				continue
			}
			seenTimes[timeKey] = struct{}{}

			if s.brk.Contains(start) {
				issues = append(issues, fmt.Sprintf("session on %s at %s falls inside the break window", day.DayOfWeek, start))
				continue
			}

			normalized.sessions = append(normalized.sessions, normalizedSession{
				courseID:     session.CourseID,
				roomID:       session.RoomID,
				instructorID: session.InstructorID,
				start:        start,
				end:          end,
				sessionType:  session.SessionType,
			})
		}
		result = append(result, normalized)
	}
	return result, issues, nil
}

// exemptTimetables collects timetable ids whose published sessions must not
// count as clashes: the target being replaced, since its tree is cleared
// before reinsert, and the tuple's published sibling, which publishing
// demotes to draft.
func (s *ManualTimetableService) exemptTimetables(ctx context.Context, req dto.SubmitManualTimetableRequest, record *models.Timetable) (map[string]struct{}, error) {
	exempt := make(map[string]struct{})
	if record != nil {
		exempt[record.ID] = struct{}{}
	}
	if req.Status != models.TimetableStatusPublished {
		return exempt, nil
	}
	departmentID, batchID, semesterID, section := req.DepartmentID, req.BatchID, req.SemesterID, req.Section
	if record != nil {
		departmentID, batchID, semesterID, section = record.DepartmentID, record.BatchID, record.SemesterID, record.Section
	}
	siblings, err := s.timetables.ListByTuple(ctx, departmentID, batchID, semesterID, section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sibling timetables")
	}
	for _, sibling := range siblings {
		if sibling.Status == models.TimetableStatusPublished {
			exempt[sibling.ID] = struct{}{}
		}
	}
	return exempt, nil
}

// checkPublishedClashes cross-checks every submitted session against the
// published timetable at the same room, day and start time. Sessions owned by
// an exempt timetable are skipped.
func (s *ManualTimetableService) checkPublishedClashes(ctx context.Context, days []normalizedDay, exempt map[string]struct{}) ([]string, error) {
	var issues []string
	for _, day := range days {
		for _, session := range day.sessions {
			existing, err := s.sessions.ListPublishedAt(ctx, nil, session.roomID, day.name, session.start.String())
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check published timetable")
			}
			for _, occupied := range existing {
				if _, skip := exempt[occupied.TimetableID]; skip {
					continue
				}
				if occupied.InstructorID == session.instructorID {
					issues = append(issues, fmt.Sprintf("instructor already scheduled in %s on %s between %s-%s",
						occupied.RoomID, day.name, session.start, session.end))
				} else {
					issues = append(issues, fmt.Sprintf("room already scheduled on %s between %s-%s",
						day.name, session.start, session.end))
				}
			}
		}
	}
	return issues, nil
}
