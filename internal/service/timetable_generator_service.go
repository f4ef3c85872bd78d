package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/campus-ops/timetable-api/internal/dto"
	"github.com/campus-ops/timetable-api/internal/models"
	appErrors "github.com/campus-ops/timetable-api/pkg/errors"
)

type workHoursReader interface {
	FindByDepartment(ctx context.Context, departmentID string) (*models.WorkHoursConfig, error)
}

type courseCatalogReader interface {
	ListByBatch(ctx context.Context, departmentID, batchID, semesterID string) ([]models.Course, error)
}

type sectionRoomReader interface {
	ListBySection(ctx context.Context, departmentID, batchID, section string) ([]models.SectionRoom, error)
}

type instructorResolver interface {
	ActiveByCourses(ctx context.Context, courseIDs []string) (map[string]string, error)
}

type timetableStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, t *models.Timetable) error
	DemotePublished(ctx context.Context, exec sqlx.ExtContext, departmentID, batchID, semesterID, section string) error
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	ListByTuple(ctx context.Context, departmentID, batchID, semesterID, section string) ([]models.Timetable, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.TimetableStatus) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type sessionStore interface {
	InsertDay(ctx context.Context, exec sqlx.ExtContext, day *models.TimetableDay) error
	InsertSession(ctx context.Context, exec sqlx.ExtContext, session *models.TimetableSession) error
	DeleteByTimetable(ctx context.Context, exec sqlx.ExtContext, timetableID string) error
	ListByTimetable(ctx context.Context, timetableID string) ([]models.SessionRow, error)
	PublishedOccupancy(ctx context.Context, exec sqlx.ExtContext, roomIDs, instructorIDs []string) ([]models.PublishedSession, error)
	ListPublishedAt(ctx context.Context, exec sqlx.ExtContext, roomID, dayOfWeek, startTime string) ([]models.PublishedSession, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationObserver interface {
	ObserveGenerationRun(placed, conflicts int)
}

// GeneratorConfig tunes the scheduling engine.
type GeneratorConfig struct {
	Break                  models.BreakWindow
	InstructorDailyCeiling int
}

// TimetableGeneratorService decomposes course requirements into sessions and
// assigns each to a non-conflicting (day, slot, room, instructor) tuple using
// greedy first-fit. Conflict-report contents are part of the contract; there
// is no backtracking.
type TimetableGeneratorService struct {
	workHours   workHoursReader
	courses     courseCatalogReader
	rooms       sectionRoomReader
	instructors instructorResolver
	timetables  timetableStore
	sessions    sessionStore
	tx          txProvider
	cache       cacheInvalidator
	metrics     generationObserver
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         GeneratorConfig
}

// NewTimetableGeneratorService wires scheduler dependencies.
func NewTimetableGeneratorService(
	workHours workHoursReader,
	courses courseCatalogReader,
	rooms sectionRoomReader,
	instructors instructorResolver,
	timetables timetableStore,
	sessions sessionStore,
	tx txProvider,
	cache cacheInvalidator,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg GeneratorConfig,
) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.InstructorDailyCeiling <= 0 {
		cfg.InstructorDailyCeiling = 6
	}
	return &TimetableGeneratorService{
		workHours:   workHours,
		courses:     courses,
		rooms:       rooms,
		instructors: instructors,
		timetables:  timetables,
		sessions:    sessions,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
	}
}

// Generate builds and publishes a timetable for the cohort tuple. The whole
// run executes in one transaction: the previous published timetable for the
// tuple is demoted first, sessions are inserted as they are placed, and any
// fatal error rolls everything back. Unplaceable sessions are reported, not
// fatal: the timetable commits with whatever was placed.
func (s *TimetableGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable generation payload")
	}

	cfg, err := s.workHours.FindByDepartment(ctx, req.DepartmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "working hours not configured for department")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
	}
	if err := cfg.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "invalid working hours configuration")
	}

	courses, err := s.courses.ListByBatch(ctx, req.DepartmentID, req.BatchID, req.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no courses defined for this department, batch and semester")
	}

	rooms, err := s.rooms.ListBySection(ctx, req.DepartmentID, req.BatchID, req.Section)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section rooms")
	}

	courseIDs := make([]string, 0, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
	}
	instructors, err := s.instructors.ActiveByCourses(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor assignments")
	}

	slots, err := buildSlotCandidates(*cfg, s.cfg.Break)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPreconditionFailed.Code, appErrors.ErrPreconditionFailed.Status, "failed to derive slot candidates")
	}
	requests := buildSessionRequests(courses, *cfg)
	if len(requests) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "courses carry no weekly hour requirements")
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

	if err = s.timetables.DemotePublished(ctx, tx, req.DepartmentID, req.BatchID, req.SemesterID, req.Section); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to demote previous timetable")
		return nil, err
	}

	record := &models.Timetable{
		DepartmentID: req.DepartmentID,
		BatchID:      req.BatchID,
		SemesterID:   req.SemesterID,
		Section:      req.Section,
		Status:       models.TimetableStatusPublished,
	}
	if err = s.timetables.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
		return nil, err
	}

	roomIDs := make([]string, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.RoomID)
	}
	instructorIDs := make([]string, 0, len(instructors))
	for _, id := range instructors {
		instructorIDs = append(instructorIDs, id)
	}
	occupancy, err := s.sessions.PublishedOccupancy(ctx, tx, roomIDs, instructorIDs)
	if err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published occupancy")
		return nil, err
	}

	state := newRunState(occupancy)
	dayIDs := make(map[string]string, len(models.Weekdays))
	conflicts := make([]dto.ConflictEntry, 0)
	placed := 0

	for _, request := range requests {
		instructorID, ok := instructors[request.CourseID]
		if !ok {
			err = appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("no instructor assigned to course %s", request.CourseID))
			return nil, err
		}

		candidateRooms := roomsOfType(rooms, models.RoomTypeFor(request.Type))
		candidateSlots := slots.byType(request.Type)

		committed := false
	placement:
		for _, day := range models.Weekdays {
			if state.courseUsed(day, request.CourseID) {
				continue
			}
			for _, slot := range candidateSlots {
				for _, room := range candidateRooms {
					if state.instructorDayLoad(instructorID, day) >= s.cfg.InstructorDailyCeiling {
						continue
					}
					if state.publishedInstructorBusy(instructorID, day, slot) {
						continue
					}
					if state.roomTaken(room.RoomID, day, slot.Start) || state.instructorTaken(instructorID, day, slot.Start) {
						continue
					}

					dayID, found := dayIDs[day]
					if !found {
						dayRecord := &models.TimetableDay{TimetableID: record.ID, DayOfWeek: day}
						if err = s.sessions.InsertDay(ctx, tx, dayRecord); err != nil {
							err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable day")
							return nil, err
						}
						dayID = dayRecord.ID
						dayIDs[day] = dayID
					}

					session := &models.TimetableSession{
						TimetableDayID: dayID,
						CourseID:       request.CourseID,
						RoomID:         room.RoomID,
						InstructorID:   instructorID,
						StartTime:      slot.Start.String(),
						EndTime:        slot.End.String(),
						SessionType:    request.Type,
					}
					if err = s.sessions.InsertSession(ctx, tx, session); err != nil {
						err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session assignment")
						return nil, err
					}

					state.place(room.RoomID, instructorID, request.CourseID, day, slot)
					placed++
					committed = true
					break placement
				}
			}
		}

		if !committed {
			conflicts = append(conflicts, dto.ConflictEntry{
				CourseID:    request.CourseID,
				SessionType: request.Type,
				Reason:      "no available day, slot and room combination",
			})
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
	if s.metrics != nil {
		s.metrics.ObserveGenerationRun(placed, len(conflicts))
	}

	s.logger.Info("timetable generated",
		zap.String("timetable_id", record.ID),
		zap.Int("sessions_placed", placed),
		zap.Int("conflicts", len(conflicts)),
	)

	return &dto.GenerateTimetableResponse{
		Success:       len(conflicts) == 0,
		TimetableID:   record.ID,
		TotalSessions: placed,
		Conflicts:     conflicts,
	}, nil
}

func roomsOfType(rooms []models.SectionRoom, roomType models.RoomType) []models.SectionRoom {
	var result []models.SectionRoom
	for _, room := range rooms {
		if room.RoomType == roomType {
			result = append(result, room)
		}
	}
	return result
}

// --- Run-scoped scheduling state ---

// runState tracks both the published occupancy loaded at run start and the
// assignments made earlier in the same run. Local collisions key on
// (day, start); global instructor collisions key on the exact interval.
type runState struct {
	roomBusy            map[string]struct{}
	instructorBusy      map[string]struct{}
	publishedInstructor map[string]struct{}
	instructorDayCount  map[string]int
	courseDays          map[string]struct{}
}

func newRunState(published []models.PublishedSession) *runState {
	state := &runState{
		roomBusy:            make(map[string]struct{}),
		instructorBusy:      make(map[string]struct{}),
		publishedInstructor: make(map[string]struct{}),
		instructorDayCount:  make(map[string]int),
		courseDays:          make(map[string]struct{}),
	}
	for _, session := range published {
		start, err := models.ParseClock(session.StartTime)
		if err != nil {
			continue
		}
		end, err := models.ParseClock(session.EndTime)
		if err != nil {
			continue
		}
		state.roomBusy[occupancyKey(session.RoomID, session.DayOfWeek, start)] = struct{}{}
		state.instructorBusy[occupancyKey(session.InstructorID, session.DayOfWeek, start)] = struct{}{}
		state.publishedInstructor[intervalKey(session.InstructorID, session.DayOfWeek, start, end)] = struct{}{}
		state.instructorDayCount[dayKey(session.InstructorID, session.DayOfWeek)]++
	}
	return state
}

func (s *runState) courseUsed(day, courseID string) bool {
	_, ok := s.courseDays[dayKey(courseID, day)]
	return ok
}

func (s *runState) instructorDayLoad(instructorID, day string) int {
	return s.instructorDayCount[dayKey(instructorID, day)]
}

func (s *runState) publishedInstructorBusy(instructorID, day string, slot models.SlotCandidate) bool {
	_, ok := s.publishedInstructor[intervalKey(instructorID, day, slot.Start, slot.End)]
	return ok
}

func (s *runState) roomTaken(roomID, day string, start models.ClockMinutes) bool {
	_, ok := s.roomBusy[occupancyKey(roomID, day, start)]
	return ok
}

func (s *runState) instructorTaken(instructorID, day string, start models.ClockMinutes) bool {
	_, ok := s.instructorBusy[occupancyKey(instructorID, day, start)]
	return ok
}

func (s *runState) place(roomID, instructorID, courseID, day string, slot models.SlotCandidate) {
	s.roomBusy[occupancyKey(roomID, day, slot.Start)] = struct{}{}
	s.instructorBusy[occupancyKey(instructorID, day, slot.Start)] = struct{}{}
	s.instructorDayCount[dayKey(instructorID, day)]++
	s.courseDays[dayKey(courseID, day)] = struct{}{}
}

func occupancyKey(id, day string, start models.ClockMinutes) string {
	return fmt.Sprintf("%s|%s|%d", id, day, int(start))
}

func intervalKey(id, day string, start, end models.ClockMinutes) string {
	return fmt.Sprintf("%s|%s|%d|%d", id, day, int(start), int(end))
}

func dayKey(id, day string) string {
	return fmt.Sprintf("%s|%s", id, day)
}
