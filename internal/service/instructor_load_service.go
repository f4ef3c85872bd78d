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

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type sectionCounter interface {
	CountSectionsForCourse(ctx context.Context, courseID string) (int, error)
}

type assignmentWriter interface {
	CountActiveByInstructor(ctx context.Context, instructorID string) (int, error)
	Create(ctx context.Context, assignment *models.InstructorAssignment) error
}

// InstructorLoadService admission-controls instructor-to-section assignments
// with a weekly-capacity estimate. This is a heuristic gate, not an exact
// bin-packing proof; generation enforces the hard constraints later.
type InstructorLoadService struct {
	workHours   workHoursReader
	courses     courseReader
	sections    sectionCounter
	assignments assignmentWriter
	validator   *validator.Validate
	logger      *zap.Logger
	workingDays int
}

// NewInstructorLoadService wires dependencies.
func NewInstructorLoadService(
	workHours workHoursReader,
	courses courseReader,
	sections sectionCounter,
	assignments assignmentWriter,
	validate *validator.Validate,
	logger *zap.Logger,
	workingDays int,
) *InstructorLoadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workingDays <= 0 {
		workingDays = 5
	}
	return &InstructorLoadService{
		workHours:   workHours,
		courses:     courses,
		sections:    sections,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
		workingDays: workingDays,
	}
}

// Assign creates one more course assignment for the instructor if the
// capacity estimate allows it.
func (s *InstructorLoadService) Assign(ctx context.Context, req dto.AssignInstructorRequest) (*models.InstructorAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor assignment payload")
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

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	sections, err := s.sections.CountSectionsForCourse(ctx, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count course sections")
	}

	current, err := s.assignments.CountActiveByInstructor(ctx, req.InstructorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count instructor assignments")
	}

	maxSections := s.maxSustainableSections(*cfg, *course, sections)
	if float64(current+1) >= maxSections {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed,
			fmt.Sprintf("instructor cannot sustain another section of course %s (estimated maximum %.1f)", course.Code, maxSections))
	}

	assignment := &models.InstructorAssignment{
		CourseID:     req.CourseID,
		InstructorID: req.InstructorID,
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor assignment")
	}

	s.logger.Info("instructor assigned",
		zap.String("course_id", req.CourseID),
		zap.String("instructor_id", req.InstructorID),
	)
	return assignment, nil
}

// maxSustainableSections estimates how many sections of the course one
// instructor can carry per week: total weekly slot capacity from the slot
// geometry divided by the per-section weekly session demand.
func (s *InstructorLoadService) maxSustainableSections(cfg models.WorkHoursConfig, course models.Course, existingSections int) float64 {
	start, end := cfg.Span()
	daySpanHours := float64(end-start) / 60

	weeklyCapacity := (daySpanHours/float64(cfg.LectureDuration) + daySpanHours/float64(cfg.LabDuration)) * float64(s.workingDays)

	counts := decomposeCourse(course, cfg)
	weeklyDemand := counts.Lecture + counts.Lab
	if weeklyDemand == 0 {
		return weeklyCapacity
	}
	if existingSections < 1 {
		existingSections = 1
	}
	perSection := float64(weeklyDemand) / float64(existingSections)
	return weeklyCapacity / perSection
}
