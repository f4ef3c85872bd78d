package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/timetable-api/internal/dto"
	"github.com/campus-ops/timetable-api/internal/service"
	appErrors "github.com/campus-ops/timetable-api/pkg/errors"
	"github.com/campus-ops/timetable-api/pkg/response"
)

// InstructorAssignmentHandler manages admission-controlled assignments.
type InstructorAssignmentHandler struct {
	service *service.InstructorLoadService
}

// NewInstructorAssignmentHandler constructs handler.
func NewInstructorAssignmentHandler(svc *service.InstructorLoadService) *InstructorAssignmentHandler {
	return &InstructorAssignmentHandler{service: svc}
}

// Create godoc
// @Summary Assign an instructor to a course section
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body dto.AssignInstructorRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /instructor-assignments [post]
func (h *InstructorAssignmentHandler) Create(c *gin.Context) {
	var req dto.AssignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}
