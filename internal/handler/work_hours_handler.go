package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-ops/timetable-api/internal/repository"
	appErrors "github.com/campus-ops/timetable-api/pkg/errors"
	"github.com/campus-ops/timetable-api/pkg/response"
)

// WorkHoursHandler exposes department working-hours configuration.
type WorkHoursHandler struct {
	repo *repository.WorkHoursRepository
}

// NewWorkHoursHandler constructs handler.
func NewWorkHoursHandler(repo *repository.WorkHoursRepository) *WorkHoursHandler {
	return &WorkHoursHandler{repo: repo}
}

// Get godoc
// @Summary Get a department's working-hours configuration
// @Tags Departments
// @Produce json
// @Param id path string true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id}/work-hours [get]
func (h *WorkHoursHandler) Get(c *gin.Context) {
	cfg, err := h.repo.FindByDepartment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "working hours not configured for department"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours"))
		return
	}
	response.JSON(c, http.StatusOK, cfg)
}
