package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type facultyDirectory interface {
	List() []models.Faculty
	Get(code string) (models.Faculty, bool)
}

// FacultyHandler lists faculties and their groups.
type FacultyHandler struct {
	faculties facultyDirectory
}

// NewFacultyHandler constructs the handler.
func NewFacultyHandler(faculties facultyDirectory) *FacultyHandler {
	return &FacultyHandler{faculties: faculties}
}

// List godoc
// @Summary List faculties
// @Tags Faculties
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculties [get]
func (h *FacultyHandler) List(c *gin.Context) {
	response.OK(c, h.faculties.List())
}

// Get godoc
// @Summary Get faculty
// @Tags Faculties
// @Produce json
// @Param code path string true "Faculty code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculties/{code} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	faculty, ok := h.faculties.Get(c.Param("code"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "faculty not found"))
		return
	}
	response.OK(c, faculty)
}
