package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type examService interface {
	List(ctx context.Context, filter models.ExamFilter) []models.Exam
	Get(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, req service.CreateExamRequest) (*models.Exam, error)
	Update(ctx context.Context, id string, req service.UpdateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, id string) error
}

// ExamHandler serves the exam calendar.
type ExamHandler struct {
	service examService
}

// NewExamHandler constructs the handler.
func NewExamHandler(svc examService) *ExamHandler {
	return &ExamHandler{service: svc}
}

// List godoc
// @Summary List exams
// @Description Exams sorted by date. Without filters a student sees their own group.
// @Tags Exams
// @Produce json
// @Param faculty query string false "Faculty code"
// @Param group query string false "Group name"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter := models.ExamFilter{
		Faculty: strings.TrimSpace(c.Query("faculty")),
		Group:   strings.TrimSpace(c.Query("group")),
	}
	if filter.Faculty == "" && filter.Group == "" {
		if audience := currentAudience(c); audience.Role == models.RoleStudent {
			filter.Faculty, filter.Group = audience.Faculty, audience.Group
		}
	}
	response.OK(c, h.service.List(c.Request.Context(), filter))
}

// Get godoc
// @Summary Get exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Create godoc
// @Summary Schedule exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param payload body service.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.CreateExamRequest
	if !bindJSON(c, &req, "invalid exam payload") {
		return
	}
	exam, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update exam
// @Tags Exams
// @Accept json
// @Produce json
// @Param id path string true "Exam ID"
// @Param payload body service.UpdateExamRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req service.UpdateExamRequest
	if !bindJSON(c, &req, "invalid exam payload") {
		return
	}
	exam, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, exam)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Param id path string true "Exam ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
