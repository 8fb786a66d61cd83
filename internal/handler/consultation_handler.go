package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type consultationService interface {
	List(ctx context.Context, filter models.ConsultationFilter, studentID string) []models.ConsultationView
	Get(ctx context.Context, id, studentID string) (*models.ConsultationView, error)
	Create(ctx context.Context, req service.CreateConsultationRequest) (*models.Consultation, error)
	Update(ctx context.Context, id string, req service.UpdateConsultationRequest) (*models.Consultation, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, id, studentID string) (*models.ConsultationView, error)
	Unregister(ctx context.Context, id, studentID string) (*models.ConsultationView, error)
}

// ConsultationHandler serves consultations and seat registration.
type ConsultationHandler struct {
	service consultationService
}

// NewConsultationHandler constructs the handler.
func NewConsultationHandler(svc consultationService) *ConsultationHandler {
	return &ConsultationHandler{service: svc}
}

// List godoc
// @Summary List consultations
// @Tags Consultations
// @Produce json
// @Param faculty query string false "Faculty code"
// @Param group query string false "Group name"
// @Success 200 {object} response.Envelope
// @Router /consultations [get]
func (h *ConsultationHandler) List(c *gin.Context) {
	filter := models.ConsultationFilter{
		Faculty: strings.TrimSpace(c.Query("faculty")),
		Group:   strings.TrimSpace(c.Query("group")),
	}
	response.OK(c, h.service.List(c.Request.Context(), filter, currentUserID(c)))
}

// Get godoc
// @Summary Get consultation
// @Tags Consultations
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /consultations/{id} [get]
func (h *ConsultationHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Create godoc
// @Summary Create consultation
// @Tags Consultations
// @Accept json
// @Produce json
// @Param payload body service.CreateConsultationRequest true "Consultation payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /consultations [post]
func (h *ConsultationHandler) Create(c *gin.Context) {
	var req service.CreateConsultationRequest
	if !bindJSON(c, &req, "invalid consultation payload") {
		return
	}
	consultation, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, consultation)
}

// Update godoc
// @Summary Update consultation
// @Tags Consultations
// @Accept json
// @Produce json
// @Param id path string true "Consultation ID"
// @Param payload body service.UpdateConsultationRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /consultations/{id} [put]
func (h *ConsultationHandler) Update(c *gin.Context) {
	var req service.UpdateConsultationRequest
	if !bindJSON(c, &req, "invalid consultation payload") {
		return
	}
	consultation, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, consultation)
}

// Delete godoc
// @Summary Delete consultation
// @Tags Consultations
// @Param id path string true "Consultation ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /consultations/{id} [delete]
func (h *ConsultationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Register godoc
// @Summary Take a seat
// @Description Register the calling student for a consultation.
// @Tags Consultations
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /consultations/{id}/registration [post]
func (h *ConsultationHandler) Register(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	view, err := h.service.Register(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// Unregister godoc
// @Summary Give up a seat
// @Tags Consultations
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /consultations/{id}/registration [delete]
func (h *ConsultationHandler) Unregister(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	view, err := h.service.Unregister(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}
