package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type preferenceService interface {
	Theme(ctx context.Context, userID string) models.ThemeView
	SetTheme(ctx context.Context, userID string, dark bool) models.ThemeView
	ToggleTheme(ctx context.Context, userID string) models.ThemeView
	Selection(ctx context.Context, userID string, audience models.Audience) models.Selection
	SetSelection(ctx context.Context, userID string, audience models.Audience, req service.SelectionRequest) (models.Selection, error)
}

// selectionPayload is the request body of PUT /schedule/selection.
type selectionPayload struct {
	Faculty   string `json:"faculty"`
	Group     string `json:"group"`
	WeekStart string `json:"week_start"`
}

// PreferenceHandler serves per-user theme and timetable selection.
type PreferenceHandler struct {
	service preferenceService
	loc     *time.Location
}

// NewPreferenceHandler constructs the handler.
func NewPreferenceHandler(svc preferenceService, loc *time.Location) *PreferenceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PreferenceHandler{service: svc, loc: loc}
}

// Theme godoc
// @Summary Current theme
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /preferences/theme [get]
func (h *PreferenceHandler) Theme(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	response.OK(c, h.service.Theme(c.Request.Context(), claims.UserID))
}

// SetTheme godoc
// @Summary Set theme
// @Tags Preferences
// @Accept json
// @Produce json
// @Param payload body service.ThemeRequest true "Theme"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /preferences/theme [put]
func (h *PreferenceHandler) SetTheme(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req service.ThemeRequest
	if !bindJSON(c, &req, "invalid theme payload") {
		return
	}
	if req.Dark == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dark is required"))
		return
	}
	response.OK(c, h.service.SetTheme(c.Request.Context(), claims.UserID, *req.Dark))
}

// ToggleTheme godoc
// @Summary Toggle theme
// @Tags Preferences
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /preferences/theme/toggle [post]
func (h *PreferenceHandler) ToggleTheme(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	response.OK(c, h.service.ToggleTheme(c.Request.Context(), claims.UserID))
}

// Selection godoc
// @Summary Browsing selection
// @Description Faculty, group and week the caller is browsing.
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/selection [get]
func (h *PreferenceHandler) Selection(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	response.OK(c, h.service.Selection(c.Request.Context(), claims.UserID, claims.Targeting()))
}

// SetSelection godoc
// @Summary Change browsing selection
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body selectionPayload true "Faculty, group and week start"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/selection [put]
func (h *PreferenceHandler) SetSelection(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload selectionPayload
	if !bindJSON(c, &payload, "invalid selection payload") {
		return
	}
	weekStart, err := parseDate(payload.WeekStart, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.SelectionRequest{Faculty: payload.Faculty, Group: payload.Group, WeekStart: weekStart}

	sel, err := h.service.SetSelection(c.Request.Context(), claims.UserID, claims.Targeting(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sel)
}
