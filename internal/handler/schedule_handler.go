package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type scheduleService interface {
	WeekFor(ctx context.Context, userID string, audience models.Audience, req service.WeekRequest) (*models.WeekSchedule, error)
	Parity(date time.Time) models.WeekInfo
	List(ctx context.Context, filter models.SessionFilter) ([]models.ScheduleSession, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ScheduleSession, error)
	Create(ctx context.Context, req service.CreateSessionRequest) (*models.ScheduleSession, error)
	Update(ctx context.Context, id string, req service.UpdateSessionRequest) (*models.ScheduleSession, error)
	Move(ctx context.Context, id string, req service.MoveSessionRequest) (*models.ScheduleSession, error)
	Delete(ctx context.Context, id string) error
}

// ScheduleHandler serves weekly timetables and session management.
type ScheduleHandler struct {
	service scheduleService
	loc     *time.Location
}

// NewScheduleHandler constructs the handler. Dates in queries are read in loc.
func NewScheduleHandler(svc scheduleService, loc *time.Location) *ScheduleHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleHandler{service: svc, loc: loc}
}

// Week godoc
// @Summary Weekly timetable
// @Description Sessions of one group meeting in the week containing date. Missing
// @Description parameters fall back to the saved selection, then the caller's group.
// @Tags Schedule
// @Produce json
// @Param date query string false "Any day of the week (YYYY-MM-DD)"
// @Param faculty query string false "Faculty code"
// @Param group query string false "Group name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/week [get]
func (h *ScheduleHandler) Week(c *gin.Context) {
	date, err := parseDate(c.Query("date"), h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.WeekRequest{Date: date, Faculty: c.Query("faculty"), Group: c.Query("group")}

	week, err := h.service.WeekFor(c.Request.Context(), currentUserID(c), currentAudience(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, week)
}

// Parity godoc
// @Summary Week parity
// @Tags Schedule
// @Produce json
// @Param date query string false "Any day of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/parity [get]
func (h *ScheduleHandler) Parity(c *gin.Context) {
	date, err := parseDate(c.Query("date"), h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, h.service.Parity(date))
}

// List godoc
// @Summary List sessions
// @Tags Schedule
// @Produce json
// @Param faculty query string false "Faculty code"
// @Param group query string false "Group name"
// @Param teacher query string false "Teacher name"
// @Param day_of_week query int false "0 (Monday) to 5 (Saturday)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule/sessions [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	day, err := optionalIntQuery(c, "day_of_week")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := optionalIntQuery(c, "page")
	if err != nil {
		response.Error(c, err)
		return
	}
	size, err := optionalIntQuery(c, "page_size")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.SessionFilter{
		Faculty:   strings.TrimSpace(c.Query("faculty")),
		Group:     strings.TrimSpace(c.Query("group")),
		Teacher:   strings.TrimSpace(c.Query("teacher")),
		DayOfWeek: day,
	}
	if page != nil {
		filter.Page = *page
	}
	if size != nil {
		filter.PageSize = *size
	}

	items, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get session
// @Tags Schedule
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/sessions/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Create godoc
// @Summary Create session
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/sessions [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update session
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.UpdateSessionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/sessions/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateSessionRequest
	if !bindJSON(c, &req, "invalid session payload") {
		return
	}
	session, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Move godoc
// @Summary Move session
// @Description Change only the day and time slot of a session.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.MoveSessionRequest true "New day and time"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/sessions/{id}/move [patch]
func (h *ScheduleHandler) Move(c *gin.Context) {
	var req service.MoveSessionRequest
	if !bindJSON(c, &req, "invalid move payload") {
		return
	}
	session, err := h.service.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session)
}

// Delete godoc
// @Summary Delete session
// @Tags Schedule
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /schedule/sessions/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
