package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, audience models.Audience) service.NotificationList
	UnreadCount(ctx context.Context) int
	Create(ctx context.Context, req service.CreateNotificationRequest) (*models.Notification, error)
	MarkAsRead(ctx context.Context, id string) (int, error)
	MarkAllAsRead(ctx context.Context) int
	Delete(ctx context.Context, id string) (int, error)
}

type unreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary Notifications for the caller
// @Description Notifications whose targeting admits the caller, newest first.
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	response.OK(c, h.service.List(c.Request.Context(), currentAudience(c)))
}

// UnreadCount godoc
// @Summary Unread counter
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	response.OK(c, unreadCountResponse{UnreadCount: h.service.UnreadCount(c.Request.Context())})
}

// Create godoc
// @Summary Publish notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.CreateNotificationRequest true "Notification payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	var req service.CreateNotificationRequest
	if !bindJSON(c, &req, "invalid notification payload") {
		return
	}
	n, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, n)
}

// MarkAsRead godoc
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	unread, err := h.service.MarkAsRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, unreadCountResponse{UnreadCount: unread})
}

// MarkAllAsRead godoc
// @Summary Mark every notification read
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	response.OK(c, unreadCountResponse{UnreadCount: h.service.MarkAllAsRead(c.Request.Context())})
}

// Delete godoc
// @Summary Delete notification
// @Tags Notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	unread, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, unreadCountResponse{UnreadCount: unread})
}
