package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

type notificationStore interface {
	All() []models.Notification
	UnreadCount() int
	Add(n *models.Notification)
	MarkAsRead(id string) (bool, error)
	MarkAllAsRead() int
	Delete(id string) error
}

// TargetingPolicy decides how a user without a faculty or group is matched
// against notifications restricted on that dimension.
type TargetingPolicy string

const (
	// TargetingLenient lets users lacking the attribute pass the dimension.
	TargetingLenient TargetingPolicy = "lenient"
	// TargetingStrict excludes users lacking the attribute.
	TargetingStrict TargetingPolicy = "strict"
)

// ParseTargetingPolicy falls back to lenient for unknown values.
func ParseTargetingPolicy(raw string) TargetingPolicy {
	if TargetingPolicy(strings.ToLower(strings.TrimSpace(raw))) == TargetingStrict {
		return TargetingStrict
	}
	return TargetingLenient
}

// CreateNotificationRequest describes payload for publishing a notification.
type CreateNotificationRequest struct {
	Title           string            `json:"title" validate:"required,notblank"`
	Message         string            `json:"message" validate:"required,notblank"`
	Severity        models.Severity   `json:"type" validate:"required,severity"`
	TargetRoles     []models.UserRole `json:"target_roles" validate:"omitempty,dive,role"`
	TargetFaculties []string          `json:"target_faculties" validate:"omitempty,dive,notblank"`
	TargetGroups    []string          `json:"target_groups" validate:"omitempty,dive,notblank"`
}

// NotificationList is the caller's feed plus the global unread counter.
type NotificationList struct {
	Items       []models.NotificationView `json:"items"`
	UnreadCount int                       `json:"unread_count"`
}

// NotificationService publishes notifications and filters them per audience.
type NotificationService struct {
	store     notificationStore
	policy    TargetingPolicy
	observer  storeObserver
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService constructs the service.
func NewNotificationService(store notificationStore, policy TargetingPolicy, observer storeObserver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = TargetingLenient
	}
	return &NotificationService{
		store:     store,
		policy:    policy,
		observer:  observer,
		metrics:   metrics,
		validator: withDomainValidations(validate),
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for issue dates and labels.
func (s *NotificationService) WithClock(now func() time.Time) *NotificationService {
	s.now = now
	return s
}

// List returns the notifications visible to audience, newest first, with date labels.
func (s *NotificationService) List(ctx context.Context, audience models.Audience) NotificationList {
	visible := VisibleFor(s.store.All(), audience, s.policy)
	now := s.now()
	items := make([]models.NotificationView, len(visible))
	for i, n := range visible {
		items[i] = models.NotificationView{Notification: n, DateLabel: RelativeDayLabel(n.IssuedAt, now)}
	}
	return NotificationList{Items: items, UnreadCount: s.store.UnreadCount()}
}

// UnreadCount returns the aggregate unread counter.
func (s *NotificationService) UnreadCount(ctx context.Context) int {
	return s.store.UnreadCount()
}

// Create publishes a new unread notification.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid notification payload")
	}
	n := &models.Notification{
		Title:           strings.TrimSpace(req.Title),
		Message:         strings.TrimSpace(req.Message),
		Severity:        req.Severity,
		IssuedAt:        s.now().UTC(),
		TargetRoles:     req.TargetRoles,
		TargetFaculties: req.TargetFaculties,
		TargetGroups:    req.TargetGroups,
	}
	s.store.Add(n)
	s.observer.Touch(models.StoreNotifications)
	logger.WithRequest(ctx, s.logger).Info("notification published", zap.String("id", n.ID), zap.String("type", string(n.Severity)))
	return n, nil
}

// MarkAsRead flags one notification; repeating the call changes nothing.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) (int, error) {
	changed, err := s.store.MarkAsRead(id)
	if err != nil {
		return 0, notFoundOr(err, "notification not found", "failed to mark notification")
	}
	if changed {
		s.metrics.RecordNotificationsRead(1)
		s.observer.Touch(models.StoreNotifications)
	}
	return s.store.UnreadCount(), nil
}

// MarkAllAsRead flags every notification.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) int {
	if changed := s.store.MarkAllAsRead(); changed > 0 {
		s.metrics.RecordNotificationsRead(changed)
		s.observer.Touch(models.StoreNotifications)
	}
	return s.store.UnreadCount()
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string) (int, error) {
	if err := s.store.Delete(id); err != nil {
		return 0, notFoundOr(err, "notification not found", "failed to delete notification")
	}
	s.observer.Touch(models.StoreNotifications)
	return s.store.UnreadCount(), nil
}

// VisibleFor keeps the notifications whose every target dimension admits the
// audience. An empty target list does not restrict. Under the lenient policy a
// user without a faculty (or group) passes that dimension.
func VisibleFor(all []models.Notification, audience models.Audience, policy TargetingPolicy) []models.Notification {
	out := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if len(n.TargetRoles) > 0 && !containsRole(n.TargetRoles, audience.Role) {
			continue
		}
		if !admits(n.TargetFaculties, audience.Faculty, policy) {
			continue
		}
		if !admits(n.TargetGroups, audience.Group, policy) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func admits(targets []string, value string, policy TargetingPolicy) bool {
	if len(targets) == 0 {
		return true
	}
	if value == "" {
		return policy != TargetingStrict
	}
	for _, t := range targets {
		if t == value {
			return true
		}
	}
	return false
}

func containsRole(roles []models.UserRole, role models.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RelativeDayLabel renders issued relative to now in whole calendar days of now's
// location: "today", "yesterday", "N days ago" within a week, otherwise the date.
func RelativeDayLabel(issued, now time.Time) string {
	days := civilDaysBetween(issued.In(now.Location()), now)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return issued.In(now.Location()).Format("2 January 2006")
	}
}
