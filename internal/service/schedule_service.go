package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

type scheduleStore interface {
	All() []models.ScheduleSession
	List(filter models.SessionFilter) ([]models.ScheduleSession, int)
	Get(id string) (*models.ScheduleSession, error)
	Create(session *models.ScheduleSession)
	Update(id string, fn func(*models.ScheduleSession) error) (*models.ScheduleSession, error)
	Delete(id string) error
}

type preferenceReader interface {
	Get(userID string) models.Preference
}

// storeObserver is told which persisted store a mutation touched.
type storeObserver interface {
	Touch(store models.StoreName)
}

type noopObserver struct{}

func (noopObserver) Touch(models.StoreName) {}

// WeekRequest selects a group timetable for the week containing Date.
type WeekRequest struct {
	Date    time.Time
	Faculty string
	Group   string
}

// CreateSessionRequest describes payload for creating a class session.
type CreateSessionRequest struct {
	Subject    string             `json:"subject" validate:"required,notblank"`
	Teacher    string             `json:"teacher" validate:"required,notblank"`
	Room       string             `json:"room" validate:"required,notblank"`
	Building   string             `json:"building" validate:"required,notblank"`
	TimeSlot   string             `json:"time" validate:"required,timeslot"`
	Kind       models.SessionKind `json:"type" validate:"required,sessionkind"`
	Faculty    string             `json:"faculty" validate:"required,notblank"`
	Group      string             `json:"group" validate:"required,notblank"`
	DayOfWeek  *int               `json:"day_of_week" validate:"required,min=0,max=5"`
	WeekParity models.WeekParity  `json:"week_type" validate:"required,weekparity"`
}

// UpdateSessionRequest patches a session; nil fields are left untouched.
type UpdateSessionRequest struct {
	Subject    *string             `json:"subject" validate:"omitempty,notblank"`
	Teacher    *string             `json:"teacher" validate:"omitempty,notblank"`
	Room       *string             `json:"room" validate:"omitempty,notblank"`
	Building   *string             `json:"building" validate:"omitempty,notblank"`
	TimeSlot   *string             `json:"time" validate:"omitempty,timeslot"`
	Kind       *models.SessionKind `json:"type" validate:"omitempty,sessionkind"`
	Faculty    *string             `json:"faculty" validate:"omitempty,notblank"`
	Group      *string             `json:"group" validate:"omitempty,notblank"`
	DayOfWeek  *int                `json:"day_of_week" validate:"omitempty,min=0,max=5"`
	WeekParity *models.WeekParity  `json:"week_type" validate:"omitempty,weekparity"`
}

// MoveSessionRequest changes only the day and time slot of a session.
type MoveSessionRequest struct {
	DayOfWeek *int   `json:"day_of_week" validate:"required,min=0,max=5"`
	TimeSlot  string `json:"time" validate:"required,timeslot"`
}

// ScheduleService resolves weekly timetables and manages class sessions.
type ScheduleService struct {
	store     scheduleStore
	prefs     preferenceReader
	calendar  *WeekCalendar
	observer  storeObserver
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService constructs the service.
func NewScheduleService(store scheduleStore, prefs preferenceReader, calendar *WeekCalendar, observer storeObserver, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		store:     store,
		prefs:     prefs,
		calendar:  calendar,
		observer:  observer,
		validator: withDomainValidations(validate),
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *ScheduleService) WithClock(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// Week returns the sessions of one group meeting in the week containing req.Date,
// sorted by day and time.
func (s *ScheduleService) Week(ctx context.Context, req WeekRequest) (*models.WeekSchedule, error) {
	req.Faculty = strings.TrimSpace(req.Faculty)
	req.Group = strings.TrimSpace(req.Group)
	if req.Faculty == "" || req.Group == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty and group are required")
	}
	if req.Date.IsZero() {
		req.Date = s.now()
	}

	sessions := s.calendar.ResolveWeek(s.store.All(), req.Date, req.Faculty, req.Group)
	SortByDayAndTime(sessions)
	return &models.WeekSchedule{
		WeekInfo: s.calendar.Info(req.Date),
		Faculty:  req.Faculty,
		Group:    req.Group,
		Sessions: sessions,
	}, nil
}

// WeekFor fills missing query fields from the pair the user is browsing: the saved
// selection, then the user's own faculty and group. A query naming only one half
// is completed only when that half matches the pair.
func (s *ScheduleService) WeekFor(ctx context.Context, userID string, audience models.Audience, req WeekRequest) (*models.WeekSchedule, error) {
	var pref models.Preference
	if s.prefs != nil && userID != "" {
		pref = s.prefs.Get(userID)
	}
	faculty, group := browsingPair(pref, audience)
	req.Faculty = strings.TrimSpace(req.Faculty)
	req.Group = strings.TrimSpace(req.Group)
	switch {
	case req.Faculty == "" && req.Group == "":
		req.Faculty, req.Group = faculty, group
	case req.Group == "" && req.Faculty == faculty:
		req.Group = group
	case req.Faculty == "" && req.Group == group:
		req.Faculty = faculty
	}
	if req.Date.IsZero() && !pref.CurrentWeekStart.IsZero() {
		req.Date = pref.CurrentWeekStart
	}
	return s.Week(ctx, req)
}

// Parity describes the week containing date (today when zero).
func (s *ScheduleService) Parity(date time.Time) models.WeekInfo {
	if date.IsZero() {
		date = s.now()
	}
	return s.calendar.Info(date)
}

// List returns raw sessions with pagination.
func (s *ScheduleService) List(ctx context.Context, filter models.SessionFilter) ([]models.ScheduleSession, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	if filter.DayOfWeek != nil && (*filter.DayOfWeek < models.FirstStudyDay || *filter.DayOfWeek > models.LastStudyDay) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "day_of_week must be between 0 and 5")
	}
	items, total := s.store.List(filter)
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a session by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.ScheduleSession, error) {
	session, err := s.store.Get(id)
	if err != nil {
		return nil, notFoundOr(err, "session not found", "failed to load session")
	}
	return session, nil
}

// Create validates and stores a new session.
func (s *ScheduleService) Create(ctx context.Context, req CreateSessionRequest) (*models.ScheduleSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid session payload")
	}
	session := &models.ScheduleSession{
		Subject:    strings.TrimSpace(req.Subject),
		Teacher:    strings.TrimSpace(req.Teacher),
		Room:       strings.TrimSpace(req.Room),
		Building:   strings.TrimSpace(req.Building),
		TimeSlot:   req.TimeSlot,
		Kind:       req.Kind,
		Faculty:    req.Faculty,
		Group:      req.Group,
		DayOfWeek:  *req.DayOfWeek,
		WeekParity: req.WeekParity,
	}
	s.store.Create(session)
	s.observer.Touch(models.StoreSchedule)
	logger.WithRequest(ctx, s.logger).Info("session created", zap.String("id", session.ID), zap.String("group", session.Group))
	return session, nil
}

// Update applies a partial update to a session.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateSessionRequest) (*models.ScheduleSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid session payload")
	}
	updated, err := s.store.Update(id, func(session *models.ScheduleSession) error {
		applyString(&session.Subject, req.Subject)
		applyString(&session.Teacher, req.Teacher)
		applyString(&session.Room, req.Room)
		applyString(&session.Building, req.Building)
		applyString(&session.TimeSlot, req.TimeSlot)
		applyString(&session.Faculty, req.Faculty)
		applyString(&session.Group, req.Group)
		if req.Kind != nil {
			session.Kind = *req.Kind
		}
		if req.DayOfWeek != nil {
			session.DayOfWeek = *req.DayOfWeek
		}
		if req.WeekParity != nil {
			session.WeekParity = *req.WeekParity
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "session not found", "failed to update session")
	}
	s.observer.Touch(models.StoreSchedule)
	return updated, nil
}

// Move changes the day and time slot of a session, leaving every other field untouched.
func (s *ScheduleService) Move(ctx context.Context, id string, req MoveSessionRequest) (*models.ScheduleSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid move payload")
	}
	moved, err := s.store.Update(id, func(session *models.ScheduleSession) error {
		session.DayOfWeek = *req.DayOfWeek
		session.TimeSlot = req.TimeSlot
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "session not found", "failed to move session")
	}
	s.observer.Touch(models.StoreSchedule)
	return moved, nil
}

// Delete removes a session.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return notFoundOr(err, "session not found", "failed to delete session")
	}
	s.observer.Touch(models.StoreSchedule)
	return nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
