package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

var (
	lightPalette = models.ThemePalette{
		Background:    "#f8fafc",
		Surface:       "#ffffff",
		Text:          "#1e293b",
		TextSecondary: "#64748b",
		Primary:       "#3b82f6",
		Secondary:     "#8b5cf6",
		Accent:        "#06b6d4",
		Success:       "#10b981",
		Warning:       "#f59e0b",
		Error:         "#ef4444",
		Border:        "#e2e8f0",
	}
	darkPalette = models.ThemePalette{
		Background:    "#0f172a",
		Surface:       "#1e293b",
		Text:          "#f1f5f9",
		TextSecondary: "#94a3b8",
		Primary:       "#3b82f6",
		Secondary:     "#8b5cf6",
		Accent:        "#06b6d4",
		Success:       "#10b981",
		Warning:       "#f59e0b",
		Error:         "#ef4444",
		Border:        "#334155",
	}
)

// Selection used when neither the user nor their profile picked a group.
const (
	DefaultFaculty = "fcs"
	DefaultGroup   = "ПГС-101"
)

type preferenceStore interface {
	Get(userID string) models.Preference
	Update(userID string, fn func(*models.Preference)) models.Preference
}

// SelectionRequest updates the timetable selection; empty fields keep their value.
type SelectionRequest struct {
	Faculty   string    `json:"faculty"`
	Group     string    `json:"group"`
	WeekStart time.Time `json:"week_start"`
}

// ThemeRequest sets the theme explicitly.
type ThemeRequest struct {
	Dark *bool `json:"dark" validate:"required"`
}

// PreferenceService manages per-user theme and timetable selection.
type PreferenceService struct {
	store    preferenceStore
	groups   groupDirectory
	calendar *WeekCalendar
	observer storeObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewPreferenceService constructs the service.
func NewPreferenceService(store preferenceStore, groups groupDirectory, calendar *WeekCalendar, observer storeObserver, logger *zap.Logger) *PreferenceService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{
		store:    store,
		groups:   groups,
		calendar: calendar,
		observer: observer,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (s *PreferenceService) WithClock(now func() time.Time) *PreferenceService {
	s.now = now
	return s
}

// Theme returns the user's theme and palette. Light is the default.
func (s *PreferenceService) Theme(ctx context.Context, userID string) models.ThemeView {
	return themeView(s.store.Get(userID).Dark)
}

// SetTheme stores the requested theme.
func (s *PreferenceService) SetTheme(ctx context.Context, userID string, dark bool) models.ThemeView {
	p := s.store.Update(userID, func(p *models.Preference) { p.Dark = dark })
	s.observer.Touch(models.StorePreferences)
	return themeView(p.Dark)
}

// ToggleTheme flips between light and dark.
func (s *PreferenceService) ToggleTheme(ctx context.Context, userID string) models.ThemeView {
	p := s.store.Update(userID, func(p *models.Preference) { p.Dark = !p.Dark })
	s.observer.Touch(models.StorePreferences)
	return themeView(p.Dark)
}

// Selection returns what the user is browsing, falling back to the profile's
// faculty and group, then to the default group, and to the current week.
func (s *PreferenceService) Selection(ctx context.Context, userID string, audience models.Audience) models.Selection {
	p := s.store.Get(userID)
	sel := models.Selection{WeekStart: p.CurrentWeekStart}
	sel.Faculty, sel.Group = browsingPair(p, audience)
	if sel.WeekStart.IsZero() {
		sel.WeekStart = s.calendar.WeekStart(s.now())
	}
	return sel
}

// SetSelection changes the faculty, group or week being browsed. The week start is
// normalised to its Monday and the group must belong to the faculty.
func (s *PreferenceService) SetSelection(ctx context.Context, userID string, audience models.Audience, req SelectionRequest) (models.Selection, error) {
	current := s.Selection(ctx, userID, audience)
	faculty := firstNonEmpty(req.Faculty, current.Faculty)
	group := strings.TrimSpace(req.Group)
	if group == "" && faculty == current.Faculty {
		group = current.Group
	}
	if group == "" {
		return models.Selection{}, appErrors.Clone(appErrors.ErrValidation, "group is required when changing faculty")
	}
	if s.groups != nil && !s.groups.HasGroup(faculty, group) {
		return models.Selection{}, appErrors.Clone(appErrors.ErrValidation, "unknown faculty or group")
	}
	weekStart := current.WeekStart
	if !req.WeekStart.IsZero() {
		weekStart = s.calendar.WeekStart(req.WeekStart)
	}

	s.store.Update(userID, func(p *models.Preference) {
		p.SelectedFaculty = faculty
		p.SelectedGroup = group
		p.CurrentWeekStart = weekStart
	})
	s.observer.Touch(models.StorePreferences)
	logger.WithRequest(ctx, s.logger).Debug("selection updated", zap.String("user_id", userID), zap.String("group", group), zap.Time("week_start", weekStart))
	return models.Selection{Faculty: faculty, Group: group, WeekStart: weekStart}, nil
}

func themeView(dark bool) models.ThemeView {
	if dark {
		return models.ThemeView{Dark: true, Palette: darkPalette}
	}
	return models.ThemeView{Dark: false, Palette: lightPalette}
}

// browsingPair picks the faculty and group to show. A saved selection wins only when
// both halves are set, then the profile's pair, then the default group.
func browsingPair(p models.Preference, audience models.Audience) (faculty, group string) {
	switch {
	case p.SelectedFaculty != "" && p.SelectedGroup != "":
		return p.SelectedFaculty, p.SelectedGroup
	case audience.Faculty != "" && audience.Group != "":
		return audience.Faculty, audience.Group
	}
	return DefaultFaculty, DefaultGroup
}
