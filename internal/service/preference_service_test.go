package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

func newTestPreferenceService() (*PreferenceService, *recordingObserver) {
	obs := &recordingObserver{}
	svc := NewPreferenceService(repository.NewPreferenceStore(), NewFacultyService(nil), utcCalendar(), obs, zap.NewNop())
	svc.WithClock(func() time.Time { return time.Date(2024, time.September, 12, 15, 0, 0, 0, time.UTC) })
	return svc, obs
}

func TestPreferenceServiceTheme(t *testing.T) {
	svc, obs := newTestPreferenceService()
	ctx := context.Background()

	view := svc.Theme(ctx, "u1")
	assert.False(t, view.Dark)
	assert.Equal(t, "#f8fafc", view.Palette.Background)

	view = svc.ToggleTheme(ctx, "u1")
	assert.True(t, view.Dark)
	assert.Equal(t, "#0f172a", view.Palette.Background)
	assert.True(t, svc.Theme(ctx, "u1").Dark)
	assert.False(t, svc.Theme(ctx, "u2").Dark)

	view = svc.SetTheme(ctx, "u1", false)
	assert.False(t, view.Dark)
	assert.Equal(t, []models.StoreName{models.StorePreferences, models.StorePreferences}, obs.stores())
}

func TestPreferenceServiceSelectionDefaults(t *testing.T) {
	svc, _ := newTestPreferenceService()
	ctx := context.Background()
	monday := time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)

	sel := svc.Selection(ctx, "teacher", models.Audience{Role: models.RoleTeacher})
	assert.Equal(t, DefaultFaculty, sel.Faculty)
	assert.Equal(t, DefaultGroup, sel.Group)
	assert.Equal(t, monday, sel.WeekStart)

	sel = svc.Selection(ctx, "student", models.Audience{Role: models.RoleStudent, Faculty: "fem", Group: "ВВ-102"})
	assert.Equal(t, "fem", sel.Faculty)
	assert.Equal(t, "ВВ-102", sel.Group)
}

func TestPreferenceServiceSetSelection(t *testing.T) {
	svc, obs := newTestPreferenceService()
	ctx := context.Background()
	audience := models.Audience{Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101"}

	sel, err := svc.SetSelection(ctx, "u1", audience, SelectionRequest{WeekStart: time.Date(2024, time.October, 2, 18, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC), sel.WeekStart)
	assert.Equal(t, "ПГС-101", sel.Group)

	sel, err = svc.SetSelection(ctx, "u1", audience, SelectionRequest{Faculty: "fad", Group: "ДИЗ-102"})
	require.NoError(t, err)
	assert.Equal(t, "fad", sel.Faculty)
	assert.Equal(t, time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC), sel.WeekStart)

	stored := svc.Selection(ctx, "u1", audience)
	assert.Equal(t, sel, stored)

	_, err = svc.SetSelection(ctx, "u1", audience, SelectionRequest{Faculty: "fem"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.SetSelection(ctx, "u1", audience, SelectionRequest{Faculty: "fem", Group: "ПГС-101"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Len(t, obs.stores(), 2)
}
