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

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func scheduleFixture() []models.ScheduleSession {
	return []models.ScheduleSession{
		{ID: "s1", Subject: "Гидравлика", TimeSlot: "11:20-12:50", Kind: models.SessionLecture, Faculty: "fcs", Group: "ПГС-101", DayOfWeek: 0, WeekParity: models.ParityBoth},
		{ID: "s2", Subject: "Геодезия", TimeSlot: "8:00-9:30", Kind: models.SessionLab, Faculty: "fcs", Group: "ПГС-101", DayOfWeek: 0, WeekParity: models.ParityOdd},
		{ID: "s3", Subject: "Механика", TimeSlot: "9:40-11:10", Kind: models.SessionPractice, Faculty: "fcs", Group: "ПГС-101", DayOfWeek: 0, WeekParity: models.ParityEven},
		{ID: "s4", Subject: "Экология", TimeSlot: "8:00-9:30", Kind: models.SessionLecture, Faculty: "fem", Group: "ТГВ-101", DayOfWeek: 1, WeekParity: models.ParityBoth},
	}
}

func newTestScheduleService(prefs preferenceReader) (*ScheduleService, *repository.ScheduleStore, *recordingObserver) {
	store := repository.NewScheduleStore(scheduleFixture())
	obs := &recordingObserver{}
	svc := NewScheduleService(store, prefs, utcCalendar(), obs, nil, zap.NewNop())
	svc.WithClock(func() time.Time { return time.Date(2024, time.September, 4, 10, 0, 0, 0, time.UTC) })
	return svc, store, obs
}

func sessionIDs(items []models.ScheduleSession) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.ID
	}
	return out
}

func TestScheduleServiceWeekResolvesParity(t *testing.T) {
	svc, _, _ := newTestScheduleService(nil)
	ctx := context.Background()

	odd, err := svc.Week(ctx, WeekRequest{Date: time.Date(2024, time.September, 4, 0, 0, 0, 0, time.UTC), Faculty: "fcs", Group: "ПГС-101"})
	require.NoError(t, err)
	assert.Equal(t, models.ParityOdd, odd.Parity)
	assert.Equal(t, time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC), odd.WeekStart)
	assert.Equal(t, []string{"s2", "s1"}, sessionIDs(odd.Sessions))

	even, err := svc.Week(ctx, WeekRequest{Date: time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC), Faculty: "fcs", Group: "ПГС-101"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s1"}, sessionIDs(even.Sessions))

	_, err = svc.Week(ctx, WeekRequest{Faculty: "fcs"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

type staticPrefs map[string]models.Preference

func (p staticPrefs) Get(userID string) models.Preference { return p[userID] }

func TestScheduleServiceWeekForDefaults(t *testing.T) {
	prefs := staticPrefs{
		"u1": {UserID: "u1", SelectedFaculty: "fem", SelectedGroup: "ТГВ-101", CurrentWeekStart: time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)},
	}
	svc, _, _ := newTestScheduleService(prefs)
	ctx := context.Background()

	week, err := svc.WeekFor(ctx, "u1", models.Audience{Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101"}, WeekRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ТГВ-101", week.Group)
	assert.Equal(t, 2, week.WeekNumber)

	week, err = svc.WeekFor(ctx, "u2", models.Audience{Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101"}, WeekRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ПГС-101", week.Group)
	assert.Equal(t, 1, week.WeekNumber)

	week, err = svc.WeekFor(ctx, "teacher", models.Audience{Role: models.RoleTeacher}, WeekRequest{})
	require.NoError(t, err)
	assert.Equal(t, DefaultGroup, week.Group)
}

func TestScheduleServiceWeekForKeepsPairsTogether(t *testing.T) {
	prefs := staticPrefs{
		"half": {UserID: "half", SelectedFaculty: "fem"},
	}
	svc, _, _ := newTestScheduleService(prefs)
	ctx := context.Background()
	student := models.Audience{Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101"}

	week, err := svc.WeekFor(ctx, "half", student, WeekRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fcs", week.Faculty)
	assert.Equal(t, "ПГС-101", week.Group)

	week, err = svc.WeekFor(ctx, "half", student, WeekRequest{Faculty: "fcs"})
	require.NoError(t, err)
	assert.Equal(t, "ПГС-101", week.Group)

	_, err = svc.WeekFor(ctx, "half", student, WeekRequest{Faculty: "fem"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	week, err = svc.WeekFor(ctx, "half", student, WeekRequest{Faculty: "fem", Group: "ТГВ-101"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s4"}, sessionIDs(week.Sessions))
}

func TestScheduleServiceMutations(t *testing.T) {
	svc, store, obs := newTestScheduleService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSessionRequest{
		Subject: "Маркетинг", Teacher: "Попов О.О.", Room: "301", Building: "корп. 2",
		TimeSlot: "13:40-15:10", Kind: models.SessionPractice, Faculty: "fep", Group: "ЭК-101",
		DayOfWeek: intPtr(5), WeekParity: models.ParityBoth,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 5, store.Len())

	moved, err := svc.Move(ctx, created.ID, MoveSessionRequest{DayOfWeek: intPtr(2), TimeSlot: "8:00-9:30"})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.DayOfWeek)
	assert.Equal(t, "Маркетинг", moved.Subject)

	updated, err := svc.Update(ctx, created.ID, UpdateSessionRequest{Room: strPtr(" 401 ")})
	require.NoError(t, err)
	assert.Equal(t, "401", updated.Room)
	assert.Equal(t, "8:00-9:30", updated.TimeSlot)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 4, store.Len())
	assert.Len(t, obs.stores(), 4)

	_, err = svc.Update(ctx, "missing", UpdateSessionRequest{Room: strPtr("1")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Move(ctx, "missing", MoveSessionRequest{DayOfWeek: intPtr(1), TimeSlot: "8:00-9:30"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, "missing"), appErrors.ErrNotFound))
	assert.Len(t, obs.stores(), 4)
}

func TestScheduleServiceValidation(t *testing.T) {
	svc, _, _ := newTestScheduleService(nil)
	ctx := context.Background()
	valid := CreateSessionRequest{
		Subject: "Маркетинг", Teacher: "Попов О.О.", Room: "301", Building: "корп. 2",
		TimeSlot: "13:40-15:10", Kind: models.SessionPractice, Faculty: "fep", Group: "ЭК-101",
		DayOfWeek: intPtr(0), WeekParity: models.ParityOdd,
	}

	cases := map[string]func(r *CreateSessionRequest){
		"day out of range": func(r *CreateSessionRequest) { r.DayOfWeek = intPtr(6) },
		"missing day":      func(r *CreateSessionRequest) { r.DayOfWeek = nil },
		"bad parity":       func(r *CreateSessionRequest) { r.WeekParity = "weekly" },
		"bad kind":         func(r *CreateSessionRequest) { r.Kind = "seminar" },
		"bad slot":         func(r *CreateSessionRequest) { r.TimeSlot = "25:00-26:00" },
		"empty subject":    func(r *CreateSessionRequest) { r.Subject = "" },
		"blank subject":    func(r *CreateSessionRequest) { r.Subject = "   " },
		"blank room":       func(r *CreateSessionRequest) { r.Room = "\t" },
		"blank group":      func(r *CreateSessionRequest) { r.Group = " " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}

	_, _, err := svc.List(ctx, models.SessionFilter{DayOfWeek: intPtr(-1)})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	items, page, err := svc.List(ctx, models.SessionFilter{Faculty: "fcs", PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 3, page.TotalCount)
}

func TestScheduleServiceUpdateRejectsBlankText(t *testing.T) {
	svc, store, obs := newTestScheduleService(nil)

	_, err := svc.Update(context.Background(), "s1", UpdateSessionRequest{Subject: strPtr("   ")})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	session, err := store.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "Гидравлика", session.Subject)
	assert.Empty(t, obs.stores())
}
