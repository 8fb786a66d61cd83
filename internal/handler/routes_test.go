package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/noah-isme/unischedule-api/internal/middleware"
	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	"github.com/noah-isme/unischedule-api/internal/service"
)

func TestRoutesIntegration(t *testing.T) {
	router := buildTestRouter()

	t.Run("week requires auth", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodGet, "/schedule/week", "", nil))
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("week resolves even parity", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodGet, "/schedule/week?date=2024-09-11&faculty=fcs&group=ПГС-101", "", asStudent))
		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			Data models.WeekSchedule `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Data.WeekNumber)
		assert.Equal(t, models.ParityEven, body.Data.Parity)
		require.Len(t, body.Data.Sessions, 2)
		assert.Equal(t, "s3", body.Data.Sessions[0].ID)
		assert.Equal(t, "s1", body.Data.Sessions[1].ID)
	})

	t.Run("week falls back to the caller's group", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodGet, "/schedule/week?date=2024-09-03", "", asStudent))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"s2"`)
		assert.Contains(t, resp.Body.String(), `"parity":"odd"`)
	})

	t.Run("week rejects malformed date", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodGet, "/schedule/week?date=11.09.2024", "", asStudent))
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("students cannot create sessions", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPost, "/schedule/sessions", validSessionPayload, asStudent))
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("teachers create sessions", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPost, "/schedule/sessions", validSessionPayload, asTeacher))
		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), `"subject":"Сопромат"`)
	})

	t.Run("blank subject is rejected", func(t *testing.T) {
		payload := `{"subject":"   ","teacher":"Иванов И.И.","room":"301","building":"А","time":"13:30-15:00","type":"lecture","faculty":"fcs","group":"ПГС-101","day_of_week":2,"week_type":"both"}`
		resp := performRequest(router, newRequest(http.MethodPost, "/schedule/sessions", payload, asTeacher))
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("moving an unknown session is not found", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPatch, "/schedule/sessions/missing/move", `{"day_of_week":2,"time":"8:00-9:30"}`, asTeacher))
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("consultation seat can be taken once", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPost, "/consultations/c1/registration", "", asStudent))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"is_registered":true`)

		resp = performRequest(router, newRequest(http.MethodPost, "/consultations/c1/registration", "", asStudent))
		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Contains(t, resp.Body.String(), "ALREADY_REGISTERED")
	})

	t.Run("teachers cannot register for consultations", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPost, "/consultations/c1/registration", "", asTeacher))
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("notifications are filtered by audience", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodGet, "/notifications", "", asStudent))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"n-students"`)
		assert.NotContains(t, resp.Body.String(), `"n-teachers"`)

		resp = performRequest(router, newRequest(http.MethodGet, "/notifications", "", asTeacher))
		assert.Contains(t, resp.Body.String(), `"n-teachers"`)
		assert.NotContains(t, resp.Body.String(), `"n-students"`)
	})

	t.Run("marking an unknown notification is not found", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPatch, "/notifications/missing/read", "", asStudent))
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("theme toggles per user", func(t *testing.T) {
		resp := performRequest(router, newRequest(http.MethodPost, "/preferences/theme/toggle", "", asStudent))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"dark":true`)

		resp = performRequest(router, newRequest(http.MethodGet, "/preferences/theme", "", asTeacher))
		assert.Contains(t, resp.Body.String(), `"dark":false`)
	})
}

const validSessionPayload = `{"subject":"Сопромат","teacher":"Иванов И.И.","room":"301","building":"А","time":"13:30-15:00","type":"lecture","faculty":"fcs","group":"ПГС-101","day_of_week":2,"week_type":"both"}`

type identity struct {
	id      string
	role    models.UserRole
	faculty string
	group   string
}

var (
	asStudent = &identity{id: "STUDENT1", role: models.RoleStudent, faculty: "fcs", group: "ПГС-101"}
	asTeacher = &identity{id: "TEACHER1", role: models.RoleTeacher}
)

func newRequest(method, path, body string, who *identity) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		req.Header.Set("X-Test-User", who.id)
		req.Header.Set("X-Test-Role", string(who.role))
		req.Header.Set("X-Test-Faculty", who.faculty)
		req.Header.Set("X-Test-Group", who.group)
	}
	return req
}

func performRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func buildTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	fakeAuth := func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
			UserID:  c.GetHeader("X-Test-User"),
			Role:    models.UserRole(role),
			Faculty: c.GetHeader("X-Test-Faculty"),
			Group:   c.GetHeader("X-Test-Group"),
		})
		c.Next()
	}
	staff := internalmiddleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	calendar := service.NewWeekCalendar(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))
	logger := zap.NewNop()
	prefStore := repository.NewPreferenceStore()

	scheduleSvc := service.NewScheduleService(repository.NewScheduleStore([]models.ScheduleSession{
		{ID: "s1", Subject: "Гидравлика", TimeSlot: "11:20-12:50", Kind: models.SessionLecture, Faculty: "fcs", Group: "ПГС-101", DayOfWeek: 0, WeekParity: models.ParityBoth},
		{ID: "s2", Subject: "Геодезия", TimeSlot: "8:00-9:30", Kind: models.SessionLab, Faculty: "fcs", Group: "ПГС-101", DayOfWeek: 0, WeekParity: models.ParityOdd},
		{ID: "s3", Subject: "Механика", TimeSlot: "9:40-11:10", Kind: models.SessionPractice, Faculty: "fcs", Group: "ПГС-101", DayOfWeek: 0, WeekParity: models.ParityEven},
	}), prefStore, calendar, nil, nil, logger)
	notificationSvc := service.NewNotificationService(repository.NewNotificationStore([]models.Notification{
		{ID: "n-students", Title: "Сессия", Message: "Расписание сессии", Severity: models.SeverityInfo, IssuedAt: time.Now(), TargetRoles: []models.UserRole{models.RoleStudent}},
		{ID: "n-teachers", Title: "Совет", Message: "Заседание кафедры", Severity: models.SeverityWarning, IssuedAt: time.Now(), TargetRoles: []models.UserRole{models.RoleTeacher}},
	}), service.TargetingLenient, nil, nil, nil, logger)
	consultationSvc := service.NewConsultationService(repository.NewConsultationStore([]models.Consultation{
		{ID: "c1", Subject: "Гидравлика", Teacher: "Петров П.П.", Date: "2024-09-20", Time: "15:00-16:30", MaxStudents: 5, Faculty: "fcs", Groups: []string{"ПГС-101"}},
	}), nil, nil, nil, logger)
	preferenceSvc := service.NewPreferenceService(prefStore, service.NewFacultyService(nil), calendar, nil, logger)

	scheduleHandler := NewScheduleHandler(scheduleSvc, time.UTC)
	notificationHandler := NewNotificationHandler(notificationSvc)
	consultationHandler := NewConsultationHandler(consultationSvc)
	preferenceHandler := NewPreferenceHandler(preferenceSvc, time.UTC)

	secured := router.Group("/")
	secured.Use(fakeAuth)
	secured.GET("/schedule/week", scheduleHandler.Week)
	secured.POST("/schedule/sessions", staff, scheduleHandler.Create)
	secured.PATCH("/schedule/sessions/:id/move", staff, scheduleHandler.Move)
	secured.GET("/notifications", notificationHandler.List)
	secured.PATCH("/notifications/:id/read", notificationHandler.MarkAsRead)
	secured.POST("/consultations/:id/registration", internalmiddleware.RequireRoles(models.RoleStudent), consultationHandler.Register)
	secured.GET("/preferences/theme", preferenceHandler.Theme)
	secured.POST("/preferences/theme/toggle", preferenceHandler.ToggleTheme)

	return router
}
