package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/unischedule-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		checks map[string]ReadinessCheck
		status int
		body   string
	}{
		{name: "no checks", status: http.StatusOK, body: `"status":"ready"`},
		{
			name:   "store reachable",
			checks: map[string]ReadinessCheck{"store": func(context.Context) error { return nil }},
			status: http.StatusOK,
			body:   `"store":"ok"`,
		},
		{
			name:   "store down",
			checks: map[string]ReadinessCheck{"store": func(context.Context) error { return errors.New("connection refused") }},
			status: http.StatusServiceUnavailable,
			body:   `"store":"connection refused"`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

			NewMetricsHandler(nil, tc.checks).Ready(c)

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestMetricsHandlerPrometheus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordRegistration(service.RegistrationRegistered)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)

	NewMetricsHandler(metrics, nil).Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "registrations")
}

func TestMetricsHandlerPrometheusDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/metrics", nil)

	NewMetricsHandler(nil, nil).Prometheus(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
