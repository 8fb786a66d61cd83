package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/unischedule-api/pkg/config"
	"github.com/noah-isme/unischedule-api/pkg/middleware/requestid"
)

func TestNewAppliesLevel(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn", Format: "json"}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestWithRequestTagsServiceLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(base))
	r.GET("/", func(c *gin.Context) {
		WithRequest(c.Request.Context(), base).Info("session created")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, "req-42", e.ContextMap()["request_id"])
	}
	assert.Equal(t, "http_request", entries[1].Message)
}

func TestWithRequestWithoutID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithRequest(httptest.NewRequest(http.MethodGet, "/", nil).Context(), base).Info("plain")

	require.Len(t, logs.All(), 1)
	_, ok := logs.All()[0].ContextMap()["request_id"]
	assert.False(t, ok)
}
