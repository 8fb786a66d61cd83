package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/service"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

type fakeExportSrv struct {
	lastReq service.ExportRequest
	result  *service.ExportResult
	file    *service.ExportFile
	err     error
}

func (f *fakeExportSrv) Generate(_ context.Context, req service.ExportRequest) (*service.ExportResult, error) {
	f.lastReq = req
	return f.result, f.err
}

func (f *fakeExportSrv) Resolve(string) (*service.ExportFile, error) {
	return f.file, f.err
}

func TestExportHandlerGenerateFillsGroupFromToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeExportSrv{result: &service.ExportResult{ID: "e1", Format: "csv"}}
	handler := NewExportHandler(srv, time.UTC)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = newRequest(http.MethodPost, "/schedule/export", `{"date":"2024-09-04","format":"csv"}`, nil)
	c.Set("currentUser", &models.JWTClaims{UserID: "STUDENT1", Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101"})

	handler.Generate(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fcs", srv.lastReq.Faculty)
	assert.Equal(t, "ПГС-101", srv.lastReq.Group)
	assert.Equal(t, time.Date(2024, time.September, 4, 0, 0, 0, 0, time.UTC), srv.lastReq.WeekStart)
}

func TestExportHandlerGenerateRejectsBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeExportSrv{}
	handler := NewExportHandler(srv, time.UTC)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = newRequest(http.MethodPost, "/schedule/export", `{"date":"04/09/2024","format":"csv"}`, nil)

	handler.Generate(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.lastReq.Format)
}

func TestExportHandlerDownloadStreamsFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "week.csv")
	require.NoError(t, os.WriteFile(path, []byte("День,Время\n"), 0o600))
	file, err := os.Open(path)
	require.NoError(t, err)

	handler := NewExportHandler(&fakeExportSrv{file: &service.ExportFile{File: file, Name: "exports/week.csv", ContentType: "text/csv"}}, time.UTC)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.Download(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="week.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "День,Время\n", rec.Body.String())
}

func TestExportHandlerDownloadExpired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&fakeExportSrv{err: appErrors.Clone(appErrors.ErrForbidden, "download link expired")}, time.UTC)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/exports/token", nil)

	handler.Download(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFeatureDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/schedule/export", nil)

	FeatureDisabled("exports")(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "FEATURE_DISABLED")
}
