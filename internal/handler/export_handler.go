package handler

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unischedule-api/internal/service"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/response"
)

type exportService interface {
	Generate(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
	Resolve(token string) (*service.ExportFile, error)
}

// exportPayload is the request body of POST /schedule/export.
type exportPayload struct {
	Date    string `json:"date"`
	Faculty string `json:"faculty"`
	Group   string `json:"group"`
	Format  string `json:"format"`
}

// ExportHandler renders timetables to files and serves signed downloads.
type ExportHandler struct {
	service exportService
	loc     *time.Location
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService, loc *time.Location) *ExportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportHandler{service: svc, loc: loc}
}

// Generate godoc
// @Summary Export weekly timetable
// @Description Render one group's week to CSV or PDF and return a signed download link.
// @Tags Exports
// @Accept json
// @Produce json
// @Param payload body exportPayload true "Week, group and format"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/export [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	var payload exportPayload
	if !bindJSON(c, &payload, "invalid export payload") {
		return
	}
	date, err := parseDate(payload.Date, h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	audience := currentAudience(c)
	req := service.ExportRequest{
		WeekStart: date,
		Faculty:   firstNonBlank(payload.Faculty, audience.Faculty),
		Group:     firstNonBlank(payload.Group, audience.Group),
		Format:    payload.Format,
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download export via signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close() //nolint:errcheck

	info, err := file.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read export"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(file.Name)))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), file.ContentType, file.File, nil)
}

// FeatureDisabled answers every request with FEATURE_DISABLED.
func FeatureDisabled(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, feature+" are disabled"))
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
