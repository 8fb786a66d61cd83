package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/export"
	"github.com/noah-isme/unischedule-api/pkg/logger"
	"github.com/noah-isme/unischedule-api/pkg/storage"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var dayNames = [...]string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"}

var kindNames = map[models.SessionKind]string{
	models.SessionLecture:  "Лекция",
	models.SessionPractice: "Практика",
	models.SessionLab:      "Лабораторная",
}

var weekColumns = []export.Column{
	{Key: "day", Title: "День", Width: 1.2},
	{Key: "time", Title: "Время", Width: 1},
	{Key: "subject", Title: "Предмет", Width: 2.6},
	{Key: "type", Title: "Тип", Width: 1.1},
	{Key: "teacher", Title: "Преподаватель", Width: 1.5},
	{Key: "room", Title: "Аудитория", Width: 0.8},
	{Key: "building", Title: "Корпус", Width: 0.8},
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(now time.Time, ttl time.Duration) ([]string, error)
}

type weekResolver interface {
	Week(ctx context.Context, req WeekRequest) (*models.WeekSchedule, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	FontPath  string
}

// ExportRequest selects the week and group to render.
type ExportRequest struct {
	WeekStart time.Time `json:"week_start"`
	Faculty   string    `json:"faculty" validate:"required,notblank"`
	Group     string    `json:"group" validate:"required,notblank"`
	Format    string    `json:"format" validate:"required,oneof=csv pdf"`
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ID           string          `json:"id"`
	Token        string          `json:"token"`
	URL          string          `json:"url"`
	Format       string          `json:"format"`
	RelativePath string          `json:"-"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Week         models.WeekInfo `json:"week"`
	Sessions     int             `json:"sessions"`
}

// ExportFile is a resolved download.
type ExportFile struct {
	File        *os.File
	Name        string
	ContentType string
}

// ExportService renders resolved weeks to files and hands out signed links.
type ExportService struct {
	weeks     weekResolver
	storage   fileStorage
	signer    *storage.SignedURLSigner
	renderers map[string]renderer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(weeks weekResolver, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := export.NewCSVExporter()
	pdf := export.NewPDFExporter(cfg.FontPath)
	return &ExportService{
		weeks:     weeks,
		storage:   files,
		signer:    signer,
		renderers: map[string]renderer{ExportFormatCSV: csv, ExportFormatPDF: pdf},
		validator: withDomainValidations(validate),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for file names and cleanup.
func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

// Generate renders the resolved week, stores the file and signs a download link.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid export payload")
	}
	r := s.renderers[req.Format]

	week, err := s.weeks.Week(ctx, WeekRequest{Date: req.WeekStart, Faculty: req.Faculty, Group: req.Group})
	if err != nil {
		return nil, err
	}

	payload, err := r.Render(weekDataset(week))
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}

	id := uuid.NewString()
	relPath, err := s.storage.Save(s.buildFilename(week, id, r.Extension()), payload)
	if err != nil {
		return nil, internalError(err, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(id, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	logger.WithRequest(ctx, s.logger).Info("timetable exported",
		zap.String("id", id), zap.String("group", week.Group), zap.String("format", req.Format), zap.Int("sessions", len(week.Sessions)))
	return &ExportResult{
		ID:           id,
		Token:        token,
		URL:          fmt.Sprintf("%s/exports/%s", prefix, token),
		Format:       req.Format,
		RelativePath: relPath,
		ExpiresAt:    expiresAt,
		Week:         week.WeekInfo,
		Sessions:     len(week.Sessions),
	}, nil
}

// Resolve validates a download token and opens the file it references. The
// caller closes the returned file.
func (s *ExportService) Resolve(token string) (*ExportFile, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	switch {
	case errors.Is(err, storage.ErrTokenExpired):
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link expired")
	case err != nil:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, internalError(err, "failed to open export")
	}
	contentType := "application/octet-stream"
	for _, r := range s.renderers {
		if strings.HasSuffix(relPath, "."+r.Extension()) {
			contentType = r.ContentType()
		}
	}
	return &ExportFile{File: file, Name: relPath, ContentType: contentType}, nil
}

// Cleanup removes exports whose links can no longer be valid.
func (s *ExportService) Cleanup() ([]string, error) {
	removed, err := s.storage.CleanupOlderThan(s.now(), s.signer.TTL())
	if err != nil {
		return removed, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}

func (s *ExportService) buildFilename(week *models.WeekSchedule, id, ext string) string {
	stamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("schedule_%s_%s_%s_%s.%s",
		sanitizeFilename(week.Group), week.WeekStart.Format("20060102"), stamp, id[:8], ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func weekDataset(week *models.WeekSchedule) export.Dataset {
	parity := "нечетная"
	if week.Parity == models.ParityEven {
		parity = "четная"
	}
	rows := make([]map[string]string, 0, len(week.Sessions))
	for _, session := range week.Sessions {
		rows = append(rows, map[string]string{
			"day":      dayName(session.DayOfWeek),
			"time":     session.TimeSlot,
			"subject":  session.Subject,
			"type":     kindName(session.Kind),
			"teacher":  session.Teacher,
			"room":     session.Room,
			"building": session.Building,
		})
	}
	return export.Dataset{
		Title: fmt.Sprintf("Расписание %s, неделя %d (%s), с %s",
			week.Group, week.WeekNumber, parity, week.WeekStart.Format("02.01.2006")),
		Columns: weekColumns,
		Rows:    rows,
	}
}

func dayName(day int) string {
	if day < 0 || day >= len(dayNames) {
		return strconv.Itoa(day)
	}
	return dayNames[day]
}

func kindName(kind models.SessionKind) string {
	if name, ok := kindNames[kind]; ok {
		return name
	}
	return string(kind)
}
