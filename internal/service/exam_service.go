package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

type examStore interface {
	List(filter models.ExamFilter) []models.Exam
	Get(id string) (*models.Exam, error)
	Create(e *models.Exam)
	Update(id string, fn func(*models.Exam) error) (*models.Exam, error)
	Delete(id string) error
}

// CreateExamRequest describes payload for scheduling an exam.
type CreateExamRequest struct {
	Subject         string          `json:"subject" validate:"required,notblank"`
	Teacher         string          `json:"teacher" validate:"required,notblank"`
	Date            string          `json:"date" validate:"required,isodate"`
	Time            string          `json:"time" validate:"required,timeslot"`
	Room            string          `json:"room"`
	Building        string          `json:"building"`
	Kind            models.ExamKind `json:"type" validate:"omitempty,examkind"`
	DurationMinutes int             `json:"duration" validate:"omitempty,min=1,max=600"`
	Faculty         string          `json:"faculty" validate:"required,notblank"`
	Groups          []string        `json:"groups" validate:"required,min=1,dive,notblank"`
	Description     string          `json:"description"`
}

// UpdateExamRequest patches an exam; nil fields are left untouched.
type UpdateExamRequest struct {
	Subject         *string          `json:"subject" validate:"omitempty,notblank"`
	Teacher         *string          `json:"teacher" validate:"omitempty,notblank"`
	Date            *string          `json:"date" validate:"omitempty,isodate"`
	Time            *string          `json:"time" validate:"omitempty,timeslot"`
	Room            *string          `json:"room"`
	Building        *string          `json:"building"`
	Kind            *models.ExamKind `json:"type" validate:"omitempty,examkind"`
	DurationMinutes *int             `json:"duration" validate:"omitempty,min=1,max=600"`
	Faculty         *string          `json:"faculty" validate:"omitempty,notblank"`
	Groups          *[]string        `json:"groups" validate:"omitempty,min=1,dive,notblank"`
	Description     *string          `json:"description"`
}

// ExamService manages the exam calendar.
type ExamService struct {
	store     examStore
	observer  storeObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the service.
func NewExamService(store examStore, observer storeObserver, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{store: store, observer: observer, validator: withDomainValidations(validate), logger: logger}
}

// List returns exams matching filter ordered by date, then start time.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) []models.Exam {
	items := s.store.List(filter)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		return slotStart(items[i].Time) < slotStart(items[j].Time)
	})
	return items
}

// Get returns an exam by id.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	e, err := s.store.Get(id)
	if err != nil {
		return nil, notFoundOr(err, "exam not found", "failed to load exam")
	}
	return e, nil
}

// Create validates and stores an exam. Kind defaults to exam and the duration to
// the kind's default.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid exam payload")
	}
	if req.Kind == "" {
		req.Kind = models.ExamKindExam
	}
	if req.DurationMinutes == 0 {
		req.DurationMinutes = req.Kind.DefaultDuration()
	}
	e := &models.Exam{
		Subject:         strings.TrimSpace(req.Subject),
		Teacher:         strings.TrimSpace(req.Teacher),
		Date:            req.Date,
		Time:            req.Time,
		Room:            strings.TrimSpace(req.Room),
		Building:        strings.TrimSpace(req.Building),
		Kind:            req.Kind,
		DurationMinutes: req.DurationMinutes,
		Faculty:         req.Faculty,
		Groups:          req.Groups,
		Description:     strings.TrimSpace(req.Description),
	}
	s.store.Create(e)
	s.observer.Touch(models.StoreExams)
	logger.WithRequest(ctx, s.logger).Info("exam scheduled", zap.String("id", e.ID), zap.String("date", e.Date))
	return e, nil
}

// Update applies a partial update. Changing the kind without a duration resets
// the duration to the new kind's default.
func (s *ExamService) Update(ctx context.Context, id string, req UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid exam payload")
	}
	updated, err := s.store.Update(id, func(e *models.Exam) error {
		applyString(&e.Subject, req.Subject)
		applyString(&e.Teacher, req.Teacher)
		applyString(&e.Date, req.Date)
		applyString(&e.Time, req.Time)
		applyString(&e.Room, req.Room)
		applyString(&e.Building, req.Building)
		applyString(&e.Faculty, req.Faculty)
		applyString(&e.Description, req.Description)
		if req.Kind != nil && *req.Kind != e.Kind {
			e.Kind = *req.Kind
			if req.DurationMinutes == nil {
				e.DurationMinutes = e.Kind.DefaultDuration()
			}
		}
		if req.DurationMinutes != nil {
			e.DurationMinutes = *req.DurationMinutes
		}
		if req.Groups != nil {
			e.Groups = append([]string(nil), (*req.Groups)...)
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "exam not found", "failed to update exam")
	}
	s.observer.Touch(models.StoreExams)
	return updated, nil
}

// Delete removes an exam.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return notFoundOr(err, "exam not found", "failed to delete exam")
	}
	s.observer.Touch(models.StoreExams)
	return nil
}
