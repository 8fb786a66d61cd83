package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

type consultationStore interface {
	List(filter models.ConsultationFilter) []models.Consultation
	Get(id string) (*models.Consultation, error)
	Create(c *models.Consultation)
	Update(id string, fn func(*models.Consultation) error) (*models.Consultation, error)
	Register(id, studentID string) (*models.Consultation, error)
	Unregister(id, studentID string) (*models.Consultation, bool, error)
	Delete(id string) error
}

// CreateConsultationRequest describes payload for creating a consultation.
type CreateConsultationRequest struct {
	Subject     string   `json:"subject" validate:"required,notblank"`
	Teacher     string   `json:"teacher" validate:"required,notblank"`
	Date        string   `json:"date" validate:"required,isodate"`
	Time        string   `json:"time" validate:"required,timeslot"`
	Room        string   `json:"room"`
	Building    string   `json:"building"`
	Description string   `json:"description"`
	MaxStudents int      `json:"max_students" validate:"required,min=1"`
	Faculty     string   `json:"faculty" validate:"required,notblank"`
	Groups      []string `json:"groups" validate:"required,min=1,dive,notblank"`
}

// UpdateConsultationRequest patches a consultation; nil fields are left untouched.
type UpdateConsultationRequest struct {
	Subject     *string   `json:"subject" validate:"omitempty,notblank"`
	Teacher     *string   `json:"teacher" validate:"omitempty,notblank"`
	Date        *string   `json:"date" validate:"omitempty,isodate"`
	Time        *string   `json:"time" validate:"omitempty,timeslot"`
	Room        *string   `json:"room"`
	Building    *string   `json:"building"`
	Description *string   `json:"description"`
	MaxStudents *int      `json:"max_students" validate:"omitempty,min=1"`
	Faculty     *string   `json:"faculty" validate:"omitempty,notblank"`
	Groups      *[]string `json:"groups" validate:"omitempty,min=1,dive,notblank"`
}

// ConsultationService manages consultations and seat registration.
type ConsultationService struct {
	store     consultationStore
	observer  storeObserver
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConsultationService constructs the service.
func NewConsultationService(store consultationStore, observer storeObserver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ConsultationService {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsultationService{
		store:     store,
		observer:  observer,
		metrics:   metrics,
		validator: withDomainValidations(validate),
		logger:    logger,
	}
}

// List returns consultations matching filter, decorated for the viewing student.
func (s *ConsultationService) List(ctx context.Context, filter models.ConsultationFilter, studentID string) []models.ConsultationView {
	items := s.store.List(filter)
	out := make([]models.ConsultationView, len(items))
	for i := range items {
		out[i] = consultationView(items[i], studentID)
	}
	return out
}

// Get returns one consultation decorated for the viewing student.
func (s *ConsultationService) Get(ctx context.Context, id, studentID string) (*models.ConsultationView, error) {
	c, err := s.store.Get(id)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found", "failed to load consultation")
	}
	view := consultationView(*c, studentID)
	return &view, nil
}

// Create validates and stores a consultation with no registrations.
func (s *ConsultationService) Create(ctx context.Context, req CreateConsultationRequest) (*models.Consultation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid consultation payload")
	}
	c := &models.Consultation{
		Subject:            strings.TrimSpace(req.Subject),
		Teacher:            strings.TrimSpace(req.Teacher),
		Date:               req.Date,
		Time:               req.Time,
		Room:               strings.TrimSpace(req.Room),
		Building:           strings.TrimSpace(req.Building),
		Description:        strings.TrimSpace(req.Description),
		MaxStudents:        req.MaxStudents,
		RegisteredStudents: []string{},
		Faculty:            req.Faculty,
		Groups:             req.Groups,
	}
	s.store.Create(c)
	s.observer.Touch(models.StoreConsultations)
	logger.WithRequest(ctx, s.logger).Info("consultation created", zap.String("id", c.ID), zap.Int("max_students", c.MaxStudents))
	return c, nil
}

// Update applies a partial update. Capacity may not drop below the seats already taken.
func (s *ConsultationService) Update(ctx context.Context, id string, req UpdateConsultationRequest) (*models.Consultation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid consultation payload")
	}
	updated, err := s.store.Update(id, func(c *models.Consultation) error {
		if req.MaxStudents != nil && *req.MaxStudents < len(c.RegisteredStudents) {
			return appErrors.Clone(appErrors.ErrValidation, "max_students is below the number of registered students")
		}
		applyString(&c.Subject, req.Subject)
		applyString(&c.Teacher, req.Teacher)
		applyString(&c.Date, req.Date)
		applyString(&c.Time, req.Time)
		applyString(&c.Room, req.Room)
		applyString(&c.Building, req.Building)
		applyString(&c.Description, req.Description)
		applyString(&c.Faculty, req.Faculty)
		if req.MaxStudents != nil {
			c.MaxStudents = *req.MaxStudents
		}
		if req.Groups != nil {
			c.Groups = append([]string(nil), (*req.Groups)...)
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, notFoundOr(err, "consultation not found", "failed to update consultation")
	}
	s.observer.Touch(models.StoreConsultations)
	return updated, nil
}

// Delete removes a consultation.
func (s *ConsultationService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return notFoundOr(err, "consultation not found", "failed to delete consultation")
	}
	s.observer.Touch(models.StoreConsultations)
	return nil
}

// Register books a seat for studentID. Duplicate and full consultations are
// rejected without changing the registration list.
func (s *ConsultationService) Register(ctx context.Context, id, studentID string) (*models.ConsultationView, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	c, err := s.store.Register(id, studentID)
	switch {
	case err == nil:
		s.metrics.RecordRegistration(RegistrationRegistered)
	case errors.Is(err, models.ErrAlreadyRegistered):
		s.metrics.RecordRegistration(RegistrationDuplicate)
		return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "")
	case errors.Is(err, models.ErrConsultationFull):
		s.metrics.RecordRegistration(RegistrationFull)
		return nil, appErrors.Clone(appErrors.ErrConsultationFull, "")
	case errors.Is(err, repository.ErrNotFound):
		s.metrics.RecordRegistration(RegistrationNotFound)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "consultation not found")
	default:
		return nil, internalError(err, "failed to register")
	}
	s.observer.Touch(models.StoreConsultations)
	logger.WithRequest(ctx, s.logger).Info("student registered", zap.String("consultation_id", id), zap.String("student_id", studentID))
	view := consultationView(*c, studentID)
	return &view, nil
}

// Unregister releases the seat of studentID. Releasing a seat that was never
// taken succeeds without change.
func (s *ConsultationService) Unregister(ctx context.Context, id, studentID string) (*models.ConsultationView, error) {
	c, removed, err := s.store.Unregister(id, studentID)
	if err != nil {
		return nil, notFoundOr(err, "consultation not found", "failed to unregister")
	}
	if removed {
		s.metrics.RecordRegistration(RegistrationUnregistered)
		s.observer.Touch(models.StoreConsultations)
	}
	view := consultationView(*c, studentID)
	return &view, nil
}

func consultationView(c models.Consultation, studentID string) models.ConsultationView {
	remaining := c.MaxStudents - len(c.RegisteredStudents)
	if remaining < 0 {
		remaining = 0
	}
	return models.ConsultationView{
		Consultation:   c,
		IsFull:         c.IsFull(),
		IsRegistered:   studentID != "" && c.IsRegistered(studentID),
		SeatsRemaining: remaining,
	}
}
