package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

var timeSlotPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d-([01]?\d|2[0-3]):[0-5]\d$`)

// NewValidator returns a validator with the domain tags registered.
func NewValidator() *validator.Validate {
	return withDomainValidations(validator.New())
}

// withDomainValidations registers the enum and format tags used by request
// payloads. Registering twice replaces the previous functions.
func withDomainValidations(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("weekparity", func(fl validator.FieldLevel) bool {
		return models.WeekParity(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("sessionkind", func(fl validator.FieldLevel) bool {
		return models.SessionKind(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("severity", func(fl validator.FieldLevel) bool {
		return models.Severity(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("examkind", func(fl validator.FieldLevel) bool {
		return models.ExamKind(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
		return timeSlotPattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(dateLayout, fl.Field().String())
		return err == nil
	})
	return validate
}

const dateLayout = "2006-01-02"

func validationFailed(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// notFoundOr maps repository misses to NOT_FOUND and anything else to INTERNAL_ERROR.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return internalError(err, internal)
}
