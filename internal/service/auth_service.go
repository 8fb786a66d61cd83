package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

type userDirectory interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
	Create(u *models.User) error
	Update(id string, fn func(*models.User) error) (*models.User, error)
}

type groupDirectory interface {
	HasGroup(faculty, group string) bool
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	BcryptCost        int
}

// AuthService authenticates users against the account directory and issues JWTs.
type AuthService struct {
	users     userDirectory
	groups    groupDirectory
	observer  storeObserver
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users userDirectory, groups groupDirectory, observer storeObserver, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		groups:    groups,
		observer:  observer,
		validator: withDomainValidations(validate),
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for token timestamps and new ids.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid login payload")
	}

	user, err := s.users.FindByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	logger.WithRequest(ctx, s.logger).Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Surname = strings.TrimSpace(req.Surname)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid registration payload")
	}
	if req.Password != req.ConfirmPassword {
		return nil, appErrors.Clone(appErrors.ErrPasswordMismatch, "passwords do not match")
	}
	if req.Role != models.RoleStudent {
		req.Faculty, req.Group = "", ""
	} else if s.groups != nil && !s.groups.HasGroup(req.Faculty, req.Group) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown faculty or group")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.User{
		ID:           strings.ToUpper(string(req.Role)) + strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Faculty:      req.Faculty,
		Group:        req.Group,
		Active:       true,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrEmailTaken, "email already registered")
		}
		return nil, internalError(err, "failed to create user")
	}
	s.observer.Touch(models.StoreAuth)
	logger.WithRequest(ctx, s.logger).Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Me returns the profile of userID.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}
	info := user.Info()
	return &info, nil
}

// UpdateProfile patches the caller's profile. Faculty and group apply to students only.
// Tokens already issued pick up the change on their next validation.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.UserInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationFailed(err, "invalid profile payload")
	}
	user, err := s.users.Update(userID, func(u *models.User) error {
		applyString(&u.Name, req.Name)
		applyString(&u.Surname, req.Surname)
		applyString(&u.Email, req.Email)
		if u.Role != models.RoleStudent {
			return nil
		}
		applyString(&u.Faculty, req.Faculty)
		applyString(&u.Group, req.Group)
		if s.groups != nil && !s.groups.HasGroup(u.Faculty, u.Group) {
			return appErrors.Clone(appErrors.ErrValidation, "unknown faculty or group")
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrEmailTaken, "email already registered")
		}
		return nil, notFoundOr(err, "user not found", "failed to update profile")
	}
	s.observer.Touch(models.StoreAuth)
	info := user.Info()
	return &info, nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationFailed(err, "invalid change password payload")
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrPasswordMismatch, "passwords do not match")
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return notFoundOr(err, "user not found", "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.config.BcryptCost)
	if err != nil {
		return internalError(err, "failed to hash password")
	}
	if _, err := s.users.Update(userID, func(u *models.User) error {
		u.PasswordHash = string(newHash)
		return nil
	}); err != nil {
		return notFoundOr(err, "user not found", "failed to update password")
	}
	s.observer.Touch(models.StoreAuth)
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	// Profile edits apply to tokens issued before them.
	user, err := s.users.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, internalError(err, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	claims.Role = user.Role
	claims.Email = user.Email
	claims.Faculty = user.Faculty
	claims.Group = user.Group
	return claims, nil
}

func (s *AuthService) issue(user *models.User) (*models.LoginResponse, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.JWTClaims{
		UserID:  user.ID,
		Role:    user.Role,
		Email:   user.Email,
		Faculty: user.Faculty,
		Group:   user.Group,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}
	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        user.Info(),
		IssuedAt:    issuedAt,
	}, nil
}

type builtinAccount struct {
	user     models.User
	password string
}

var builtinAccounts = []builtinAccount{
	{models.User{ID: "ST001", Name: "Иван", Surname: "Иванов", Email: "student@tgasu.ru", Role: models.RoleStudent, Faculty: "fcs", Group: "ПГС-101", Active: true}, "student123"},
	{models.User{ID: "TE001", Name: "Петр", Surname: "Петров", Email: "teacher@tgasu.ru", Role: models.RoleTeacher, Active: true}, "teacher123"},
	{models.User{ID: "AD001", Name: "Сергей", Surname: "Сергеев", Email: "admin@tgasu.ru", Role: models.RoleAdmin, Active: true}, "admin123"},
}

// BuiltinUsers returns the fixed student, teacher and admin accounts with
// freshly hashed passwords.
func BuiltinUsers(cost int) ([]models.User, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	users := make([]models.User, 0, len(builtinAccounts))
	for _, acc := range builtinAccounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", acc.user.ID, err)
		}
		u := acc.user
		u.PasswordHash = string(hash)
		users = append(users, u)
	}
	return users, nil
}
