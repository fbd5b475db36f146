package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-complaints/internal/models"
	"github.com/noah-isme/student-complaints/internal/repository"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type authAdminRepository interface {
	FindByAdminID(ctx context.Context, adminID string) (*models.Admin, error)
}

// Authentication errors surfaced to users.
var (
	ErrUsernameTaken           = appErrors.WithCode(appErrors.ErrConflict, "DUPLICATE_USERNAME", "Username already exists.")
	ErrInvalidCredentials      = appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid username or password")
	ErrInvalidAdminCredentials = appErrors.WithCode(appErrors.ErrInvalidCredentials, "INVALID_ADMIN_CREDENTIALS", "Invalid admin ID or password")
	ErrLoginThrottled          = appErrors.ErrTooManyRequests
	ErrPasswordTooLong         = appErrors.WithCode(appErrors.ErrValidation, "PASSWORD_TOO_LONG", "Password must be at most 72 bytes.")
)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	BcryptCost int
}

// AuthService authenticates general users and admins against their separate tables.
type AuthService struct {
	users     authUserRepository
	admins    authAdminRepository
	throttle  *LoginThrottle
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, admins authAdminRepository, throttle *LoginThrottle, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:     users,
		admins:    admins,
		throttle:  throttle,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// HashPassword returns a salted bcrypt hash of password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", appErrors.Wrap(err, ErrPasswordTooLong.Code, ErrPasswordTooLong.Status, ErrPasswordTooLong.Message)
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return string(hash), nil
}

// Signup creates a general account. The caller stays unauthenticated.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Username and password are required (username up to 50 characters).")
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: req.Username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, ErrUsernameTaken.Code, ErrUsernameTaken.Status, ErrUsernameTaken.Message)
		}
		s.logger.Error("signup failed", zap.String("username", req.Username), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Signup failed. Please try again.")
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies general user credentials and returns the authenticated user. Unknown usernames
// and wrong passwords produce the same error after the same amount of hashing work.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, ErrInvalidCredentials.Code, ErrInvalidCredentials.Status, ErrInvalidCredentials.Message)
	}
	if !s.throttle.Allowed(ctx, LoginScopeUser, req.Username, req.IP) {
		return nil, ErrLoginThrottled
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Login failed. Please try again.")
	}

	var hash []byte
	if user != nil {
		hash = []byte(user.PasswordHash)
	} else {
		hash = s.dummy()
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); cmpErr != nil || user == nil {
		s.throttle.Failed(ctx, LoginScopeUser, req.Username, req.IP)
		s.metrics.LoginFailed(LoginScopeUser)
		return nil, ErrInvalidCredentials
	}

	s.throttle.Succeeded(ctx, LoginScopeUser, req.Username, req.IP)
	return user, nil
}

// AdminLogin verifies admin credentials. It never consults the users table.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, ErrInvalidAdminCredentials.Code, ErrInvalidAdminCredentials.Status, ErrInvalidAdminCredentials.Message)
	}
	if !s.throttle.Allowed(ctx, LoginScopeAdmin, req.AdminID, req.IP) {
		return nil, ErrLoginThrottled
	}

	admin, err := s.admins.FindByAdminID(ctx, req.AdminID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("admin lookup failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error during login")
	}

	var hash []byte
	if admin != nil {
		hash = []byte(admin.PasswordHash)
	} else {
		hash = s.dummy()
	}
	if cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password)); cmpErr != nil || admin == nil {
		s.throttle.Failed(ctx, LoginScopeAdmin, req.AdminID, req.IP)
		s.metrics.LoginFailed(LoginScopeAdmin)
		return nil, ErrInvalidAdminCredentials
	}

	s.throttle.Succeeded(ctx, LoginScopeAdmin, req.AdminID, req.IP)
	s.logger.Info("admin logged in", zap.String("admin_id", admin.AdminID))
	return admin, nil
}

// dummy returns a hash of a random password used to equalize the cost of unknown-principal logins.
func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		hash, err := bcrypt.GenerateFromPassword(buf, s.config.BcryptCost)
		if err != nil {
			s.logger.Warn("failed to build dummy hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
