package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/student-complaints/internal/models"
	"github.com/noah-isme/student-complaints/internal/repository"
	appErrors "github.com/noah-isme/student-complaints/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	admins    map[string]*models.Admin
	findErr   error
	createErr error
	nextID    int64
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}, admins: map[string]*models.Admin{}}
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return fmt.Errorf("create user: %w", repository.ErrDuplicate)
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = user
	return nil
}

func (m *mockAuthRepo) FindByAdminID(ctx context.Context, adminID string) (*models.Admin, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	a, ok := m.admins[adminID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

type memoryAttempts struct {
	counts map[string]int64
	err    error
}

func (m *memoryAttempts) Count(ctx context.Context, key string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.counts[key], nil
}

func (m *memoryAttempts) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryAttempts) Reset(ctx context.Context, key string) error {
	delete(m.counts, key)
	return m.err
}

func newAuthServiceForTest(repo *mockAuthRepo, throttle *LoginThrottle) *AuthService {
	return NewAuthService(repo, repo, throttle, NewMetricsService(), validator.New(), zap.NewNop(), AuthConfig{BcryptCost: bcrypt.MinCost})
}

func TestAuthServiceSignupThenLogin(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo, nil)

	user, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	got, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestAuthServiceSignupDuplicate(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo, nil)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "one"})
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "two"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, "Username already exists.", appErrors.FromError(err).Message)
}

func TestAuthServiceSignupValidation(t *testing.T) {
	svc := newAuthServiceForTest(newMockAuthRepo(), nil)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// 40 characters, 80 bytes.
	_, err = svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: strings.Repeat("é", 40)})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, ErrPasswordTooLong.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Password must be at most 72 bytes.", appErr.Message)
}

func TestAuthServiceSignupAcceptsMultibytePasswordWithinLimit(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo, nil)

	// 36 characters, 72 bytes.
	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: strings.Repeat("é", 36)})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: strings.Repeat("é", 36)})
	require.NoError(t, err)
}

func TestAuthServiceHashPasswordTooLong(t *testing.T) {
	svc := newAuthServiceForTest(newMockAuthRepo(), nil)

	_, err := svc.HashPassword(strings.Repeat("a", 73))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPasswordTooLong))
}

func TestAuthServiceSignupStoreErrorIsSanitized(t *testing.T) {
	repo := newMockAuthRepo()
	repo.createErr = errors.New("pq: relation \"users\" does not exist")
	svc := newAuthServiceForTest(repo, nil)

	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "x"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.NotContains(t, appErr.Message, "relation")
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo, nil)
	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "right"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "wrong"})
	_, unknownUser := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "right"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, appErrors.FromError(wrongPassword).Message, appErrors.FromError(unknownUser).Message)
	assert.Equal(t, appErrors.FromError(wrongPassword).Code, appErrors.FromError(unknownUser).Code)
	assert.Equal(t, "Invalid username or password", appErrors.FromError(unknownUser).Message)
}

func TestAuthServiceLoginStoreError(t *testing.T) {
	repo := newMockAuthRepo()
	repo.findErr = errors.New("connection refused")
	svc := newAuthServiceForTest(repo, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceAdminLoginIsIndependent(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthServiceForTest(repo, nil)
	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "root", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{AdminID: "root", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "Invalid admin ID or password", appErrors.FromError(err).Message)

	hash, err := svc.HashPassword("adminpw")
	require.NoError(t, err)
	repo.admins["root"] = &models.Admin{ID: 1, AdminID: "root", PasswordHash: hash}

	admin, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{AdminID: "root", Password: "adminpw"})
	require.NoError(t, err)
	assert.Equal(t, "root", admin.AdminID)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "root", Password: "adminpw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginThrottle(t *testing.T) {
	repo := newMockAuthRepo()
	attempts := &memoryAttempts{counts: map[string]int64{}}
	svc := newAuthServiceForTest(repo, NewLoginThrottle(attempts, 2, time.Minute, zap.NewNop()))
	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "right"})
	require.NoError(t, err)

	req := models.LoginRequest{Username: "asha", Password: "wrong", IP: "10.0.0.1"}
	for i := 0; i < 2; i++ {
		_, err = svc.Login(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	req.Password = "right"
	_, err = svc.Login(context.Background(), req)
	assert.ErrorIs(t, err, ErrLoginThrottled)

	req.IP = "10.0.0.2"
	_, err = svc.Login(context.Background(), req)
	require.NoError(t, err)
}

func TestAuthServiceLoginThrottleFailsOpen(t *testing.T) {
	repo := newMockAuthRepo()
	attempts := &memoryAttempts{counts: map[string]int64{}, err: errors.New("redis down")}
	svc := newAuthServiceForTest(repo, NewLoginThrottle(attempts, 1, time.Minute, nil))
	_, err := svc.Signup(context.Background(), models.SignupRequest{Username: "asha", Password: "right"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "asha", Password: "right"})
	assert.NoError(t, err)
}

func TestNewLoginThrottleDisabled(t *testing.T) {
	assert.Nil(t, NewLoginThrottle(&memoryAttempts{}, 0, time.Minute, nil))
	assert.Nil(t, NewLoginThrottle(nil, 3, time.Minute, nil))

	var throttle *LoginThrottle
	assert.True(t, throttle.Allowed(context.Background(), LoginScopeUser, "a", "b"))
}
