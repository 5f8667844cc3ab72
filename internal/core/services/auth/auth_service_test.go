package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository implements ports.UserRepository for testing.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func newUser(t *testing.T, id, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: id, Username: username, PasswordHash: string(hashed), Role: role}
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo)
	ctx := context.Background()

	user := newUser(t, "u-1", "admin", "secret123", domain.RoleAdmin)

	// 1. Success
	mockRepo.On("GetByUsername", ctx, "admin").Return(user, nil)
	mockRepo.On("Save", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.ID == "u-1" && !u.LastLogin.IsZero()
	})).Return(nil)

	token, err := svc.Login(ctx, domain.Credentials{Username: "admin", Password: "secret123"})
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// 2. Wrong Password
	mockRepo.On("GetByUsername", ctx, "admin_fail").Return(user, nil)
	token, err = svc.Login(ctx, domain.Credentials{Username: "admin_fail", Password: "wrong"})
	assert.Empty(t, token)
	assert.Equal(t, ErrInvalidCredentials, err)

	// 3. User Not Found
	mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, errors.New("not found"))
	_, err = svc.Login(ctx, domain.Credentials{Username: "ghost", Password: "any"})
	assert.Equal(t, ErrInvalidCredentials, err) // Should mask not found
}

func TestAuthService_LockoutAfterRepeatedFailures(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo)
	ctx := context.Background()

	user := newUser(t, "u-1", "operator", "correct-horse", domain.RoleOperator)
	mockRepo.On("GetByUsername", ctx, "operator").Return(user, nil)

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "nope"})
		require.Equal(t, ErrInvalidCredentials, err)
	}

	_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "correct-horse"})
	assert.Equal(t, ErrRateLimitExceeded, err)
}

func TestAuthService_ValidateToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo)
	ctx := context.Background()

	user := newUser(t, "u-1", "user", "pass", domain.RoleViewer)
	mockRepo.On("GetByUsername", ctx, "user").Return(user, nil)
	mockRepo.On("Save", ctx, mock.Anything).Return(nil)

	token, err := svc.Login(ctx, domain.Credentials{Username: "user", Password: "pass"})
	require.NoError(t, err)

	// Expect GetByID to be called during Validation
	mockRepo.On("GetByID", ctx, "u-1").Return(user, nil)

	u, err := svc.ValidateToken(ctx, token)
	assert.NoError(t, err)
	assert.Equal(t, "user", u.Username)

	// Test Invalid Token
	u, err = svc.ValidateToken(ctx, "fake-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.Nil(t, u)

	// Logout invalidates
	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestAuthService_ExpiredToken(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.SetSessionTTL(time.Hour)

	user := newUser(t, "u-1", "user", "pass", domain.RoleViewer)
	mockRepo.On("GetByUsername", ctx, "user").Return(user, nil)
	mockRepo.On("Save", ctx, mock.Anything).Return(nil)

	token, err := svc.Login(ctx, domain.Credentials{Username: "user", Password: "pass"})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAuthService_CreateUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo)
	ctx := context.Background()

	viewer := domain.User{Username: "newuser", Role: domain.RoleViewer}

	mockRepo.On("Save", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "newuser" && len(u.PasswordHash) > 0 && u.ID != ""
	})).Return(nil)

	err := svc.CreateUser(ctx, viewer, "password")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.CreateUser(ctx, viewer, "short"), domain.ErrInvalidPassword)
	assert.ErrorIs(t, svc.CreateUser(ctx, domain.User{Username: "x", Role: "root"}, "password"), domain.ErrInvalidRole)

	mockRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("no admin yet", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewAuthService(mockRepo)
		mockRepo.On("CountByRole", ctx, domain.RoleAdmin).Return(int64(0), nil)
		mockRepo.On("GetByUsername", ctx, "admin").Return(nil, errors.New("user not found"))
		mockRepo.On("Save", ctx, mock.MatchedBy(func(u domain.User) bool {
			return u.Username == "admin" && u.Role == domain.RoleAdmin
		})).Return(nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "changeme123")
		require.NoError(t, err)
		assert.True(t, created)
		mockRepo.AssertExpectations(t)
	})

	t.Run("admin exists", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewAuthService(mockRepo)
		mockRepo.On("CountByRole", ctx, domain.RoleAdmin).Return(int64(1), nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "changeme123")
		require.NoError(t, err)
		assert.False(t, created)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("only viewers and operators", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewAuthService(mockRepo)
		mockRepo.On("CountByRole", ctx, domain.RoleAdmin).Return(int64(0), nil)
		mockRepo.On("GetByUsername", ctx, "admin").Return(&domain.User{Username: "admin", Role: domain.RoleViewer}, nil)

		created, err := svc.EnsureAdmin(ctx, "admin", "changeme123")
		assert.ErrorIs(t, err, ErrAdminNameTaken)
		assert.False(t, created)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	svc := NewAuthService(mockRepo)
	mockRepo.On("List", ctx, domain.RoleViewer).Return([]domain.User{{Username: "watcher", Role: domain.RoleViewer}}, nil)

	users, err := svc.ListUsers(ctx, domain.RoleViewer)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "watcher", users[0].Username)

	_, err = svc.ListUsers(ctx, domain.Role("root"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
