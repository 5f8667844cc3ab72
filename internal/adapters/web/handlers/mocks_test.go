package handlers

import (
	"context"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/services/operations"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) CreateUser(ctx context.Context, user domain.User, password string) error {
	return m.Called(ctx, user, password).Error(0)
}

func (m *MockAuthService) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockOperations struct {
	mock.Mock
}

func (m *MockOperations) Launch(ctx context.Context, req operations.LaunchRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockOperations) Pause(ctx context.Context) error  { return m.Called(ctx).Error(0) }
func (m *MockOperations) Resume(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockOperations) Cancel(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockOperations) Status(ctx context.Context) domain.AttackStatus {
	return m.Called(ctx).Get(0).(domain.AttackStatus)
}

func (m *MockOperations) Presets() []domain.AttackPreset {
	return m.Called().Get(0).([]domain.AttackPreset)
}

type MockDiscovery struct {
	mock.Mock
}

func (m *MockDiscovery) Scan(ctx context.Context, adapterID string) ([]domain.Network, error) {
	args := m.Called(ctx, adapterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Network), args.Error(1)
}

func (m *MockDiscovery) ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AdapterHandle), args.Error(1)
}

func (m *MockDiscovery) Resolve(ctx context.Context, ids []string) ([]domain.AdapterHandle, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.AdapterHandle), args.Error(1)
}

func (m *MockDiscovery) ImportCapture(ctx context.Context, path string) ([]domain.Network, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Network), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Get(ctx context.Context, id string) (*domain.AttackRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AttackRecord), args.Error(1)
}

func (m *MockHistory) List(ctx context.Context, limit int) ([]domain.AttackRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AttackRecord), args.Error(1)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) ExportAttack(record domain.AttackRecord) ([]byte, error) {
	args := m.Called(record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockAudit struct {
	mock.Mock
}

func (m *MockAudit) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	return m.Called(ctx, action, target, details).Error(0)
}

func (m *MockAudit) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}
