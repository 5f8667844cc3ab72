package operations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Start(ctx context.Context, req domain.AttackRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockEngine) Pause(ctx context.Context) error  { return m.Called(ctx).Error(0) }
func (m *MockEngine) Resume(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockEngine) Cancel(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *MockEngine) Status(ctx context.Context) domain.AttackStatus {
	return m.Called(ctx).Get(0).(domain.AttackStatus)
}

func (m *MockEngine) Subscribe() (<-chan domain.AttackEvent, func()) {
	ch := make(chan domain.AttackEvent)
	return ch, func() {}
}

type MockDiscovery struct {
	mock.Mock
}

func (m *MockDiscovery) Scan(ctx context.Context, adapterID string) ([]domain.Network, error) {
	args := m.Called(ctx, adapterID)
	return args.Get(0).([]domain.Network), args.Error(1)
}

func (m *MockDiscovery) ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.AdapterHandle), args.Error(1)
}

func (m *MockDiscovery) Resolve(ctx context.Context, ids []string) ([]domain.AdapterHandle, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AdapterHandle), args.Error(1)
}

func (m *MockDiscovery) ImportCapture(ctx context.Context, path string) ([]domain.Network, error) {
	args := m.Called(ctx, path)
	return args.Get(0).([]domain.Network), args.Error(1)
}

// stubCandidates serves lists from memory.
type stubCandidates map[string][]string

func (s stubCandidates) Load(ctx context.Context, ref string) (domain.CandidateList, error) {
	entries, ok := s[ref]
	if !ok {
		return domain.CandidateList{}, errors.New("open wordlist: no such file")
	}
	return domain.NewCandidateList(ref, entries), nil
}

func (s stubCandidates) Inline(name, text string) domain.CandidateList {
	return domain.NewCandidateList(name, strings.Fields(text))
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

var (
	wlan0 = domain.AdapterHandle{ID: "wlan0", Name: "wlan0"}
	wlan1 = domain.AdapterHandle{ID: "wlan1", Name: "wlan1"}
)

func newTestService(presets ...domain.AttackPreset) (*Service, *MockEngine, *MockDiscovery, *MockAudit) {
	engine := new(MockEngine)
	disc := new(MockDiscovery)
	audit := new(MockAudit)
	lists := stubCandidates{
		"top.txt":  {"alpha", "beta"},
		"db:rules": {"gamma"},
	}
	return NewService(engine, disc, lists, audit, presets), engine, disc, audit
}

func TestService_BuildDefaultsMode(t *testing.T) {
	svc, _, disc, _ := newTestService()
	disc.On("Resolve", mock.Anything, []string{"wlan0"}).Return([]domain.AdapterHandle{wlan0}, nil)
	disc.On("Resolve", mock.Anything, []string{"wlan0", "wlan1"}).Return([]domain.AdapterHandle{wlan0, wlan1}, nil)

	single, err := svc.Build(context.Background(), LaunchRequest{Target: "HomeNet", Adapters: []string{"wlan0"}, Primary: "top.txt"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeSingle, single.Mode)
	assert.Equal(t, []string{"alpha", "beta"}, single.Primary.Entries())
	assert.Nil(t, single.Secondary)

	multi, err := svc.Build(context.Background(), LaunchRequest{
		Target:        "HomeNet",
		Adapters:      []string{"wlan0", "wlan1"},
		Primary:       "top.txt",
		SecondaryText: "one\ntwo",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMultiple, multi.Mode)
	require.NotNil(t, multi.Secondary)
	assert.Equal(t, []string{"one", "two"}, multi.Secondary.Entries())
}

func TestService_BuildBlankSecondaryUsesPrimary(t *testing.T) {
	svc, _, disc, _ := newTestService()
	disc.On("Resolve", mock.Anything, []string{"wlan0", "wlan1"}).Return([]domain.AdapterHandle{wlan0, wlan1}, nil)

	req, err := svc.Build(context.Background(), LaunchRequest{
		Target:        "HomeNet",
		Adapters:      []string{"wlan0", "wlan1"},
		Primary:       "top.txt",
		SecondaryText: "\n   \n",
	})
	require.NoError(t, err)

	list, fallback, err := req.EffectiveCandidates()
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, []string{"alpha", "beta"}, list.Entries())
	assert.Equal(t, 4, req.TotalAttempts())
}

func TestService_BuildInlineWinsOverReference(t *testing.T) {
	svc, _, disc, _ := newTestService()
	disc.On("Resolve", mock.Anything, []string{"wlan0"}).Return([]domain.AdapterHandle{wlan0}, nil)

	req, err := svc.Build(context.Background(), LaunchRequest{
		Target:      "HomeNet",
		Adapters:    []string{"wlan0"},
		Primary:     "top.txt",
		PrimaryText: "typed",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"typed"}, req.Primary.Entries())
}

func TestService_BuildErrors(t *testing.T) {
	svc, _, disc, _ := newTestService()
	disc.On("Resolve", mock.Anything, []string{"wlan0"}).Return([]domain.AdapterHandle{wlan0}, nil)
	disc.On("Resolve", mock.Anything, []string{"wlan9"}).Return(nil, domain.ErrAdapterNotFound)

	tests := []struct {
		name string
		req  LaunchRequest
		want error
	}{
		{"unknown preset", LaunchRequest{Preset: "nope"}, domain.ErrUnknownPreset},
		{"unknown adapter", LaunchRequest{Target: "HomeNet", Adapters: []string{"wlan9"}, Primary: "top.txt"}, domain.ErrAdapterNotFound},
		{"missing list file", LaunchRequest{Target: "HomeNet", Adapters: []string{"wlan0"}, Primary: "missing.txt"}, domain.ErrCandidateSource},
		{"no candidates", LaunchRequest{Target: "HomeNet", Adapters: []string{"wlan0"}}, domain.ErrNoCandidates},
		{"no target", LaunchRequest{Adapters: []string{"wlan0"}, Primary: "top.txt"}, domain.ErrMissingTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Build(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, domain.IsConfigError(err))
		})
	}
}

func TestService_PresetProvidesDefaults(t *testing.T) {
	svc, _, disc, _ := newTestService(domain.AttackPreset{
		Name:      "office",
		Mode:      domain.ModeMultiple,
		Adapters:  []string{"wlan0", "wlan1"},
		Primary:   "top.txt",
		Secondary: "db:rules",
		Hidden:    true,
	})
	disc.On("Resolve", mock.Anything, []string{"wlan0", "wlan1"}).Return([]domain.AdapterHandle{wlan0, wlan1}, nil)

	req, err := svc.Build(context.Background(), LaunchRequest{Preset: "office", Target: "Corp"})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeMultiple, req.Mode)
	assert.True(t, req.Hidden)
	require.NotNil(t, req.Secondary)
	assert.Equal(t, "db:rules", req.Secondary.Source())

	assert.Len(t, svc.Presets(), 1)
}

func TestService_LaunchRequiresAcknowledgment(t *testing.T) {
	svc, engine, _, _ := newTestService()

	_, err := svc.Launch(context.Background(), LaunchRequest{Target: "HomeNet"})
	assert.ErrorIs(t, err, domain.ErrLegalAckRequired)
	engine.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
}

func TestService_LaunchStartsAndAudits(t *testing.T) {
	svc, engine, disc, audit := newTestService()
	disc.On("Resolve", mock.Anything, []string{"wlan0"}).Return([]domain.AdapterHandle{wlan0}, nil)
	engine.On("Start", mock.Anything, mock.MatchedBy(func(r domain.AttackRequest) bool {
		return r.Target == "HomeNet" && r.Primary.Len() == 2
	})).Return("attack-1", nil)
	audit.On("Log", mock.Anything, domain.ActionAttackStart, "HomeNet", mock.MatchedBy(func(d string) bool {
		return strings.Contains(d, "id=attack-1") && strings.Contains(d, "candidates=top.txt(2)")
	})).Return(nil)

	id, err := svc.Launch(context.Background(), LaunchRequest{
		Target:              "HomeNet",
		Adapters:            []string{"wlan0"},
		Primary:             "top.txt",
		LegalAcknowledgment: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "attack-1", id)
	audit.AssertExpectations(t)
}

func TestService_LaunchPropagatesEngineError(t *testing.T) {
	svc, engine, disc, audit := newTestService()
	disc.On("Resolve", mock.Anything, []string{"wlan0"}).Return([]domain.AdapterHandle{wlan0}, nil)
	engine.On("Start", mock.Anything, mock.Anything).Return("", domain.ErrAttackInProgress)

	_, err := svc.Launch(context.Background(), LaunchRequest{
		Target:              "HomeNet",
		Adapters:            []string{"wlan0"},
		Primary:             "top.txt",
		LegalAcknowledgment: true,
	})
	assert.ErrorIs(t, err, domain.ErrAttackInProgress)
	audit.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ControlCommandsAreAudited(t *testing.T) {
	svc, engine, _, audit := newTestService()
	running := domain.AttackStatus{ID: "attack-1", Phase: domain.PhaseRunning, Target: "HomeNet"}
	engine.On("Status", mock.Anything).Return(running)
	engine.On("Pause", mock.Anything).Return(nil)
	engine.On("Resume", mock.Anything).Return(nil)
	engine.On("Cancel", mock.Anything).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "HomeNet", mock.Anything).Return(nil)

	require.NoError(t, svc.Pause(context.Background()))
	require.NoError(t, svc.Resume(context.Background()))
	require.NoError(t, svc.Cancel(context.Background()))

	audit.AssertCalled(t, "Log", mock.Anything, domain.ActionAttackPause, "HomeNet", "")
	audit.AssertCalled(t, "Log", mock.Anything, domain.ActionAttackResume, "HomeNet", "")
	audit.AssertCalled(t, "Log", mock.Anything, domain.ActionAttackCancel, "HomeNet", "id=attack-1")
}

func TestService_CancelWhileIdleIsNotAudited(t *testing.T) {
	svc, engine, _, audit := newTestService()
	engine.On("Status", mock.Anything).Return(domain.AttackStatus{Phase: domain.PhaseIdle})
	engine.On("Cancel", mock.Anything).Return(nil)

	require.NoError(t, svc.Cancel(context.Background()))
	audit.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_PauseErrorSkipsAudit(t *testing.T) {
	svc, engine, _, audit := newTestService()
	engine.On("Pause", mock.Anything).Return(domain.ErrNoActiveAttack)

	assert.ErrorIs(t, svc.Pause(context.Background()), domain.ErrNoActiveAttack)
	audit.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
