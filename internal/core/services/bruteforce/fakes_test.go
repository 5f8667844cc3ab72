package bruteforce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// fastConfig keeps each failed attempt around 10ms.
var fastConfig = WorkerConfig{
	PollInterval:   2 * time.Millisecond,
	ConnectTimeout: 10 * time.Millisecond,
	SettleDelay:    0,
}

// fakeAdapter connects when the installed profile targets ssid with one of secrets.
type fakeAdapter struct {
	name    string
	ssid    string
	secrets map[string]bool

	// connectDelay slows every Connect call down.
	connectDelay time.Duration
	// goneAfter makes Connect fail with ErrAdapterGone once that many attempts were made.
	goneAfter int
	// addErrs makes AddProfile fail for specific candidates.
	addErrs map[string]error
	// onConnect is called with the candidate being connected.
	onConnect func(candidate string)
	// onConnected runs the first time Status reports a connection.
	onConnected func()

	mu          sync.Mutex
	profile     domain.Profile
	connected   bool
	notified    bool
	attempts    []string
	profiles    []domain.Profile
	clears      int
	disconnects int
}

func newFakeAdapter(name, ssid string, secrets ...string) *fakeAdapter {
	s := make(map[string]bool)
	for _, sec := range secrets {
		s[sec] = true
	}
	return &fakeAdapter{name: name, ssid: ssid, secrets: s}
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Scan(ctx context.Context) ([]string, error) {
	return []string{f.ssid}, nil
}

func (f *fakeAdapter) ClearProfiles(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.profile = domain.Profile{}
	return nil
}

func (f *fakeAdapter) AddProfile(ctx context.Context, p domain.Profile) (domain.ProfileHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.addErrs[p.Key]; ok {
		return domain.ProfileHandle{}, err
	}
	f.profile = p
	f.profiles = append(f.profiles, p)
	return domain.ProfileHandle{ID: f.name + "-profile", SSID: p.SSID}, nil
}

func (f *fakeAdapter) Connect(ctx context.Context, h domain.ProfileHandle) error {
	if f.connectDelay > 0 {
		time.Sleep(f.connectDelay)
	}

	f.mu.Lock()
	candidate := f.profile.Key
	f.attempts = append(f.attempts, candidate)
	if f.goneAfter > 0 && len(f.attempts) > f.goneAfter {
		f.mu.Unlock()
		return fmt.Errorf("%s: %w", f.name, domain.ErrAdapterGone)
	}
	f.connected = f.profile.SSID == f.ssid && f.secrets[candidate]
	hook := f.onConnect
	f.mu.Unlock()

	if hook != nil {
		hook(candidate)
	}
	return nil
}

func (f *fakeAdapter) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	f.connected = false
	return nil
}

func (f *fakeAdapter) Status(ctx context.Context) (domain.AdapterStatus, error) {
	f.mu.Lock()
	connected := f.connected
	first := connected && !f.notified
	if first {
		f.notified = true
	}
	hook := f.onConnected
	f.mu.Unlock()

	if first && hook != nil {
		hook()
	}
	if connected {
		return domain.AdapterConnected, nil
	}
	return domain.AdapterDisconnected, nil
}

func (f *fakeAdapter) Attempts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.attempts))
	copy(out, f.attempts)
	return out
}

func (f *fakeAdapter) Profiles() []domain.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Profile, len(f.profiles))
	copy(out, f.profiles)
	return out
}

func (f *fakeAdapter) Disconnects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnects
}

// fakeProvider hands out fakeAdapters by handle ID.
type fakeProvider struct {
	adapters map[string]ports.WirelessAdapter
}

func newFakeProvider(adapters ...*fakeAdapter) *fakeProvider {
	p := &fakeProvider{adapters: make(map[string]ports.WirelessAdapter)}
	for _, a := range adapters {
		p.adapters[a.name] = a
	}
	return p
}

func (p *fakeProvider) ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error) {
	var out []domain.AdapterHandle
	for id := range p.adapters {
		out = append(out, domain.AdapterHandle{ID: id, Name: id})
	}
	return out, nil
}

func (p *fakeProvider) Open(ctx context.Context, h domain.AdapterHandle) (ports.WirelessAdapter, error) {
	a, ok := p.adapters[h.ID]
	if !ok {
		return nil, errors.New("no such device")
	}
	return a, nil
}

// eventRecorder collects emitted events.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.AttackEvent
}

func (r *eventRecorder) Emit(ev domain.AttackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) Count(typ domain.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func (r *eventRecorder) Of(typ domain.EventType) []domain.AttackEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AttackEvent
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func handles(adapters ...*fakeAdapter) []domain.AdapterHandle {
	out := make([]domain.AdapterHandle, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, domain.AdapterHandle{ID: a.name, Name: a.name})
	}
	return out
}

func list(entries ...string) domain.CandidateList {
	return domain.NewCandidateList("test", entries)
}
