package simulated

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// Ensure interface compliance
var (
	_ ports.AdapterProvider = (*Provider)(nil)
	_ ports.WirelessAdapter = (*Adapter)(nil)
)

// DefaultNetworks are the access points visible in mock mode.
var DefaultNetworks = map[string]string{
	"Home_WiFi":         "correcthorse",
	"Free_Airport_WiFi": "welcome2024",
	"Starbucks":         "coffeebeans",
	"Office_Guest":      "guestguest",
}

// Provider simulates a set of adapters that all see the same access points.
type Provider struct {
	mu           sync.RWMutex
	networks     map[string]string
	adapters     map[string]*Adapter
	order        []string
	connectDelay time.Duration
	now          func() time.Time
}

// NewProvider creates adapters with the given names. networks maps SSID to its passphrase.
func NewProvider(names []string, networks map[string]string, connectDelay time.Duration) *Provider {
	if len(names) == 0 {
		names = []string{"sim0", "sim1"}
	}
	if networks == nil {
		networks = DefaultNetworks
	}
	p := &Provider{
		networks:     make(map[string]string, len(networks)),
		adapters:     make(map[string]*Adapter, len(names)),
		connectDelay: connectDelay,
		now:          time.Now,
	}
	for ssid, secret := range networks {
		p.networks[ssid] = secret
	}
	for _, name := range names {
		p.adapters[name] = &Adapter{name: name, provider: p, profiles: make(map[string]domain.Profile)}
		p.order = append(p.order, name)
	}
	log.Printf("[SIM] %d simulated adapters, %d networks", len(names), len(networks))
	return p
}

func (p *Provider) ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.AdapterHandle, 0, len(p.order))
	for _, name := range p.order {
		if a := p.adapters[name]; a != nil && !a.isRemoved() {
			out = append(out, domain.AdapterHandle{ID: name, Name: "Simulated " + name})
		}
	}
	return out, nil
}

func (p *Provider) Open(ctx context.Context, h domain.AdapterHandle) (ports.WirelessAdapter, error) {
	p.mu.RLock()
	a, ok := p.adapters[h.ID]
	p.mu.RUnlock()
	if !ok || a.isRemoved() {
		return nil, fmt.Errorf("%s: %w", h.ID, domain.ErrAdapterGone)
	}
	return a, nil
}

// Unplug makes an adapter fail every later operation with ErrAdapterGone.
func (p *Provider) Unplug(name string) {
	p.mu.RLock()
	a := p.adapters[name]
	p.mu.RUnlock()
	if a != nil {
		a.mu.Lock()
		a.removed = true
		a.mu.Unlock()
	}
}

func (p *Provider) secretFor(ssid string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.networks[ssid]
	return s, ok
}

// Adapter is one simulated radio. A connection succeeds once connectDelay has
// elapsed if the profile's key matches the network's passphrase.
type Adapter struct {
	name     string
	provider *Provider

	mu        sync.Mutex
	removed   bool
	seq       int
	profiles  map[string]domain.Profile
	active    *domain.Profile
	startedAt time.Time
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) Scan(ctx context.Context) ([]string, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	a.provider.mu.RLock()
	defer a.provider.mu.RUnlock()
	ssids := make([]string, 0, len(a.provider.networks))
	for ssid := range a.provider.networks {
		ssids = append(ssids, ssid)
	}
	sort.Strings(ssids)
	return ssids, nil
}

func (a *Adapter) ClearProfiles(ctx context.Context) error {
	if err := a.check(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profiles = make(map[string]domain.Profile)
	return nil
}

func (a *Adapter) AddProfile(ctx context.Context, profile domain.Profile) (domain.ProfileHandle, error) {
	if err := a.check(); err != nil {
		return domain.ProfileHandle{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	id := a.name + "-" + strconv.Itoa(a.seq)
	a.profiles[id] = profile
	return domain.ProfileHandle{ID: id, SSID: profile.SSID}, nil
}

func (a *Adapter) Connect(ctx context.Context, h domain.ProfileHandle) error {
	if err := a.check(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	profile, ok := a.profiles[h.ID]
	if !ok {
		return fmt.Errorf("unknown profile %s", h.ID)
	}
	a.active = &profile
	a.startedAt = a.provider.now()
	return nil
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = nil
	return nil
}

func (a *Adapter) Status(ctx context.Context) (domain.AdapterStatus, error) {
	if err := a.check(); err != nil {
		return domain.AdapterUnknown, err
	}
	a.mu.Lock()
	active := a.active
	started := a.startedAt
	a.mu.Unlock()

	if active == nil {
		return domain.AdapterDisconnected, nil
	}
	if a.provider.now().Sub(started) < a.provider.connectDelay {
		return domain.AdapterConnecting, nil
	}
	secret, ok := a.provider.secretFor(active.SSID)
	if ok && secret == active.Key {
		return domain.AdapterConnected, nil
	}
	return domain.AdapterDisconnected, nil
}

func (a *Adapter) check() error {
	if a.isRemoved() {
		return fmt.Errorf("%s: %w", a.name, domain.ErrAdapterGone)
	}
	return nil
}

func (a *Adapter) isRemoved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removed
}
