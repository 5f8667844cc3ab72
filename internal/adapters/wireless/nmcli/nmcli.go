package nmcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// DefaultProfilePrefix names the connection profiles this tool owns.
// ClearProfiles never touches profiles without it.
const DefaultProfilePrefix = "wbrute-"

// execCmd allows mocking exec.CommandContext in tests
var execCmd = exec.CommandContext

// Ensure interface compliance
var (
	_ ports.AdapterProvider = (*Provider)(nil)
	_ ports.WirelessAdapter = (*Adapter)(nil)
)

// Provider enumerates Wi-Fi devices managed by NetworkManager.
type Provider struct {
	path   string
	prefix string
}

// NewProvider creates a provider. Empty arguments select the defaults.
func NewProvider(nmcliPath, profilePrefix string) *Provider {
	if nmcliPath == "" {
		nmcliPath = "nmcli"
	}
	if profilePrefix == "" {
		profilePrefix = DefaultProfilePrefix
	}
	return &Provider{path: nmcliPath, prefix: profilePrefix}
}

// HealthCheck verifies that nmcli is installed.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := exec.LookPath(p.path); err != nil {
		return fmt.Errorf("%s not found (install NetworkManager)", p.path)
	}
	return nil
}

// ListAdapters returns every managed Wi-Fi device.
func (p *Provider) ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error) {
	out, err := run(ctx, p.path, "-t", "-f", "DEVICE,TYPE,STATE", "device")
	if err != nil {
		return nil, err
	}

	var handles []domain.AdapterHandle
	for _, line := range lines(out) {
		fields := splitTerse(line)
		if len(fields) < 3 || fields[1] != "wifi" {
			continue
		}
		if strings.HasPrefix(fields[2], "unmanaged") {
			continue
		}
		handles = append(handles, domain.AdapterHandle{ID: fields[0], Name: fields[0]})
	}
	return handles, nil
}

// Open returns an adapter bound to the device named by h.ID.
func (p *Provider) Open(ctx context.Context, h domain.AdapterHandle) (ports.WirelessAdapter, error) {
	if !domain.IsValidInterface(h.ID) {
		return nil, fmt.Errorf("invalid interface name %q", h.ID)
	}
	handles, err := p.ListAdapters(ctx)
	if err != nil {
		return nil, err
	}
	for _, candidate := range handles {
		if candidate.ID == h.ID {
			return &Adapter{device: h.ID, path: p.path, prefix: p.prefix}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", h.ID, domain.ErrAdapterGone)
}

// Adapter drives one device through nmcli.
type Adapter struct {
	device string
	path   string
	prefix string

	mu      sync.Mutex
	seq     int
	pending *exec.Cmd
}

func (a *Adapter) Name() string {
	return a.device
}

// Scan requests a rescan and lists the SSIDs NetworkManager currently knows.
// A refused rescan (NetworkManager rate-limits them) still returns the cached list.
func (a *Adapter) Scan(ctx context.Context) ([]string, error) {
	if _, err := a.nmcli(ctx, "device", "wifi", "rescan", "ifname", a.device); err != nil {
		if errors.Is(err, domain.ErrAdapterGone) {
			return nil, err
		}
		log.Printf("[NMCLI] rescan on %s refused: %v", a.device, err)
	}

	out, err := a.nmcli(ctx, "-t", "-f", "SSID", "device", "wifi", "list", "ifname", a.device, "--rescan", "no")
	if err != nil {
		return nil, err
	}

	var ssids []string
	for _, line := range lines(out) {
		if fields := splitTerse(line); len(fields) > 0 && fields[0] != "" {
			ssids = append(ssids, fields[0])
		}
	}
	return ssids, nil
}

// ClearProfiles deletes the connection profiles this adapter created.
// Profiles of sibling devices are left alone; their workers may be activating them.
func (a *Adapter) ClearProfiles(ctx context.Context) error {
	out, err := a.nmcli(ctx, "-t", "-f", "NAME", "connection", "show")
	if err != nil {
		return err
	}
	owned := a.profilePrefix()
	for _, line := range lines(out) {
		fields := splitTerse(line)
		if len(fields) == 0 || !strings.HasPrefix(fields[0], owned) {
			continue
		}
		if _, err := a.nmcli(ctx, "connection", "delete", "id", fields[0]); err != nil {
			return fmt.Errorf("delete profile %s: %w", fields[0], err)
		}
	}
	return nil
}

func (a *Adapter) profilePrefix() string {
	return a.prefix + a.device + "-"
}

// AddProfile creates a WPA2-PSK profile bound to this device.
func (a *Adapter) AddProfile(ctx context.Context, profile domain.Profile) (domain.ProfileHandle, error) {
	a.mu.Lock()
	a.seq++
	name := a.profilePrefix() + strconv.Itoa(a.seq)
	a.mu.Unlock()

	hidden := "no"
	if profile.Hidden {
		hidden = "yes"
	}

	args := []string{
		"connection", "add",
		"type", "wifi",
		"ifname", a.device,
		"con-name", name,
		"ssid", profile.SSID,
		"connection.autoconnect", "no",
		"802-11-wireless.hidden", hidden,
		"wifi-sec.key-mgmt", keyMgmt(profile.AKM),
		"wifi-sec.auth-alg", profile.Auth,
		"wifi-sec.proto", "rsn",
		"wifi-sec.pairwise", profile.Cipher,
		"wifi-sec.group", profile.Cipher,
		"wifi-sec.psk", profile.Key,
	}
	if _, err := a.nmcli(ctx, args...); err != nil {
		return domain.ProfileHandle{}, fmt.Errorf("add profile: %w", err)
	}
	return domain.ProfileHandle{ID: name, SSID: profile.SSID}, nil
}

// Connect starts activation of the profile and returns without waiting for it.
func (a *Adapter) Connect(ctx context.Context, profile domain.ProfileHandle) error {
	cmd := execCmd(ctx, a.path, "connection", "up", "id", profile.ID, "ifname", a.device)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start connection up: %w", err)
	}

	a.mu.Lock()
	a.pending = cmd
	a.mu.Unlock()

	go func() {
		// Activation failures surface through Status.
		_ = cmd.Wait()
		a.mu.Lock()
		if a.pending == cmd {
			a.pending = nil
		}
		a.mu.Unlock()
	}()
	return nil
}

// Disconnect aborts a pending activation and takes the device down.
func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	if a.pending != nil && a.pending.Process != nil {
		_ = a.pending.Process.Kill()
	}
	a.mu.Unlock()

	out, err := a.nmcli(ctx, "device", "disconnect", a.device)
	if err != nil && strings.Contains(strings.ToLower(string(out)), "not active") {
		return nil
	}
	return err
}

// Status maps the NetworkManager device state.
func (a *Adapter) Status(ctx context.Context) (domain.AdapterStatus, error) {
	out, err := a.nmcli(ctx, "-t", "-f", "GENERAL.STATE", "device", "show", a.device)
	if err != nil {
		return domain.AdapterUnknown, err
	}
	for _, line := range lines(out) {
		if v, ok := strings.CutPrefix(line, "GENERAL.STATE:"); ok {
			return parseState(v), nil
		}
	}
	return domain.AdapterUnknown, nil
}

func (a *Adapter) nmcli(ctx context.Context, args ...string) ([]byte, error) {
	out, err := run(ctx, a.path, args...)
	if err != nil && deviceMissing(out, a.device) {
		return out, fmt.Errorf("%s: %w", a.device, domain.ErrAdapterGone)
	}
	return out, err
}

func run(ctx context.Context, path string, args ...string) ([]byte, error) {
	cmd := execCmd(ctx, path, args...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return buf.Bytes(), fmt.Errorf("nmcli %s: %w: %s", args[len(args)-1], err, strings.TrimSpace(buf.String()))
	}
	return buf.Bytes(), nil
}

func deviceMissing(out []byte, device string) bool {
	msg := string(out)
	return strings.Contains(msg, "Device '"+device+"' not found") ||
		strings.Contains(msg, "No such device")
}

// parseState converts "100 (connected)" into an AdapterStatus.
func parseState(v string) domain.AdapterStatus {
	code, _, _ := strings.Cut(strings.TrimSpace(v), " ")
	n, err := strconv.Atoi(code)
	if err != nil {
		return domain.AdapterUnknown
	}
	switch {
	case n == 100:
		return domain.AdapterConnected
	case n >= 40 && n < 100:
		return domain.AdapterConnecting
	case n == 30 || n == 110 || n == 120:
		return domain.AdapterDisconnected
	case n == 10 || n == 20:
		return domain.AdapterInactive
	}
	return domain.AdapterUnknown
}

func keyMgmt(akm string) string {
	if akm == domain.AKMWPA2PSK {
		return "wpa-psk"
	}
	return akm
}

func lines(out []byte) []string {
	var res []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimRight(l, "\r"); l != "" {
			res = append(res, l)
		}
	}
	return res
}

// splitTerse splits one line of `nmcli -t` output, honoring \: and \\ escapes.
func splitTerse(line string) []string {
	var fields []string
	var cur strings.Builder
	escaped := false
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}
