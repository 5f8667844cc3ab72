package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultScanSettle is how long the radio is given between triggering a scan
// and reading its results.
const DefaultScanSettle = 2 * time.Second

// Ensure interface compliance
var _ ports.DiscoveryService = (*Service)(nil)

// Service enumerates adapters and nearby networks for target selection.
// It acts as a facade over the adapter provider and the capture importer.
type Service struct {
	provider ports.AdapterProvider
	capture  ports.CaptureImporter
	audit    ports.AuditService
	settle   time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewService creates a discovery service. capture and audit may be nil.
func NewService(provider ports.AdapterProvider, capture ports.CaptureImporter, audit ports.AuditService, settle time.Duration) *Service {
	if settle < 0 {
		settle = DefaultScanSettle
	}
	return &Service{
		provider: provider,
		capture:  capture,
		audit:    audit,
		settle:   settle,
		sleep:    sleepCtx,
	}
}

// ListAdapters returns the adapters available for attacks.
func (s *Service) ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error) {
	adapters, err := s.provider.ListAdapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list adapters: %w", err)
	}
	sort.Slice(adapters, func(i, j int) bool { return adapters[i].ID < adapters[j].ID })
	return adapters, nil
}

// Resolve maps adapter IDs to handles, preserving the given order.
func (s *Service) Resolve(ctx context.Context, ids []string) ([]domain.AdapterHandle, error) {
	all, err := s.provider.ListAdapters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list adapters: %w", err)
	}
	byID := make(map[string]domain.AdapterHandle, len(all))
	for _, h := range all {
		byID[h.ID] = h
	}

	out := make([]domain.AdapterHandle, 0, len(ids))
	for _, id := range ids {
		h, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAdapterNotFound, id)
		}
		out = append(out, h)
	}
	return out, nil
}

// Scan triggers a scan on the adapter, waits for the radio to settle and
// returns the unique non-empty SSIDs it sees, sorted.
func (s *Service) Scan(ctx context.Context, adapterID string) ([]domain.Network, error) {
	ctx, span := otel.Tracer("discovery").Start(ctx, "Scan")
	defer span.End()
	span.SetAttributes(attribute.String("adapter.id", adapterID))

	handles, err := s.Resolve(ctx, []string{adapterID})
	if err != nil {
		return nil, err
	}
	adapter, err := s.provider.Open(ctx, handles[0])
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", adapterID, err)
	}

	// The first pass kicks off the scan; results show up after the settle delay.
	first, err := adapter.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", adapterID, err)
	}
	if err := s.sleep(ctx, s.settle); err != nil {
		return nil, err
	}
	second, err := adapter.Scan(ctx)
	if err != nil {
		slog.Warn("scan refresh failed, using first pass", "adapter", adapterID, "error", err)
		second = nil
	}

	ssids := UniqueSSIDs(append(first, second...))
	networks := make([]domain.Network, 0, len(ssids))
	for _, ssid := range ssids {
		networks = append(networks, domain.Network{SSID: ssid, Source: domain.NetworkSourceScan})
	}
	span.SetAttributes(attribute.Int("networks.count", len(networks)))

	if s.audit != nil {
		s.audit.Log(ctx, domain.ActionScan, adapterID, fmt.Sprintf("%d networks", len(networks)))
	}
	return networks, nil
}

// ImportCapture reads target networks from a pcap file.
func (s *Service) ImportCapture(ctx context.Context, path string) ([]domain.Network, error) {
	if s.capture == nil {
		return nil, errors.New("capture import not available")
	}
	networks, err := s.capture.ImportFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		s.audit.Log(ctx, domain.ActionImport, path, fmt.Sprintf("%d networks", len(networks)))
	}
	return networks, nil
}

// UniqueSSIDs trims, drops empty names and duplicates, and sorts.
func UniqueSSIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, ssid := range raw {
		ssid = strings.TrimSpace(ssid)
		if ssid == "" {
			continue
		}
		if _, dup := seen[ssid]; dup {
			continue
		}
		seen[ssid] = struct{}{}
		out = append(out, ssid)
	}
	sort.Strings(out)
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
