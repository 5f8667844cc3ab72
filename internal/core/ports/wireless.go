package ports

import (
	"context"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// WirelessAdapter is the capability contract of one wireless adapter.
// Implementations must be safe for use by a single worker; the core never
// shares an adapter between goroutines.
type WirelessAdapter interface {
	// Name is a stable display identifier.
	Name() string
	// Scan returns the SSIDs currently visible. May fail with a transient I/O error.
	Scan(ctx context.Context) ([]string, error)
	// ClearProfiles removes stored connection profiles. Idempotent.
	ClearProfiles(ctx context.Context) error
	// AddProfile installs a profile and returns a handle for Connect.
	AddProfile(ctx context.Context, profile domain.Profile) (domain.ProfileHandle, error)
	// Connect issues a connection request and returns without waiting for the result.
	Connect(ctx context.Context, profile domain.ProfileHandle) error
	// Disconnect is idempotent and safe to call when not connected.
	Disconnect(ctx context.Context) error
	// Status is polled and must not block.
	Status(ctx context.Context) (domain.AdapterStatus, error)
}

// AdapterProvider enumerates adapters and opens them for use.
type AdapterProvider interface {
	ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error)
	Open(ctx context.Context, handle domain.AdapterHandle) (WirelessAdapter, error)
}

// NetworkScanner lists the networks visible from one adapter.
type NetworkScanner interface {
	Scan(ctx context.Context, adapterID string) ([]domain.Network, error)
}

// DiscoveryService selects adapters and targets for an attack.
type DiscoveryService interface {
	NetworkScanner
	ListAdapters(ctx context.Context) ([]domain.AdapterHandle, error)
	// Resolve maps adapter IDs to handles, preserving order.
	Resolve(ctx context.Context, ids []string) ([]domain.AdapterHandle, error)
	ImportCapture(ctx context.Context, path string) ([]domain.Network, error)
}
