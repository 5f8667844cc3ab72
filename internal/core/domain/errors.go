package domain

import "errors"

// Configuration errors. Returned synchronously by Start; the attack never begins.
var (
	ErrNoAdapters       = errors.New("no adapters selected")
	ErrTooManyAdapters  = errors.New("single adapter mode requires exactly one adapter")
	ErrNoCandidates     = errors.New("no non-empty candidate list resolved")
	ErrMissingTarget    = errors.New("target network identifier is required")
	ErrInvalidTarget    = errors.New("target network identifier must be 1-32 bytes")
	ErrInvalidMode      = errors.New("invalid adapter mode")
	ErrDuplicateAdapter = errors.New("adapter selected more than once")
)

// Adapter errors.
var (
	// ErrAdapterGone marks an adapter that disappeared or became unusable.
	// It terminates the worker that owns the adapter.
	ErrAdapterGone = errors.New("adapter is no longer available")
	// ErrAdapterNotFound is returned when a selected adapter ID is not enumerated.
	ErrAdapterNotFound = errors.New("adapter not found")
)

// Launch errors. Raised while turning an operator request into an AttackRequest.
var (
	ErrUnknownPreset    = errors.New("unknown attack preset")
	ErrCandidateSource  = errors.New("candidate list could not be loaded")
	ErrLegalAckRequired = errors.New("legal acknowledgment required")
)

// Control errors.
var (
	ErrAttackInProgress = errors.New("an attack is already running")
	ErrNoActiveAttack   = errors.New("no active attack")
	ErrAttackNotFound   = errors.New("attack not found")
)

// IsConfigError reports whether err is one of the request validation errors.
// Launch errors count as configuration errors: the attack never begins.
func IsConfigError(err error) bool {
	switch {
	case errors.Is(err, ErrNoAdapters),
		errors.Is(err, ErrTooManyAdapters),
		errors.Is(err, ErrNoCandidates),
		errors.Is(err, ErrMissingTarget),
		errors.Is(err, ErrInvalidTarget),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrDuplicateAdapter),
		errors.Is(err, ErrUnknownPreset),
		errors.Is(err, ErrCandidateSource),
		errors.Is(err, ErrLegalAckRequired),
		errors.Is(err, ErrAdapterNotFound):
		return true
	}
	return false
}
