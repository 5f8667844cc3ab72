package domain

import (
	"fmt"
	"time"
)

// AdapterMode selects how many adapters an attack fans out to.
type AdapterMode string

const (
	// ModeSingle drives exactly one adapter with the primary candidate list.
	ModeSingle AdapterMode = "single"
	// ModeMultiple drives every selected adapter with the same candidate list.
	ModeMultiple AdapterMode = "multiple"
)

// IsValid checks if the mode is a recognized adapter mode.
func (m AdapterMode) IsValid() bool {
	return m == ModeSingle || m == ModeMultiple
}

// AttackRequest describes one brute-force run. It is immutable once an attack starts.
type AttackRequest struct {
	Target    string          `json:"target"`
	Hidden    bool            `json:"hidden"`
	Adapters  []AdapterHandle `json:"adapters"`
	Mode      AdapterMode     `json:"mode"`
	Primary   CandidateList   `json:"-"`
	Secondary *CandidateList  `json:"-"`
}

// Validate evaluates the request against the attack rules.
func (r *AttackRequest) Validate() error {
	if r.Target == "" {
		return ErrMissingTarget
	}
	if !IsValidSSID(r.Target) {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, r.Target)
	}
	if !r.Mode.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, r.Mode)
	}
	if len(r.Adapters) == 0 {
		return ErrNoAdapters
	}
	if r.Mode == ModeSingle && len(r.Adapters) != 1 {
		return fmt.Errorf("%w: got %d", ErrTooManyAdapters, len(r.Adapters))
	}

	seen := make(map[string]struct{}, len(r.Adapters))
	for _, a := range r.Adapters {
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateAdapter, a.ID)
		}
		seen[a.ID] = struct{}{}
	}

	if _, _, err := r.EffectiveCandidates(); err != nil {
		return err
	}
	return nil
}

// EffectiveCandidates resolves the list every worker will use. The secondary list
// replaces the primary only in Multiple mode. fallback is true when Multiple mode
// had no secondary entries and the primary is used instead; an empty secondary
// counts as not loaded.
func (r *AttackRequest) EffectiveCandidates() (list CandidateList, fallback bool, err error) {
	list = r.Primary
	if r.Mode == ModeMultiple {
		if r.Secondary != nil && !r.Secondary.IsEmpty() {
			list = *r.Secondary
		} else {
			fallback = true
		}
	}
	if list.IsEmpty() {
		return CandidateList{}, false, ErrNoCandidates
	}
	return list, fallback, nil
}

// TotalAttempts is the number of attempts the attack performs when nothing connects.
func (r *AttackRequest) TotalAttempts() int {
	list, _, err := r.EffectiveCandidates()
	if err != nil {
		return 0
	}
	return list.Len() * len(r.Adapters)
}

// OutcomeKind is the terminal result class of one attack.
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeExhausted OutcomeKind = "exhausted"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// AttackOutcome is reported exactly once per attack.
type AttackOutcome struct {
	Kind      OutcomeKind   `json:"kind"`
	Candidate string        `json:"candidate,omitempty"`
	Adapter   AdapterHandle `json:"adapter,omitempty"`
	Attempts  int           `json:"attempts"`

	// WorkerErrors lists adapters whose worker ended on a fatal error.
	WorkerErrors map[string]string `json:"worker_errors,omitempty"`
}

// Succeeded is a convenience for callers that only care about the credential.
func (o AttackOutcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// AttemptOutcome is the per-candidate result of one connection trial.
type AttemptOutcome struct {
	Candidate string        `json:"candidate"`
	Adapter   AdapterHandle `json:"adapter"`
	Connected bool          `json:"connected"`
}

// Phase is the lifecycle state of the control surface.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhasePaused    Phase = "paused"
	PhaseSucceeded Phase = "succeeded"
	PhaseExhausted Phase = "exhausted"
	PhaseCancelled Phase = "cancelled"
)

// IsActive returns true while an attack is executing.
func (p Phase) IsActive() bool {
	return p == PhaseRunning || p == PhasePaused
}

// IsTerminal returns true for the end states of an attack.
func (p Phase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseExhausted || p == PhaseCancelled
}

// PhaseFor maps an outcome to its terminal phase.
func PhaseFor(kind OutcomeKind) Phase {
	switch kind {
	case OutcomeSuccess:
		return PhaseSucceeded
	case OutcomeCancelled:
		return PhaseCancelled
	default:
		return PhaseExhausted
	}
}

// AttackStatus is a read-only snapshot for presentation.
type AttackStatus struct {
	ID               string         `json:"id,omitempty"`
	Phase            Phase          `json:"phase"`
	Target           string         `json:"target,omitempty"`
	Mode             AdapterMode    `json:"mode,omitempty"`
	CurrentAdapter   string         `json:"current_adapter,omitempty"`
	CurrentCandidate string         `json:"current_candidate,omitempty"`
	Completed        int            `json:"completed"`
	Total            int            `json:"total"`
	Progress         float64        `json:"progress"`
	ETASeconds       float64        `json:"eta_seconds"`
	StartTime        time.Time      `json:"start_time,omitempty"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	Outcome          *AttackOutcome `json:"outcome,omitempty"`
}
