package domain

import "time"

// EventType names the notifications the core publishes while an attack runs.
type EventType string

const (
	EventAttackStarted   EventType = "attack.started"
	EventAttackWarning   EventType = "attack.warning"
	EventAttackPaused    EventType = "attack.paused"
	EventAttackResumed   EventType = "attack.resumed"
	EventAttackFinished  EventType = "attack.finished"
	EventAttemptStarted  EventType = "attempt.started"
	EventAttemptFailed   EventType = "attempt.failed"
	EventCredentialFound EventType = "credential.found"
	EventWorkerStopped   EventType = "worker.stopped"
	EventWorkerExhausted EventType = "worker.exhausted"
	EventWorkerFailed    EventType = "worker.failed"
)

// AttackEvent flows one way, from the core to presentation.
type AttackEvent struct {
	Type           EventType      `json:"type"`
	AttackID       string         `json:"attack_id"`
	Time           time.Time      `json:"time"`
	Adapter        string         `json:"adapter,omitempty"`
	CandidateIndex int            `json:"candidate_index"`
	Candidate      string         `json:"candidate,omitempty"`
	Message        string         `json:"message,omitempty"`
	Error          string         `json:"error,omitempty"`
	Phase          Phase          `json:"phase,omitempty"`
	Outcome        *AttackOutcome `json:"outcome,omitempty"`
}

// NewAttackEvent stamps an event with the current time.
func NewAttackEvent(attackID string, typ EventType) AttackEvent {
	return AttackEvent{
		Type:           typ,
		AttackID:       attackID,
		Time:           time.Now().UTC(),
		CandidateIndex: -1,
	}
}
