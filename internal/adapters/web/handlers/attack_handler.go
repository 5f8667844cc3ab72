package handlers

import (
	"context"
	"net/http"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/services/operations"
)

// AttackOperations is the command surface used by AttackHandler.
type AttackOperations interface {
	Launch(ctx context.Context, req operations.LaunchRequest) (string, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Cancel(ctx context.Context) error
	Status(ctx context.Context) domain.AttackStatus
	Presets() []domain.AttackPreset
}

// AttackHandler drives the brute-force attack lifecycle
type AttackHandler struct {
	Service AttackOperations
}

// NewAttackHandler creates a new AttackHandler
func NewAttackHandler(service AttackOperations) *AttackHandler {
	return &AttackHandler{Service: service}
}

// HandleStart launches a new attack
func (h *AttackHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req operations.LaunchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Checked here as well so the message is explicit before anything is resolved.
	if !req.LegalAcknowledgment {
		http.Error(w, "Legal acknowledgment required", http.StatusBadRequest)
		return
	}
	if req.Target != "" && !domain.IsValidSSID(req.Target) {
		http.Error(w, "Invalid target SSID", http.StatusBadRequest)
		return
	}

	id, err := h.Service.Launch(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "status": "started"})
}

// HandlePause holds the workers before their next candidate
func (h *AttackHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Pause(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status(r.Context()))
}

// HandleResume releases paused workers
func (h *AttackHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Resume(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status(r.Context()))
}

// HandleCancel stops the active attack. Succeeds when nothing is running.
func (h *AttackHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Cancel(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Service.Status(r.Context()))
}

// HandleStatus returns the current attack snapshot
func (h *AttackHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Service.Status(r.Context())
	if u := domain.UserFromContext(r.Context()); u == nil || !u.CanRunAttacks() {
		st.CurrentCandidate = ""
		if st.Outcome != nil {
			o := *st.Outcome
			o.Candidate = ""
			st.Outcome = &o
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *AttackHandler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"presets": h.Service.Presets()})
}
