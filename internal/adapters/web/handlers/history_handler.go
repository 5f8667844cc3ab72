package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// HistoryHandler serves finished attacks and their reports
type HistoryHandler struct {
	Service      ports.HistoryService
	Reporter     ports.AttackReporter
	AuditService ports.AuditService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service ports.HistoryService, reporter ports.AttackReporter, audit ports.AuditService) *HistoryHandler {
	return &HistoryHandler{
		Service:      service,
		Reporter:     reporter,
		AuditService: audit,
	}
}

// HandleList returns recent attacks, newest first
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.List(r.Context(), queryLimit(r, 50, 500))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"attacks": redactAll(records, r)})
}

// HandleGet returns one attack
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redact(*record, r))
}

// HandleReport renders the attack as a PDF download
func (h *HistoryHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	record, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	pdf, err := h.Reporter.ExportAttack(*record)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.AuditService != nil {
		h.AuditService.Log(r.Context(), domain.ActionReport, record.Target, "id="+id)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=wbrute_attack_%s.pdf", id))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// redact hides recovered credentials from viewers.
func redact(record domain.AttackRecord, r *http.Request) domain.AttackRecord {
	if u := domain.UserFromContext(r.Context()); u == nil || !u.CanRunAttacks() {
		if record.Credential != "" {
			record.Credential = "********"
		}
	}
	return record
}

func redactAll(records []domain.AttackRecord, r *http.Request) []domain.AttackRecord {
	out := make([]domain.AttackRecord, len(records))
	for i, rec := range records {
		out[i] = redact(rec, r)
	}
	return out
}
