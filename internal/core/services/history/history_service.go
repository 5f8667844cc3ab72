package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"github.com/lcalzada-xor/wbrute/internal/core/services/bruteforce"
)

const defaultListLimit = 50

// Ensure interface compliance
var _ ports.HistoryService = (*Service)(nil)

// Service keeps the record of finished attacks.
type Service struct {
	repo  ports.AttackRepository
	audit ports.AuditService
}

// NewService creates a history service. audit may be nil.
func NewService(repo ports.AttackRepository, audit ports.AuditService) *Service {
	return &Service{repo: repo, audit: audit}
}

// Record is a bruteforce.FinishHook: it persists the attack and audits its outcome.
func (s *Service) Record(ctx context.Context, finished bruteforce.FinishedAttack) {
	record := NewRecord(finished)

	if err := s.repo.SaveAttack(ctx, record); err != nil {
		slog.Error("failed to save attack record", "attack", record.ID, "error", err)
	}

	if s.audit == nil {
		return
	}
	details := fmt.Sprintf("id=%s outcome=%s attempts=%d", record.ID, record.Outcome, finished.Outcome.Attempts)
	s.audit.Log(ctx, domain.ActionAttackFinish, record.Target, details)
	if record.Outcome == domain.OutcomeSuccess {
		s.audit.Log(ctx, domain.ActionCredentialFound, record.Target, "adapter="+record.WinningAdapter)
	}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.AttackRecord, error) {
	return s.repo.GetAttack(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]domain.AttackRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListAttacks(ctx, limit)
}

// NewRecord flattens a finished attack into its persisted summary.
func NewRecord(finished bruteforce.FinishedAttack) domain.AttackRecord {
	req := finished.Request
	adapters := make([]string, 0, len(req.Adapters))
	for _, a := range req.Adapters {
		adapters = append(adapters, a.ID)
	}

	source := req.Primary.Source()
	if list, _, err := req.EffectiveCandidates(); err == nil {
		source = list.Source()
	}

	record := domain.AttackRecord{
		ID:              finished.ID,
		Target:          req.Target,
		Hidden:          req.Hidden,
		Mode:            req.Mode,
		Adapters:        adapters,
		CandidateSource: source,
		TotalAttempts:   finished.Progress.Total,
		Completed:       finished.Progress.Completed,
		Outcome:         finished.Outcome.Kind,
		StartedBy:       finished.StartedBy,
		StartTime:       finished.StartTime.UTC(),
		EndTime:         finished.EndTime.UTC(),
	}
	if finished.Outcome.Succeeded() {
		record.Credential = finished.Outcome.Candidate
		record.WinningAdapter = finished.Outcome.Adapter.ID
	}
	return record
}
