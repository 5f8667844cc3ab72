package storage

import (
	"encoding/json"
	"log"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// toDomain converts a database model to a domain entity.
func toDomain(m AttackRecordModel) *domain.AttackRecord {
	var adapters []string
	if m.Adapters != "" {
		if err := json.Unmarshal([]byte(m.Adapters), &adapters); err != nil {
			log.Printf("[STORAGE] attack %s: bad adapters column: %v", m.ID, err)
		}
	}

	return &domain.AttackRecord{
		ID:              m.ID,
		Target:          m.Target,
		Hidden:          m.Hidden,
		Mode:            domain.AdapterMode(m.Mode),
		Adapters:        adapters,
		CandidateSource: m.CandidateSource,
		TotalAttempts:   m.TotalAttempts,
		Completed:       m.Completed,
		Outcome:         domain.OutcomeKind(m.Outcome),
		Credential:      m.Credential,
		WinningAdapter:  m.WinningAdapter,
		StartedBy:       m.StartedBy,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
	}
}

// toModel converts a domain entity to a database model.
func toModel(r domain.AttackRecord) AttackRecordModel {
	adapters, _ := json.Marshal(r.Adapters)
	return AttackRecordModel{
		ID:              r.ID,
		Target:          r.Target,
		Hidden:          r.Hidden,
		Mode:            string(r.Mode),
		Adapters:        string(adapters),
		CandidateSource: r.CandidateSource,
		TotalAttempts:   r.TotalAttempts,
		Completed:       r.Completed,
		Outcome:         string(r.Outcome),
		Credential:      r.Credential,
		WinningAdapter:  r.WinningAdapter,
		StartedBy:       r.StartedBy,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
	}
}
