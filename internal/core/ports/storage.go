package ports

import (
	"context"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
)

// AttackRepository persists finished attack summaries.
type AttackRepository interface {
	SaveAttack(ctx context.Context, record domain.AttackRecord) error
	GetAttack(ctx context.Context, id string) (*domain.AttackRecord, error)
	// ListAttacks returns the most recent records first.
	ListAttacks(ctx context.Context, limit int) ([]domain.AttackRecord, error)
}

// HistoryService exposes attack history to presentation.
type HistoryService interface {
	Get(ctx context.Context, id string) (*domain.AttackRecord, error)
	List(ctx context.Context, limit int) ([]domain.AttackRecord, error)
}
