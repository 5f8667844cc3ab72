package storage

import (
	"context"
	"errors"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
	"gorm.io/gorm"
)

// Ensure interface compliance
var _ ports.AttackRepository = (*SQLiteAdapter)(nil)

// SaveAttack creates or replaces an attack record.
func (a *SQLiteAdapter) SaveAttack(ctx context.Context, record domain.AttackRecord) error {
	model := toModel(record)
	return a.db.WithContext(ctx).Save(&model).Error
}

func (a *SQLiteAdapter) GetAttack(ctx context.Context, id string) (*domain.AttackRecord, error) {
	var model AttackRecordModel
	if err := a.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAttackNotFound
		}
		return nil, err
	}
	return toDomain(model), nil
}

// ListAttacks returns the most recent attacks first.
func (a *SQLiteAdapter) ListAttacks(ctx context.Context, limit int) ([]domain.AttackRecord, error) {
	var models []AttackRecordModel
	if err := a.db.WithContext(ctx).Order("start_time desc").Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	records := make([]domain.AttackRecord, len(models))
	for i, m := range models {
		records[i] = *toDomain(m)
	}
	return records, nil
}
