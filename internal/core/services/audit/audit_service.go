package audit

import (
	"context"
	"log/slog"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/lcalzada-xor/wbrute/internal/core/ports"
)

// Ensure interface compliance
var _ ports.AuditService = (*AuditService)(nil)

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log attributes the entry to the user carried by ctx, or to "system".
func (s *AuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	userID := "system"
	username := "system"
	if u := domain.UserFromContext(ctx); u != nil {
		userID = u.ID
		username = u.Username
	}

	entry, err := domain.NewAuditLog(userID, username, action, target, details, domain.ClientIPFromContext(ctx))
	if err != nil {
		return err
	}

	if err := s.repo.SaveAuditLog(ctx, *entry); err != nil {
		slog.Error("audit log write failed", "action", action, "target", target, "error", err)
		return err
	}
	return nil
}

func (s *AuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, limit)
}
