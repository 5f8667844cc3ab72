package domain

import (
	"context"
	"errors"
	"time"
)

// AuditAction represents a type-safe action identifier for the audit log.
type AuditAction string

// System Audit Actions
const (
	ActionLogin           AuditAction = "LOGIN"
	ActionLogout          AuditAction = "LOGOUT"
	ActionScan            AuditAction = "SCAN_INITIATED"
	ActionImport          AuditAction = "CAPTURE_IMPORTED"
	ActionAttackStart     AuditAction = "ATTACK_STARTED"
	ActionAttackPause     AuditAction = "ATTACK_PAUSED"
	ActionAttackResume    AuditAction = "ATTACK_RESUMED"
	ActionAttackCancel    AuditAction = "ATTACK_CANCELLED"
	ActionAttackFinish    AuditAction = "ATTACK_FINISHED"
	ActionCredentialFound AuditAction = "CREDENTIAL_FOUND"
	ActionReport          AuditAction = "REPORT_GENERATED"
	ActionInfo            AuditAction = "INFO"
)

// Domain Errors
var (
	ErrInvalidAction = errors.New("invalid audit action")
	ErrMissingUser   = errors.New("user identification is required for auditing")
)

// AuditLog represents a record of a critical system action.
// This is a pure domain entity, decoupled from persistence (GORM) or transport (JSON) constraints
// where possible, although JSON tags are kept for API compatibility.
type AuditLog struct {
	ID        uint        `json:"id"`
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"` // Denormalized for display/reporting
	Action    AuditAction `json:"action"`
	Target    string      `json:"target"` // The resource affected (SSID, attack ID, adapter)
	Details   string      `json:"details"`
	IPAddress string      `json:"ip_address"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewAuditLog is the designated factory for creating valid AuditLog entities.
// It ensures that all required invariant rules are satisfied.
func NewAuditLog(userID, username string, action AuditAction, target, details, ip string) (*AuditLog, error) {
	if userID == "" && username == "" {
		return nil, ErrMissingUser
	}

	if !isValidAction(action) {
		return nil, ErrInvalidAction
	}

	return &AuditLog{
		UserID:    userID,
		Username:  username,
		Action:    action,
		Target:    target,
		Details:   details,
		IPAddress: ip,
		Timestamp: time.Now().UTC(),
	}, nil
}

// isValidAction encapsulates the validation logic for audit actions.
func isValidAction(action AuditAction) bool {
	switch action {
	case ActionLogin, ActionLogout, ActionScan, ActionImport,
		ActionAttackStart, ActionAttackPause, ActionAttackResume, ActionAttackCancel,
		ActionAttackFinish, ActionCredentialFound, ActionReport, ActionInfo:
		return true
	}
	return false
}

type clientIPCtxKey struct{}

// ContextWithClientIP records the remote address of the request that triggered an action.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPCtxKey{}, ip)
}

func ClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPCtxKey{}).(string)
	return ip
}
