package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates a SQLiteAdapter backed by a throwaway file.
func setupTestDB(t *testing.T) *SQLiteAdapter {
	t.Helper()
	adapter, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "wbrute.db"))
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter
}

func sampleRecord(id string, start time.Time) domain.AttackRecord {
	return domain.AttackRecord{
		ID:              id,
		Target:          "HomeNet",
		Mode:            domain.ModeMultiple,
		Adapters:        []string{"wlan0", "wlan1"},
		CandidateSource: "top.txt",
		TotalAttempts:   20,
		Completed:       7,
		Outcome:         domain.OutcomeSuccess,
		Credential:      "correcthorse",
		WinningAdapter:  "wlan1",
		StartedBy:       "admin",
		StartTime:       start,
		EndTime:         start.Add(time.Minute),
	}
}

func TestAttackRepository_SaveAndGet(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, adapter.SaveAttack(ctx, sampleRecord("atk-1", start)))

	got, err := adapter.GetAttack(ctx, "atk-1")
	require.NoError(t, err)
	assert.Equal(t, "HomeNet", got.Target)
	assert.Equal(t, []string{"wlan0", "wlan1"}, got.Adapters)
	assert.Equal(t, domain.OutcomeSuccess, got.Outcome)
	assert.Equal(t, "correcthorse", got.Credential)
	assert.Equal(t, time.Minute, got.Duration())
}

func TestAttackRepository_NotFound(t *testing.T) {
	adapter := setupTestDB(t)

	_, err := adapter.GetAttack(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAttackNotFound)
}

func TestAttackRepository_SaveUpdates(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()
	rec := sampleRecord("atk-1", time.Now().UTC())

	require.NoError(t, adapter.SaveAttack(ctx, rec))
	rec.Completed = 20
	rec.Outcome = domain.OutcomeExhausted
	rec.Credential = ""
	require.NoError(t, adapter.SaveAttack(ctx, rec))

	got, err := adapter.GetAttack(ctx, "atk-1")
	require.NoError(t, err)
	assert.Equal(t, 20, got.Completed)
	assert.Equal(t, domain.OutcomeExhausted, got.Outcome)
	assert.Empty(t, got.Credential)
}

func TestAttackRepository_ListNewestFirst(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, adapter.SaveAttack(ctx, sampleRecord(fmt.Sprintf("atk-%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	got, err := adapter.ListAttacks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "atk-4", got[0].ID)
	assert.Equal(t, "atk-2", got[2].ID)
}

func TestUserRepository(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()

	user := domain.User{ID: "u-1", Username: "operator", PasswordHash: "hash", Role: domain.RoleOperator}
	require.NoError(t, adapter.Save(ctx, user))

	byName, err := adapter.GetByUsername(ctx, "operator")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	user.Role = domain.RoleAdmin
	require.NoError(t, adapter.Save(ctx, user))
	byID, err := adapter.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, byID.Role)

	_, err = adapter.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	users, err := adapter.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 1)

	assert.ErrorIs(t, adapter.Save(ctx, domain.User{ID: "u-x", Username: "x", Role: "root"}), domain.ErrInvalidRole)
}

func TestUserRepository_RoleQueries(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()

	for _, u := range []domain.User{
		{ID: "u-1", Username: "zoe", PasswordHash: "h", Role: domain.RoleViewer},
		{ID: "u-2", Username: "amir", PasswordHash: "h", Role: domain.RoleOperator},
		{ID: "u-3", Username: "bea", PasswordHash: "h", Role: domain.RoleViewer},
	} {
		require.NoError(t, adapter.Save(ctx, u))
	}

	admins, err := adapter.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, admins)

	viewers, err := adapter.List(ctx, domain.RoleViewer)
	require.NoError(t, err)
	require.Len(t, viewers, 2)
	assert.Equal(t, "bea", viewers[0].Username)
	assert.Equal(t, "zoe", viewers[1].Username)

	all, err := adapter.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "amir", all[0].Username)

	n, err := adapter.CountByRole(ctx, domain.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAuditRepository(t *testing.T) {
	adapter := setupTestDB(t)
	ctx := context.Background()

	for i, action := range []domain.AuditAction{domain.ActionLogin, domain.ActionAttackStart, domain.ActionAttackFinish} {
		entry, err := domain.NewAuditLog("u-1", "admin", action, "HomeNet", "", "127.0.0.1")
		require.NoError(t, err)
		entry.Timestamp = entry.Timestamp.Add(time.Duration(i) * time.Second)
		require.NoError(t, adapter.SaveAuditLog(ctx, *entry))
	}

	logs, err := adapter.ListAuditLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionAttackFinish, logs[0].Action)
	assert.Equal(t, domain.ActionAttackStart, logs[1].Action)
}
