package storage

import (
	"fmt"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// SQLiteAdapter persists attack history, operators and the audit trail using GORM and SQLite.
type SQLiteAdapter struct {
	db *gorm.DB
}

// AttackRecordModel is the GORM model for finished attacks.
type AttackRecordModel struct {
	ID              string `gorm:"primaryKey"`
	Target          string `gorm:"index"`
	Hidden          bool
	Mode            string
	Adapters        string // JSON encoded []string
	CandidateSource string
	TotalAttempts   int
	Completed       int
	Outcome         string `gorm:"index"`
	Credential      string
	WinningAdapter  string
	StartedBy       string
	StartTime       time.Time `gorm:"index"`
	EndTime         time.Time
}

// NewSQLiteAdapter initializes the database and migrates schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newAdapter(db)
}

func newAdapter(db *gorm.DB) (*SQLiteAdapter, error) {
	// Query variables would carry passphrases and password hashes into spans.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutQueryVariables())); err != nil {
		return nil, fmt.Errorf("gorm tracing: %w", err)
	}

	if err := db.AutoMigrate(&AttackRecordModel{}, &UserModel{}, &domain.AuditLog{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_timestamp ON audit_logs(timestamp)")

	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
