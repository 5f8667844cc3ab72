package candidates

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lcalzada-xor/wbrute/internal/core/domain"
	_ "github.com/mattn/go-sqlite3"
)

// WordlistInfo summarizes one stored wordlist.
type WordlistInfo struct {
	Name    string
	Entries int
}

// WordlistDB stores named, ordered wordlists in a SQLite file so large lists
// can be reused without re-uploading them.
type WordlistDB struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool

	loadStmt *sql.Stmt
}

// OpenWordlistDB opens (and creates if needed) the wordlist database.
func OpenWordlistDB(path string) (*WordlistDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping wordlist db: %w", err)
	}

	w := &WordlistDB{db: db}
	if err := w.initializeSchema(); err != nil {
		db.Close()
		return nil, err
	}

	stmt, err := db.Prepare("SELECT candidate FROM wordlist_entries WHERE list = ? ORDER BY position")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare load statement: %w", err)
	}
	w.loadStmt = stmt
	return w, nil
}

func (w *WordlistDB) initializeSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS wordlist_entries (
		list TEXT NOT NULL,
		position INTEGER NOT NULL,
		candidate TEXT NOT NULL,
		PRIMARY KEY (list, position)
	);
	`
	if _, err := w.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Store replaces the named wordlist with entries, keeping their order.
func (w *WordlistDB) Store(ctx context.Context, name string, entries []string) error {
	if err := w.check(); err != nil {
		return err
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM wordlist_entries WHERE list = ?", name); err != nil {
		return fmt.Errorf("clear wordlist: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO wordlist_entries (list, position, candidate) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, name, i, e); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Load returns the named wordlist in stored order.
func (w *WordlistDB) Load(ctx context.Context, name string) (domain.CandidateList, error) {
	if err := w.check(); err != nil {
		return domain.CandidateList{}, err
	}

	rows, err := w.loadStmt.QueryContext(ctx, name)
	if err != nil {
		return domain.CandidateList{}, fmt.Errorf("query wordlist: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return domain.CandidateList{}, err
		}
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return domain.CandidateList{}, err
	}
	return finish(KindDB, dbPrefix+name, entries), nil
}

// Lists returns the stored wordlists and their sizes.
func (w *WordlistDB) Lists(ctx context.Context) ([]WordlistInfo, error) {
	if err := w.check(); err != nil {
		return nil, err
	}
	rows, err := w.db.QueryContext(ctx, "SELECT list, COUNT(*) FROM wordlist_entries GROUP BY list ORDER BY list")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WordlistInfo
	for rows.Next() {
		var info WordlistInfo
		if err := rows.Scan(&info.Name, &info.Entries); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (w *WordlistDB) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.loadStmt != nil {
		w.loadStmt.Close()
	}
	return w.db.Close()
}

func (w *WordlistDB) check() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return fmt.Errorf("wordlist db closed")
	}
	return nil
}
