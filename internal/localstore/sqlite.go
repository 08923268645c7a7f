package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps collections in a single key/value table. Used for
// single-node installs where Redis is not available.
type SQLite struct {
	db      *sql.DB
	getStmt *sql.Stmt
	setStmt *sql.Stmt
	nxStmt  *sql.Stmt
	delStmt *sql.Stmt
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db path: %w", err)
	}

	// WAL with NORMAL sync; busy_timeout waits on locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", filepath.Clean(dbPath))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLite{db: db}
	if s.getStmt, err = db.Prepare(`SELECT value FROM kv WHERE key = ?`); err != nil {
		_ = s.Close()
		return nil, err
	}
	if s.setStmt, err = db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`); err != nil {
		_ = s.Close()
		return nil, err
	}
	if s.nxStmt, err = db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`); err != nil {
		_ = s.Close()
		return nil, err
	}
	if s.delStmt, err = db.Prepare(`DELETE FROM kv WHERE key = ?`); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error {
	for _, st := range []*sql.Stmt{s.getStmt, s.setStmt, s.nxStmt, s.delStmt} {
		if st != nil {
			_ = st.Close()
		}
	}
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.setStmt.ExecContext(ctx, key, value, time.Now().Unix())
	return err
}

func (s *SQLite) SetNX(ctx context.Context, key, value string) (bool, error) {
	res, err := s.nxStmt.ExecContext(ctx, key, value, time.Now().Unix())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.delStmt.ExecContext(ctx, key)
	return err
}
