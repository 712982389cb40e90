package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"cyleria_watcher/models"
)

// SQLiteStore is the default backend. A single *sql.DB handle is shared by
// all loops; mu serializes write transactions on top of WAL so a refresh
// commit and a ledger upsert never interleave.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS houses (
		name TEXT PRIMARY KEY,
		city TEXT,
		size TEXT,
		owner TEXT,
		image TEXT,
		days INTEGER,
		available TEXT,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS meta (
		id INTEGER PRIMARY KEY,
		last_refresh DATETIME
	);

	CREATE TABLE IF NOT EXISTS notifications (
		name TEXT NOT NULL,
		available TEXT NOT NULL,
		tier TEXT NOT NULL,
		notified_at DATETIME,
		UNIQUE(name, available, tier)
	);

	CREATE TABLE IF NOT EXISTS refresh_runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		houses_found INTEGER,
		houses_active INTEGER,
		houses_inactive INTEGER,
		lookup_failures INTEGER,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_houses_status ON houses(status);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON refresh_runs(started_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.seedMeta()
}

func (s *SQLiteStore) seedMeta() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM meta`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	past := time.Now().Add(-initialRefreshBackdate)
	_, err := s.db.Exec(`INSERT INTO meta(id, last_refresh) VALUES(1, ?)`, past)
	return err
}

func (s *SQLiteStore) ReplaceHouses(ctx context.Context, houses []models.House, refreshedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM houses`); err != nil {
		return fmt.Errorf("clear houses: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO houses (name, city, size, owner, image, days, available, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range houses {
		if _, err := stmt.ExecContext(ctx, h.Name, h.City, h.Size, h.Owner, h.Image, h.Days, h.Available, h.Status); err != nil {
			return fmt.Errorf("insert house %s: %w", h.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE meta SET last_refresh = ? WHERE id = 1`, refreshedAt); err != nil {
		return fmt.Errorf("update meta: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListHouses(ctx context.Context) ([]models.House, error) {
	return s.queryHouses(ctx, `
		SELECT name, city, size, owner, image, days, available, status
		FROM houses ORDER BY name`)
}

func (s *SQLiteStore) ActiveHouses(ctx context.Context) ([]models.House, error) {
	return s.queryHouses(ctx, `
		SELECT name, city, size, owner, image, days, available, status
		FROM houses WHERE status = '`+string(models.StatusActive)+`' ORDER BY name`)
}

func (s *SQLiteStore) queryHouses(ctx context.Context, query string) ([]models.House, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var houses []models.House
	for rows.Next() {
		var h models.House
		if err := rows.Scan(&h.Name, &h.City, &h.Size, &h.Owner, &h.Image, &h.Days, &h.Available, &h.Status); err != nil {
			return nil, err
		}
		houses = append(houses, h)
	}
	return houses, rows.Err()
}

func (s *SQLiteStore) LastRefresh(ctx context.Context) (time.Time, error) {
	var last time.Time
	err := s.db.QueryRowContext(ctx, `SELECT last_refresh FROM meta WHERE id = 1`).Scan(&last)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	return last, err
}

func (s *SQLiteStore) WasNotified(ctx context.Context, name, available string, tier models.Tier) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM notifications WHERE name = ? AND available = ? AND tier = ?`,
		name, available, tier).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) MarkNotified(ctx context.Context, rec models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO notifications (name, available, tier, notified_at)
		VALUES (?, ?, ?, ?)`,
		rec.Name, rec.Available, rec.Tier, rec.NotifiedAt)
	return err
}

func (s *SQLiteStore) CreateRefreshRun(ctx context.Context, run *models.RefreshRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_runs (id, started_at, status, houses_found, houses_active, houses_inactive, lookup_failures, error)
		VALUES (?, ?, ?, 0, 0, 0, 0, '')`,
		run.ID, run.StartedAt, run.Status)
	return err
}

func (s *SQLiteStore) FinishRefreshRun(ctx context.Context, run *models.RefreshRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE refresh_runs
		SET finished_at = ?, status = ?, houses_found = ?, houses_active = ?,
			houses_inactive = ?, lookup_failures = ?, error = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.HousesFound, run.HousesActive,
		run.HousesInactive, run.LookupFailures, run.Error, run.ID)
	return err
}
