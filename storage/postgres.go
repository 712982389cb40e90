package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cyleria_watcher/models"
)

// PostgresStore backs the same Store interface with a pgx pool, for
// deployments where the daemon does not own local disk.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	config.MaxConns = 5
	config.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
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
		last_refresh TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS notifications (
		name TEXT NOT NULL,
		available TEXT NOT NULL,
		tier TEXT NOT NULL,
		notified_at TIMESTAMPTZ,
		UNIQUE(name, available, tier)
	);

	CREATE TABLE IF NOT EXISTS refresh_runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ,
		finished_at TIMESTAMPTZ,
		status TEXT,
		houses_found INTEGER DEFAULT 0,
		houses_active INTEGER DEFAULT 0,
		houses_inactive INTEGER DEFAULT 0,
		lookup_failures INTEGER DEFAULT 0,
		error TEXT DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_houses_status ON houses(status);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return err
	}

	past := time.Now().Add(-initialRefreshBackdate)
	_, err := s.pool.Exec(ctx, `
		INSERT INTO meta (id, last_refresh) VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING`, past)
	return err
}

func (s *PostgresStore) ReplaceHouses(ctx context.Context, houses []models.House, refreshedAt time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM houses`); err != nil {
		return fmt.Errorf("clear houses: %w", err)
	}

	for _, h := range houses {
		_, err := tx.Exec(ctx, `
			INSERT INTO houses (name, city, size, owner, image, days, available, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (name) DO UPDATE SET
				city = EXCLUDED.city, size = EXCLUDED.size, owner = EXCLUDED.owner,
				image = EXCLUDED.image, days = EXCLUDED.days,
				available = EXCLUDED.available, status = EXCLUDED.status`,
			h.Name, h.City, h.Size, h.Owner, h.Image, h.Days, h.Available, h.Status)
		if err != nil {
			return fmt.Errorf("insert house %s: %w", h.Name, err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE meta SET last_refresh = $1 WHERE id = 1`, refreshedAt); err != nil {
		return fmt.Errorf("update meta: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListHouses(ctx context.Context) ([]models.House, error) {
	return s.queryHouses(ctx, `
		SELECT name, city, size, owner, image, days, available, status
		FROM houses ORDER BY name`)
}

func (s *PostgresStore) ActiveHouses(ctx context.Context) ([]models.House, error) {
	return s.queryHouses(ctx, `
		SELECT name, city, size, owner, image, days, available, status
		FROM houses WHERE status = '`+string(models.StatusActive)+`' ORDER BY name`)
}

func (s *PostgresStore) queryHouses(ctx context.Context, query string) ([]models.House, error) {
	rows, err := s.pool.Query(ctx, query)
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

func (s *PostgresStore) LastRefresh(ctx context.Context) (time.Time, error) {
	var last time.Time
	err := s.pool.QueryRow(ctx, `SELECT last_refresh FROM meta WHERE id = 1`).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	return last, err
}

func (s *PostgresStore) WasNotified(ctx context.Context, name, available string, tier models.Tier) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx, `
		SELECT 1 FROM notifications WHERE name = $1 AND available = $2 AND tier = $3`,
		name, available, tier).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) MarkNotified(ctx context.Context, rec models.NotificationRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (name, available, tier, notified_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name, available, tier) DO UPDATE SET notified_at = EXCLUDED.notified_at`,
		rec.Name, rec.Available, rec.Tier, rec.NotifiedAt)
	return err
}

func (s *PostgresStore) CreateRefreshRun(ctx context.Context, run *models.RefreshRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_runs (id, started_at, status) VALUES ($1, $2, $3)`,
		run.ID, run.StartedAt, run.Status)
	return err
}

func (s *PostgresStore) FinishRefreshRun(ctx context.Context, run *models.RefreshRun) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE refresh_runs
		SET finished_at = $1, status = $2, houses_found = $3, houses_active = $4,
			houses_inactive = $5, lookup_failures = $6, error = $7
		WHERE id = $8`,
		run.FinishedAt, run.Status, run.HousesFound, run.HousesActive,
		run.HousesInactive, run.LookupFailures, run.Error, run.ID)
	return err
}
