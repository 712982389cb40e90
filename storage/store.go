package storage

import (
	"context"
	"time"

	"cyleria_watcher/models"
)

// Store is the persistence boundary shared by the refresh pipeline, the
// notification evaluator and the HTTP API. Implementations must make
// ReplaceHouses atomic: concurrent readers see either the previous or the
// new snapshot, never a mix.
type Store interface {
	// ReplaceHouses swaps the whole house set and records refreshedAt as the
	// last refresh time, in a single transaction.
	ReplaceHouses(ctx context.Context, houses []models.House, refreshedAt time.Time) error
	ListHouses(ctx context.Context) ([]models.House, error)
	ActiveHouses(ctx context.Context) ([]models.House, error)

	LastRefresh(ctx context.Context) (time.Time, error)

	WasNotified(ctx context.Context, name, available string, tier models.Tier) (bool, error)
	// MarkNotified upserts the ledger row for its (name, available, tier) key.
	MarkNotified(ctx context.Context, rec models.NotificationRecord) error

	CreateRefreshRun(ctx context.Context, run *models.RefreshRun) error
	FinishRefreshRun(ctx context.Context, run *models.RefreshRun) error

	Close() error
}

// Fresh databases get a last-refresh stamp this far in the past so the very
// first due-check triggers a refresh immediately.
const initialRefreshBackdate = 13 * time.Hour
