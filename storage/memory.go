package storage

import (
	"context"
	"sync"
	"time"

	"cyleria_watcher/models"
)

// MemoryStore keeps everything in process memory. Used by tests and handy
// for running the daemon without persistence.
type MemoryStore struct {
	mu          sync.RWMutex
	houses      []models.House
	lastRefresh time.Time
	notified    map[string]models.NotificationRecord
	runs        map[string]models.RefreshRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lastRefresh: time.Now().Add(-initialRefreshBackdate),
		notified:    make(map[string]models.NotificationRecord),
		runs:        make(map[string]models.RefreshRun),
	}
}

func (s *MemoryStore) Close() error { return nil }

func ledgerKey(name, available string, tier models.Tier) string {
	return name + "\x00" + available + "\x00" + string(tier)
}

func (s *MemoryStore) ReplaceHouses(_ context.Context, houses []models.House, refreshedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.houses = append([]models.House(nil), houses...)
	s.lastRefresh = refreshedAt
	return nil
}

func (s *MemoryStore) ListHouses(_ context.Context) ([]models.House, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.House(nil), s.houses...), nil
}

func (s *MemoryStore) ActiveHouses(_ context.Context) ([]models.House, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var active []models.House
	for _, h := range s.houses {
		if h.Status == models.StatusActive {
			active = append(active, h)
		}
	}
	return active, nil
}

func (s *MemoryStore) LastRefresh(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, nil
}

func (s *MemoryStore) WasNotified(_ context.Context, name, available string, tier models.Tier) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.notified[ledgerKey(name, available, tier)]
	return ok, nil
}

func (s *MemoryStore) MarkNotified(_ context.Context, rec models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified[ledgerKey(rec.Name, rec.Available, rec.Tier)] = rec
	return nil
}

func (s *MemoryStore) CreateRefreshRun(_ context.Context, run *models.RefreshRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

func (s *MemoryStore) FinishRefreshRun(_ context.Context, run *models.RefreshRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}
