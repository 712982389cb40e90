package scheduler

import (
	"context"
	"testing"
	"time"

	"cyleria_watcher/config"
	"cyleria_watcher/models"
	"cyleria_watcher/scraper"
	"cyleria_watcher/services"
	"cyleria_watcher/storage"
)

type countingListings struct {
	calls int
}

func (c *countingListings) FetchListing(context.Context) ([]models.Listing, error) {
	c.calls++
	return []models.Listing{{Name: "House", City: "Ankardia", Owner: "None"}}, nil
}

type noLogins struct{}

func (noLogins) FetchLastLogin(context.Context, string) (*time.Time, error) {
	return nil, nil
}

func newScheduler(store storage.Store, listings *countingListings) *Scheduler {
	pipeline := scraper.NewPipeline(listings, noLogins{}, store)
	evaluator := services.NewEvaluator(store, nil, nil)
	cfg := config.SchedulerConfig{
		RefreshPoll:    time.Hour,
		RefreshMaxAge:  12 * time.Hour,
		NotifyInterval: time.Hour,
	}
	return New(cfg, pipeline, evaluator, store)
}

func TestRefreshIfDue(t *testing.T) {
	store := storage.NewMemoryStore() // seeded stale, so the first check is due
	listings := &countingListings{}
	s := newScheduler(store, listings)

	s.refreshIfDue(context.Background())
	if listings.calls != 1 {
		t.Fatalf("stale data should trigger a refresh, got %d calls", listings.calls)
	}

	// fresh now, the next check is a no-op
	s.refreshIfDue(context.Background())
	if listings.calls != 1 {
		t.Fatalf("fresh data should not refresh again, got %d calls", listings.calls)
	}
}

func TestRefreshIfDue_RespectsMaxAge(t *testing.T) {
	store := storage.NewMemoryStore()
	listings := &countingListings{}
	s := newScheduler(store, listings)

	if err := store.ReplaceHouses(context.Background(), nil, time.Now().Add(-13*time.Hour)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s.refreshIfDue(context.Background())
	if listings.calls != 1 {
		t.Fatalf("13h-old data should refresh, got %d calls", listings.calls)
	}
}

func TestInvalidCron(t *testing.T) {
	store := storage.NewMemoryStore()
	s := newScheduler(store, &countingListings{})
	s.cfg.RefreshCron = "not a cron"

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected an error for a bad cron expression")
	}
	s.Stop()
}
