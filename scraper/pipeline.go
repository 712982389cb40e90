package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"cyleria_watcher/models"
	"cyleria_watcher/services"
	"cyleria_watcher/storage"
)

// Pipeline runs one refresh cycle: scrape the listing, look up each owner's
// last login, derive availability and atomically replace the stored house
// set. Per-house lookup failures degrade that house to "unknown"; a listing
// fetch failure aborts the whole cycle with the store untouched.
type Pipeline struct {
	listings ListingSource
	logins   LoginSource
	store    storage.Store
}

func NewPipeline(listings ListingSource, logins LoginSource, store storage.Store) *Pipeline {
	return &Pipeline{listings: listings, logins: logins, store: store}
}

func (p *Pipeline) RunRefresh(ctx context.Context) error {
	start := time.Now()
	run := &models.RefreshRun{
		ID:        uuid.NewString(),
		StartedAt: start,
		Status:    models.RunStatusRunning,
	}
	if err := p.store.CreateRefreshRun(ctx, run); err != nil {
		return fmt.Errorf("create refresh run: %w", err)
	}

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err := p.store.FinishRefreshRun(ctx, run); err != nil {
			log.Printf("[UPDATE] failed to finish run record: %v", err)
		}
	}()

	log.Println("[UPDATE] Refresh starting")

	listings, err := p.listings.FetchListing(ctx)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		return fmt.Errorf("fetch listing: %w", err)
	}
	run.HousesFound = len(listings)

	houses := make([]models.House, 0, len(listings))
	for _, l := range listings {
		lastLogin, err := p.logins.FetchLastLogin(ctx, l.Owner)
		if err != nil {
			// best effort: a failed lookup just means "unknown"
			log.Printf("[UPDATE] login lookup failed for %q: %v", l.Owner, err)
			run.LookupFailures++
			lastLogin = nil
		}

		avail := services.ComputeAvailability(lastLogin, time.Now())
		if avail.Status == models.StatusActive {
			run.HousesActive++
		} else {
			run.HousesInactive++
		}

		houses = append(houses, models.House{
			Name:      l.Name,
			City:      l.City,
			Size:      l.Size,
			Owner:     l.Owner,
			Image:     l.Image,
			Days:      avail.Days,
			Available: avail.Available,
			Status:    avail.Status,
		})
	}

	if err := p.store.ReplaceHouses(ctx, houses, start); err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		return fmt.Errorf("replace houses: %w", err)
	}

	run.Status = models.RunStatusCompleted
	log.Printf("[UPDATE] Refresh done: %d houses (%d active, %d inactive, %d lookup failures)",
		run.HousesFound, run.HousesActive, run.HousesInactive, run.LookupFailures)
	return nil
}
