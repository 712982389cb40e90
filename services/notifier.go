package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cyleria_watcher/models"
	"cyleria_watcher/notify"
	"cyleria_watcher/storage"
)

type tierSpec struct {
	tier      models.Tier
	threshold time.Duration
	color     int
}

// Tiers are evaluated farthest-first so the 24h alert is decided before the
// 1h alert for the same house.
var tiers = []tierSpec{
	{models.Tier24h, 24 * time.Hour, models.Color24h},
	{models.Tier1h, time.Hour, models.Color1h},
}

// Evaluator walks the active houses and fires tiered alerts as their
// availability moment approaches. The notification ledger in the store keeps
// each (house, available, tier) alert to a single delivery.
type Evaluator struct {
	store    storage.Store
	notifier notify.Notifier
	cities   map[string]bool
}

// NewEvaluator builds an evaluator; cities is the notify allow-list, matched
// case-insensitively.
func NewEvaluator(store storage.Store, notifier notify.Notifier, cities []string) *Evaluator {
	set := make(map[string]bool, len(cities))
	for _, c := range cities {
		set[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return &Evaluator{store: store, notifier: notifier, cities: set}
}

// CheckAndNotify runs one evaluation cycle. Delivery failures are logged and
// left for the next cycle; storage errors abort the cycle.
func (e *Evaluator) CheckAndNotify(ctx context.Context) error {
	houses, err := e.store.ActiveHouses(ctx)
	if err != nil {
		return fmt.Errorf("load active houses: %w", err)
	}

	now := time.Now()
	for _, h := range houses {
		if !e.cities[strings.ToLower(strings.TrimSpace(h.City))] {
			continue
		}

		availableAt, ok := ParseAvailable(h.Available, now)
		if !ok {
			continue
		}
		remaining := availableAt.Sub(now)

		for _, ts := range tiers {
			// no separate 24h alert when the 1h alert is already due
			if ts.tier == models.Tier24h && remaining <= time.Hour {
				continue
			}
			if remaining > ts.threshold {
				continue
			}

			sent, err := e.store.WasNotified(ctx, h.Name, h.Available, ts.tier)
			if err != nil {
				return fmt.Errorf("ledger lookup %s/%s: %w", h.Name, ts.tier, err)
			}
			if sent {
				continue
			}

			if err := e.notifier.Send(ctx, buildMessage(h, ts, remaining)); err != nil {
				log.Printf("[NOTIFIER] delivery failed for %s (%s): %v", h.Name, ts.tier, err)
				continue
			}

			rec := models.NotificationRecord{
				Name:       h.Name,
				Available:  h.Available,
				Tier:       ts.tier,
				NotifiedAt: time.Now(),
			}
			if err := e.store.MarkNotified(ctx, rec); err != nil {
				return fmt.Errorf("ledger mark %s/%s: %w", h.Name, ts.tier, err)
			}
			log.Printf("[NOTIFIER] %s alert sent for %s (available %s)", ts.tier, h.Name, h.Available)
		}
	}

	return nil
}

func buildMessage(h models.House, ts tierSpec, remaining time.Duration) notify.Message {
	timeUntil := FormatRemaining(remaining)
	return notify.Message{
		Title:       fmt.Sprintf("[%s] Domek: %s", ts.tier, h.Name),
		Description: fmt.Sprintf("Za %s (%s) będzie do przejęcia.", timeUntil, h.Available),
		Fields: []notify.Field{
			{Name: "Miasto", Value: h.City, Inline: true},
			{Name: "Właściciel", Value: h.Owner, Inline: true},
			{Name: "Pozostało", Value: timeUntil, Inline: true},
		},
		Color:    ts.color,
		ImageURL: h.Image,
		Mention:  true,
	}
}
