package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"cyleria_watcher/config"
	"cyleria_watcher/scraper"
	"cyleria_watcher/services"
	"cyleria_watcher/storage"
)

// Scheduler drives the two background loops: the refresh loop, which runs
// the pipeline once the stored data is older than the configured max age,
// and the notifier loop, which evaluates thresholds every cycle. Both loops
// log failures and keep going; only process exit stops them.
type Scheduler struct {
	cfg       config.SchedulerConfig
	pipeline  *scraper.Pipeline
	evaluator *services.Evaluator
	store     storage.Store
	cron      *cron.Cron
	ticker    *time.Ticker
	stopCh    chan struct{}
}

func New(cfg config.SchedulerConfig, pipeline *scraper.Pipeline, evaluator *services.Evaluator, store storage.Store) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		pipeline:  pipeline,
		evaluator: evaluator,
		store:     store,
		cron:      cron.New(),
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.notifyLoop(ctx)

	if s.cfg.RefreshCron != "" {
		log.Printf("Refresh schedule: cron %q", s.cfg.RefreshCron)
		_, err := s.cron.AddFunc(s.cfg.RefreshCron, func() {
			s.refreshIfDue(ctx)
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
		return nil
	}

	log.Printf("Refresh schedule: poll every %s, refresh when older than %s",
		s.cfg.RefreshPoll, s.cfg.RefreshMaxAge)
	s.ticker = time.NewTicker(s.cfg.RefreshPoll)
	go func() {
		// initial pass so a cold start refreshes right away
		s.refreshIfDue(ctx)
		for {
			select {
			case <-s.ticker.C:
				s.refreshIfDue(ctx)
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) refreshIfDue(ctx context.Context) {
	last, err := s.store.LastRefresh(ctx)
	if err != nil {
		log.Printf("[SCHEDULER] last refresh lookup failed: %v", err)
		return
	}
	if !last.IsZero() && time.Since(last) < s.cfg.RefreshMaxAge {
		return
	}

	if err := s.pipeline.RunRefresh(ctx); err != nil {
		log.Printf("[SCHEDULER] refresh failed: %v", err)
	}
}

func (s *Scheduler) notifyLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.NotifyInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.evaluator.CheckAndNotify(ctx); err != nil {
				log.Printf("[NOTIFIER] cycle failed: %v", err)
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
