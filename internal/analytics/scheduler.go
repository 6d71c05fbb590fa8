package analytics

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and manages the trending refresh loop.
type Scheduler struct {
	cron   *cron.Cron
	worker *Worker
	spec   string // cron spec, e.g. "@every 6h"
}

// NewScheduler creates a Scheduler that fires every intervalHours hours.
func NewScheduler(worker *Worker, intervalHours int) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		worker: worker,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so /trending is populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[analytics] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[analytics] Cron stopped")
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	if err := s.worker.Run(ctx); err != nil {
		log.Printf("[analytics] Refresh error: %v", err)
	}
}
