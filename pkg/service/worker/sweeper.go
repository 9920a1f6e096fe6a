package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// SweepTarget is an expiring store swept by SweepWorker
type SweepTarget interface {
	// Sweep drops expired entries and returns how many were removed
	Sweep() int
}

// SweepWorker periodically drops expired entries from in-memory stores
type SweepWorker struct {
	targets  map[string]SweepTarget
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSweepWorker creates a worker sweeping every target once per interval
func NewSweepWorker(interval time.Duration, targets map[string]SweepTarget) *SweepWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SweepWorker{
		targets:  targets,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine
func (w *SweepWorker) Start(ctx context.Context) error {
	logging.Default().Info("sweep worker starting", "interval", w.interval.String(), "targets", len(w.targets))
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SweepWorker) Stop() {
	logging.Default().Info("sweep worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("sweep worker stopped")
}

func (w *SweepWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.SweepAll()

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("sweep worker context cancelled")
			return
		}
	}
}

// SweepAll sweeps every target once
func (w *SweepWorker) SweepAll() int {
	total := 0
	for name, target := range w.targets {
		n := target.Sweep()
		if n > 0 {
			logging.Default().Info("expired entries swept", "target", name, "count", n)
		}
		total += n
	}
	return total
}
