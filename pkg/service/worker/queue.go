package worker

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/utils/errutil"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// Queue is a bounded FIFO processed by a single goroutine, one job at a time.
//
// Jobs live in memory only. Jobs still queued when Stop is called are dropped.
type Queue[T any] struct {
	name    string
	jobs    chan T
	handler func(ctx context.Context, job T) error

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewQueue creates a queue holding at most size pending jobs
func NewQueue[T any](name string, size int, handler func(ctx context.Context, job T) error) *Queue[T] {
	if size <= 0 {
		size = 1
	}
	return &Queue[T]{
		name:    name,
		jobs:    make(chan T, size),
		handler: handler,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Enqueue adds a job without blocking. It returns false when the queue is full.
func (q *Queue[T]) Enqueue(job T) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		logging.Default().Warn("queue full, job rejected", "queue", q.name, "capacity", cap(q.jobs))
		return false
	}
}

// Len returns the number of pending jobs
func (q *Queue[T]) Len() int {
	return len(q.jobs)
}

// Start begins consuming jobs in a background goroutine
func (q *Queue[T]) Start(ctx context.Context) error {
	q.startOnce.Do(func() {
		logging.Default().Info("queue worker starting", "queue", q.name, "capacity", cap(q.jobs))
		go q.run(ctx)
	})
	return nil
}

// Stop signals the worker to stop and waits for the current job to finish
func (q *Queue[T]) Stop() {
	q.stopOnce.Do(func() {
		logging.Default().Info("queue worker stopping", "queue", q.name)
		close(q.stopCh)
		<-q.doneCh
		if n := len(q.jobs); n > 0 {
			logging.Default().Warn("queue worker stopped with pending jobs", "queue", q.name, "pending", n)
		}
		logging.Default().Info("queue worker stopped", "queue", q.name)
	})
}

func (q *Queue[T]) run(ctx context.Context) {
	defer close(q.doneCh)

	for {
		select {
		case job := <-q.jobs:
			q.process(ctx, job)

		case <-q.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("queue worker context cancelled", "queue", q.name)
			return
		}
	}
}

func (q *Queue[T]) process(ctx context.Context, job T) {
	defer func() {
		if r := recover(); r != nil {
			_ = errutil.Handle(ctx, goerr.New("panic in queue handler", goerr.V("queue", q.name), goerr.V("panic", r)), "queue job panicked")
		}
	}()

	if err := q.handler(ctx, job); err != nil {
		_ = errutil.Handle(ctx, err, "queue job failed")
	}
}
