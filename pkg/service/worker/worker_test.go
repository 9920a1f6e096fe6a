package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/service/worker"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestQueue(t *testing.T) {
	t.Run("processes jobs in order", func(t *testing.T) {
		var mu sync.Mutex
		var got []int
		q := worker.NewQueue("test", 10, func(ctx context.Context, job int) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, job)
			return nil
		})
		gt.NoError(t, q.Start(context.Background())).Required()
		defer q.Stop()

		for i := range 5 {
			gt.Bool(t, q.Enqueue(i)).True()
		}
		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(got) == 5
		})

		mu.Lock()
		defer mu.Unlock()
		gt.Value(t, got).Equal([]int{0, 1, 2, 3, 4})
	})

	t.Run("rejects jobs when full", func(t *testing.T) {
		q := worker.NewQueue("test", 2, func(ctx context.Context, job int) error { return nil })
		gt.Bool(t, q.Enqueue(1)).True()
		gt.Bool(t, q.Enqueue(2)).True()
		gt.Bool(t, q.Enqueue(3)).False()
		gt.Number(t, q.Len()).Equal(2)
	})

	t.Run("keeps running after handler errors and panics", func(t *testing.T) {
		var processed atomic.Int32
		q := worker.NewQueue("test", 10, func(ctx context.Context, job int) error {
			processed.Add(1)
			switch job {
			case 0:
				return errors.New("failed")
			case 1:
				panic("boom")
			}
			return nil
		})
		gt.NoError(t, q.Start(context.Background())).Required()
		defer q.Stop()

		q.Enqueue(0)
		q.Enqueue(1)
		q.Enqueue(2)
		waitFor(t, func() bool { return processed.Load() == 3 })
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		q := worker.NewQueue("test", 1, func(ctx context.Context, job int) error { return nil })
		gt.NoError(t, q.Start(context.Background())).Required()
		q.Stop()
		q.Stop()
	})
}

type countingTarget struct {
	calls atomic.Int32
	n     int
}

func (c *countingTarget) Sweep() int {
	c.calls.Add(1)
	return c.n
}

func TestSweepWorker(t *testing.T) {
	t.Run("sweeps on interval", func(t *testing.T) {
		target := &countingTarget{n: 1}
		w := worker.NewSweepWorker(10*time.Millisecond, map[string]worker.SweepTarget{"callbacks": target})
		gt.NoError(t, w.Start(context.Background())).Required()
		waitFor(t, func() bool { return target.calls.Load() >= 2 })
		w.Stop()
	})

	t.Run("SweepAll sums removed entries", func(t *testing.T) {
		w := worker.NewSweepWorker(time.Hour, map[string]worker.SweepTarget{
			"a": &countingTarget{n: 2},
			"b": &countingTarget{n: 3},
		})
		gt.Number(t, w.SweepAll()).Equal(5)
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		w := worker.NewSweepWorker(time.Hour, nil)
		gt.NoError(t, w.Start(ctx)).Required()
		cancel()
		w.Stop()
	})
}
