package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/coffeechat/pkg/repository/memory"
	"github.com/secmon-lab/coffeechat/pkg/usecase"
)

const callbackBody = `[
  {
    "item": "https://linkedin.com/in/ada",
    "status": "success",
    "candidate": {
      "fullName": "Ada Lovelace",
      "summary": "First programmer",
      "experience": [{"position": "Analyst", "company": "Babbage", "industry": "Computing"}],
      "locations": [{"name": "London"}],
      "skills": ["Math"],
      "education": [{"university": "Home"}],
      "language": [{"name": "English"}]
    }
  },
  {"item": "https://linkedin.com/in/nobody", "status": "failed"}
]`

func TestSignalHireUseCase_ReceiveCallback(t *testing.T) {
	ctx := context.Background()

	t.Run("processes inline without a queue", func(t *testing.T) {
		uc := usecase.New(memory.New())

		rec, err := uc.SignalHire.ReceiveCallback(ctx, "req-1", []byte(callbackBody))
		gt.NoError(t, err).Required()
		gt.Bool(t, rec.Received).True()
		gt.Array(t, rec.Items).Length(2)

		d, err := uc.SignalHire.DeliveredProfile(ctx, "https://linkedin.com/in/ada")
		gt.NoError(t, err).Required()
		gt.Value(t, d.Company).Equal("Babbage")
		gt.Value(t, d.Industry).Equal("Computing")
		gt.Value(t, d.Location).Equal("London")
		gt.Value(t, d.Title).Equal("Analyst")
		gt.Value(t, d.Languages).Equal([]string{"English"})

		_, err = uc.SignalHire.DeliveredProfile(ctx, "https://linkedin.com/in/nobody")
		gt.Bool(t, errors.Is(err, usecase.ErrProfileInfoMissing)).True()

		status, err := uc.SignalHire.CallbackStatus(ctx, "req-1")
		gt.NoError(t, err).Required()
		gt.Value(t, status.RequestID).Equal("req-1")
	})

	t.Run("hands records to the queue", func(t *testing.T) {
		queue := &mockQueue{accept: true}
		uc := usecase.New(memory.New(), usecase.WithCallbackQueue(queue))

		_, err := uc.SignalHire.ReceiveCallback(ctx, "req-1", []byte(callbackBody))
		gt.NoError(t, err).Required()
		gt.Array(t, queue.jobs).Length(1).Required()

		// not processed until the queue runs it
		_, err = uc.SignalHire.DeliveredProfile(ctx, "https://linkedin.com/in/ada")
		gt.Bool(t, errors.Is(err, usecase.ErrProfileInfoMissing)).True()

		gt.NoError(t, uc.SignalHire.ProcessCallback(ctx, queue.jobs[0]))
		_, err = uc.SignalHire.DeliveredProfile(ctx, "https://linkedin.com/in/ada")
		gt.NoError(t, err)
	})

	t.Run("full queue", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithCallbackQueue(&mockQueue{}))
		_, err := uc.SignalHire.ReceiveCallback(ctx, "req-1", []byte(callbackBody))
		gt.Bool(t, errors.Is(err, usecase.ErrCallbackQueueFull)).True()
	})

	t.Run("archives the raw body", func(t *testing.T) {
		archive := newMockArchive()
		uc := usecase.New(memory.New(), usecase.WithCallbackArchive(archive))

		_, err := uc.SignalHire.ReceiveCallback(ctx, "req-1", []byte(callbackBody))
		gt.NoError(t, err).Required()

		select {
		case <-archive.done:
		case <-time.After(time.Second):
			t.Fatal("callback was not archived")
		}
		archive.mu.Lock()
		defer archive.mu.Unlock()
		gt.Value(t, string(archive.bodies["req-1"])).Equal(callbackBody)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		uc := usecase.New(memory.New())

		_, err := uc.SignalHire.ReceiveCallback(ctx, " ", []byte(callbackBody))
		gt.Bool(t, errors.Is(err, usecase.ErrMissingRequestID)).True()

		for _, body := range []string{`{"item":"x"}`, `null`, `not json`} {
			_, err := uc.SignalHire.ReceiveCallback(ctx, "req-1", []byte(body))
			gt.Bool(t, errors.Is(err, usecase.ErrInvalidCallback)).True()
		}

		_, err = uc.SignalHire.CallbackStatus(ctx, "req-1")
		gt.Bool(t, errors.Is(err, usecase.ErrCallbackNotFound)).True()
	})
}

func TestSignalHireUseCase_Expiry(t *testing.T) {
	ctx := context.Background()
	stores := usecase.NewStores(time.Millisecond, time.Hour)
	uc := usecase.New(memory.New(), usecase.WithStores(stores))

	_, err := uc.SignalHire.ReceiveCallback(ctx, "req-1", []byte(callbackBody))
	gt.NoError(t, err).Required()

	time.Sleep(5 * time.Millisecond)
	gt.Number(t, stores.Callbacks.Sweep()).Equal(1)

	_, err = uc.SignalHire.CallbackStatus(ctx, "req-1")
	gt.Bool(t, errors.Is(err, usecase.ErrCallbackNotFound)).True()
}
