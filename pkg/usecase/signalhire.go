package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/async"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

type SignalHireUseCase struct {
	stores  *Stores
	queue   CallbackQueue
	archive interfaces.CallbackArchive
	now     func() time.Time
}

// ReceiveCallback validates and stores a webhook delivery, then hands it to
// the queue. Without a queue the callback is processed inline.
func (uc *SignalHireUseCase) ReceiveCallback(ctx context.Context, requestID string, body []byte) (*model.CallbackRecord, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, goerr.Wrap(ErrMissingRequestID, "callback rejected")
	}

	var items []model.SignalHireItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, goerr.Wrap(ErrInvalidCallback, "callback body is not an array of items",
			goerr.V(RequestIDKey, requestID),
			goerr.V("error", err.Error()),
		)
	}
	// a JSON null decodes without error
	if items == nil {
		return nil, goerr.Wrap(ErrInvalidCallback, "callback body is null", goerr.V(RequestIDKey, requestID))
	}

	rec := &model.CallbackRecord{
		RequestID: requestID,
		Items:     items,
		Received:  true,
		Timestamp: uc.now().UTC(),
	}
	uc.stores.Callbacks.Set(requestID, rec)

	logging.From(ctx).Info("signalhire callback received", "requestID", requestID, "items", len(items))

	if uc.archive != nil {
		raw := append([]byte(nil), body...)
		async.Dispatch(ctx, func(ctx context.Context) error {
			if err := uc.archive.Put(ctx, requestID, raw); err != nil {
				return goerr.Wrap(err, "failed to archive callback", goerr.V(RequestIDKey, requestID))
			}
			return nil
		})
	}

	if uc.queue == nil {
		if err := uc.ProcessCallback(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if !uc.queue.Enqueue(rec) {
		return nil, goerr.Wrap(ErrCallbackQueueFull, "callback not queued", goerr.V(RequestIDKey, requestID))
	}
	return rec, nil
}

// ProcessCallback stores every resolved candidate as a delivered profile
func (uc *SignalHireUseCase) ProcessCallback(ctx context.Context, rec *model.CallbackRecord) error {
	logger := logging.From(ctx).With("requestID", rec.RequestID)

	delivered := 0
	for _, item := range rec.Items {
		if !item.Resolved() {
			logger.Debug("skipping unresolved callback item", "item", item.Item, "status", item.Status)
			continue
		}
		uc.stores.Delivered.Set(item.Item, item.Candidate.ToDetailedProfile(item.Item))
		delivered++
	}

	logger.Info("signalhire callback processed", "delivered", delivered, "items", len(rec.Items))
	return nil
}

// CallbackStatus returns the stored callback or ErrCallbackNotFound
func (uc *SignalHireUseCase) CallbackStatus(ctx context.Context, requestID string) (*model.CallbackRecord, error) {
	rec, _, ok := uc.stores.Callbacks.Get(requestID)
	if !ok {
		return nil, goerr.Wrap(ErrCallbackNotFound, "no callback for request", goerr.V(RequestIDKey, requestID))
	}
	return rec, nil
}

// DeliveredProfile returns a profile delivered by webhook or ErrProfileInfoMissing
func (uc *SignalHireUseCase) DeliveredProfile(ctx context.Context, profileURL string) (*model.DetailedProfile, error) {
	d, _, ok := uc.stores.Delivered.Get(profileURL)
	if !ok {
		return nil, goerr.Wrap(ErrProfileInfoMissing, "no delivered profile", goerr.V(URLKey, profileURL))
	}
	return d, nil
}
