package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/domain/types"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// DefaultSignalHireBaseURL is the SignalHire API root
const DefaultSignalHireBaseURL = "https://www.signalhire.com/api/v1"

// SignalHire submits asynchronous candidate lookups. Results are delivered to
// callbackURL, so Detail never returns a profile, only ErrPending.
type SignalHire struct {
	clientConfig
	apiKey      string
	callbackURL string
}

var _ Detailer = (*SignalHire)(nil)

// NewSignalHire returns ErrNotConfigured when apiKey or callbackURL is empty
func NewSignalHire(apiKey, callbackURL string, opts ...Option) (*SignalHire, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, goerr.Wrap(ErrNotConfigured, "SignalHire API key is required")
	}
	if strings.TrimSpace(callbackURL) == "" {
		return nil, goerr.Wrap(ErrNotConfigured, "SignalHire callback URL is required")
	}
	return &SignalHire{
		clientConfig: newClientConfig(DefaultSignalHireBaseURL, opts),
		apiKey:       apiKey,
		callbackURL:  callbackURL,
	}, nil
}

func (x *SignalHire) Name() types.ProviderName { return types.ProviderSignalHire }

func (x *SignalHire) Capabilities() Capability { return CapDetail }

type signalHireSearchRequest struct {
	Items       []string `json:"items"`
	CallbackURL string   `json:"callbackUrl"`
}

type signalHireSearchResponse struct {
	RequestID json.Number `json:"requestId"`
}

// Submit requests a lookup and returns the SignalHire request ID
func (x *SignalHire) Submit(ctx context.Context, profileURL string) (string, error) {
	body, err := json.Marshal(signalHireSearchRequest{
		Items:       []string{profileURL},
		CallbackURL: x.callbackURL,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/candidate/search", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", x.apiKey)

	var resp signalHireSearchResponse
	if _, err := x.doJSON(ctx, req, &resp); err != nil {
		return "", goerr.Wrap(err, "SignalHire lookup failed", goerr.V("url", profileURL))
	}
	return resp.RequestID.String(), nil
}

// Detail submits a lookup and reports ErrPending on acceptance
func (x *SignalHire) Detail(ctx context.Context, profileURL string) (*model.DetailedProfile, error) {
	requestID, err := x.Submit(ctx, profileURL)
	if err != nil {
		return nil, err
	}
	logging.From(ctx).Info("SignalHire lookup submitted", "url", profileURL, "requestID", requestID)
	return nil, goerr.Wrap(ErrPending, "SignalHire lookup submitted",
		goerr.V("url", profileURL), goerr.V("requestID", requestID))
}
