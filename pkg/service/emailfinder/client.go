package emailfinder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/domain/interfaces"
	"github.com/secmon-lab/coffeechat/pkg/domain/model"
	"github.com/secmon-lab/coffeechat/pkg/utils/safe"
)

// ErrNotConfigured is returned by New when no endpoint is given
var ErrNotConfigured = goerr.New("email finder not configured")

// Client talks to the email finder job API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.EmailFinder = (*Client)(nil)

// New creates a client for the API rooted at baseURL
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, goerr.Wrap(ErrNotConfigured, "email finder URL is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type submitResponse struct {
	RequestID json.Number `json:"request_id"`
}

type resultResponse struct {
	Status  string   `json:"status"`
	Emails  []string `json:"emails"`
	Message string   `json:"message"`
}

// Submit starts a lookup job and returns its request ID
func (x *Client) Submit(ctx context.Context, profileURL string) (string, error) {
	body, err := json.Marshal(map[string]string{"linkedin_url": profileURL})
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+"/get-email", bytes.NewReader(body))
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	var resp submitResponse
	if err := x.do(ctx, req, &resp); err != nil {
		return "", goerr.Wrap(err, "failed to submit email lookup", goerr.V("url", profileURL))
	}
	if resp.RequestID.String() == "" {
		return "", goerr.New("email finder returned no request_id", goerr.V("url", profileURL))
	}
	return resp.RequestID.String(), nil
}

// Result fetches the current state of a job
func (x *Client) Result(ctx context.Context, requestID string) (*model.EmailLookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, x.baseURL+"/results/"+url.PathEscape(requestID), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}

	var resp resultResponse
	if err := x.do(ctx, req, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to fetch email lookup", goerr.V("requestID", requestID))
	}

	return &model.EmailLookup{
		RequestID: requestID,
		Status:    model.EmailLookupStatus(resp.Status),
		Emails:    resp.Emails,
		Message:   resp.Message,
	}, nil
}

func (x *Client) do(ctx context.Context, req *http.Request, out any) error {
	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send request")
	}
	defer safe.CloseBody(ctx, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return goerr.New("email finder returned error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "failed to decode response")
	}
	return nil
}
