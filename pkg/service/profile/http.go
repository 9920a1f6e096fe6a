package profile

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/coffeechat/pkg/utils/safe"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodySize    = 4 << 20
)

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures an HTTP-backed provider
type Option func(*clientConfig)

// WithBaseURL overrides the provider API endpoint
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

func newClientConfig(baseURL string, opts []Option) clientConfig {
	cfg := clientConfig{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// doJSON sends req and decodes a 2xx JSON response into out. out may be nil.
func (c *clientConfig) doJSON(ctx context.Context, req *http.Request, out any) (int, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, goerr.Wrap(classifyTransport(err), "request failed",
			goerr.V("url", req.URL.String()), goerr.V("cause", err.Error()))
	}
	defer safe.CloseBody(ctx, resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, goerr.Wrap(ErrNetwork, "failed to read response body", goerr.V("cause", err.Error()))
	}

	if typed := classifyStatus(resp.StatusCode); typed != nil {
		return resp.StatusCode, goerr.Wrap(typed, "provider returned error status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncate(string(body), 512)))
	}

	if out == nil || len(body) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, goerr.Wrap(ErrInvalidResponse, "failed to decode response", goerr.V("cause", err.Error()))
	}
	return resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
