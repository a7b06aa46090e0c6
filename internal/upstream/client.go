// Package upstream implements the HTTP client for the subscriber/billing
// system that is the source of truth for voucher state.
package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"radsync/internal/domain"
)

// DefaultTimeout bounds every upstream call. Calls are not retried within a
// run; a failed run relies on the next scheduled invocation.
const DefaultTimeout = 30 * time.Second

// legacySecretHeader is the shared-secret header older upstream deployments
// authenticate with. Sent alongside the bearer token when configured.
const legacySecretHeader = "X-RADIUS-SECRET"

// Client talks JSON over HTTP to the upstream system. It implements both
// domain.Notifier and domain.VoucherSource.
type Client struct {
	baseURL string
	token   string
	secret  string
	http    *http.Client
}

var (
	_ domain.Notifier      = (*Client)(nil)
	_ domain.VoucherSource = (*Client)(nil)
)

// NewClient creates a Client for the given base URL. token is sent as a
// Bearer credential; secret (optional) additionally populates the legacy
// shared-secret header. timeout <= 0 uses DefaultTimeout.
func NewClient(baseURL, token, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		secret:  secret,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
	}
}

// PullVouchers fetches the current active voucher set.
func (c *Client) PullVouchers(ctx context.Context) ([]domain.Voucher, error) {
	var resp struct {
		Vouchers []domain.Voucher `json:"vouchers"`
	}
	if err := c.do(ctx, http.MethodPost, "/sync/vouchers", struct{}{}, &resp); err != nil {
		return nil, err
	}
	return resp.Vouchers, nil
}

// PullDeleted fetches usernames deleted upstream since the given time.
func (c *Client) PullDeleted(ctx context.Context, since time.Time) ([]string, error) {
	path := "/sync/deleted-vouchers?" + url.Values{
		"since": {since.UTC().Format(time.RFC3339)},
	}.Encode()

	var resp struct {
		DeletedUsers []string `json:"deleted_users"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.DeletedUsers, nil
}

// NotifyActivation reports one first-authentication event. The upstream
// must treat duplicates idempotently: delivery is at-least-once.
func (c *Client) NotifyActivation(ctx context.Context, a domain.Activation) (*domain.ActivationResponse, error) {
	var resp domain.ActivationResponse
	if err := c.do(ctx, http.MethodPost, "/voucher/activate", a, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PushActivationWindow bulk-reports a window of aggregated activations.
// Used only by the legacy windowed scan.
func (c *Client) PushActivationWindow(ctx context.Context, activations []domain.Activation) error {
	req := struct {
		Activations []domain.Activation `json:"activations"`
	}{Activations: activations}
	return c.do(ctx, http.MethodPost, "/radius/activations", req, nil)
}

// do performs one JSON request/response round trip. Transport failures and
// non-200 statuses map to domain.UpstreamError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.secret != "" {
		req.Header.Set(legacySecretHeader, c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ErrUpstream(err, "%s %s", method, path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return domain.ErrUpstream(nil, "%s %s: upstream returned %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.ErrUpstream(err, "%s %s: decode response", method, path)
		}
	}
	return nil
}
