// Package graph is a minimal client for the two Facebook Graph API calls
// this service makes: exchanging a short-lived user token for a long-lived
// one, and listing the Pages a user administers. Nothing is retried; a
// stale short-lived token will not succeed on a second attempt and blind
// retries only invite provider-side rate limiting.
package graph

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"

	"github.com/talentwire/pagelink/internal/connect/domain"
	"github.com/talentwire/pagelink/pkg/cryptox"
	"github.com/talentwire/pagelink/pkg/slogx"
)

const (
	OpTokenExchange = "token_exchange"
	OpPageList      = "page_list"

	// Graph error bodies are attacker-influenced; cap how much we read.
	maxResponseBytes = 1 << 20
)

var graphRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pagelink_graph_requests_total",
	Help: "Outbound Graph API calls, by operation and outcome.",
}, []string{"op", "outcome"})

// UpstreamError carries the provider's failure details for observability.
// Message and Code are preserved verbatim for display, never interpreted.
type UpstreamError struct {
	Op         string // OpTokenExchange or OpPageList
	StatusCode int
	Message    string
	Code       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("graph %s failed: status=%d code=%s message=%s",
		e.Op, e.StatusCode, e.Code, e.Message)
}

// Client talks to the Facebook Graph API on behalf of the exchange flow.
type Client struct {
	BaseURL    string // default https://graph.facebook.com
	APIVersion string // e.g. "v19.0"
	AppID      string
	AppSecret  string
	HTTPClient *http.Client
}

func NewClient(baseURL, apiVersion, appID, appSecret string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIVersion: apiVersion,
		AppID:      appID,
		AppSecret:  appSecret,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether app credentials are present. Callers must
// check this before use; calling the Graph API with empty credentials
// produces confusing upstream errors instead of a clear local one.
func (c *Client) Configured() bool {
	return c.AppID != "" && c.AppSecret != ""
}

// ExchangeUserToken swaps a short-lived user access token for a long-lived
// one (~60 days, provider-defined). The result lives in server memory for
// the duration of one request and is never persisted.
func (c *Client) ExchangeUserToken(ctx context.Context, shortLivedToken string) (string, error) {
	log := slogx.FromContext(ctx)

	q := url.Values{}
	q.Set("grant_type", "fb_exchange_token")
	q.Set("client_id", c.AppID)
	q.Set("client_secret", c.AppSecret)
	q.Set("fb_exchange_token", shortLivedToken)

	endpoint := fmt.Sprintf("%s/%s/oauth/access_token?%s", c.BaseURL, c.APIVersion, q.Encode())
	log.Debug("exchanging user token",
		"op", OpTokenExchange,
		"token_preview", cryptox.TokenPreview(shortLivedToken),
	)

	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		graphRequests.WithLabelValues(OpTokenExchange, "transport_error").Inc()
		return "", fmt.Errorf("graph token exchange request: %w", err)
	}

	token := gjson.GetBytes(body, "access_token").String()
	if status < 200 || status >= 300 || token == "" {
		graphRequests.WithLabelValues(OpTokenExchange, "upstream_error").Inc()
		return "", upstreamError(OpTokenExchange, status, body)
	}

	graphRequests.WithLabelValues(OpTokenExchange, "ok").Inc()
	return token, nil
}

// ListManageablePages lists the Pages the given user administers, each with
// its page-scoped access token. An empty list is a valid result, not an
// error; the caller distinguishes "no pages" from scope problems.
func (c *Client) ListManageablePages(
	ctx context.Context,
	fbUserID, longLivedToken string,
) ([]domain.ManageablePage, error) {
	log := slogx.FromContext(ctx)

	q := url.Values{}
	q.Set("access_token", longLivedToken)

	endpoint := fmt.Sprintf("%s/%s/%s/accounts?%s",
		c.BaseURL, c.APIVersion, url.PathEscape(fbUserID), q.Encode())
	log.Debug("listing manageable pages", "op", OpPageList, "fb_user_id", fbUserID)

	status, body, err := c.get(ctx, endpoint)
	if err != nil {
		graphRequests.WithLabelValues(OpPageList, "transport_error").Inc()
		return nil, fmt.Errorf("graph page list request: %w", err)
	}

	if status < 200 || status >= 300 {
		graphRequests.WithLabelValues(OpPageList, "upstream_error").Inc()
		return nil, upstreamError(OpPageList, status, body)
	}

	pages := []domain.ManageablePage{}
	gjson.GetBytes(body, "data").ForEach(func(_, page gjson.Result) bool {
		var tasks []string
		for _, t := range page.Get("tasks").Array() {
			tasks = append(tasks, t.String())
		}
		pages = append(pages, domain.ManageablePage{
			ID:          page.Get("id").String(),
			Name:        page.Get("name").String(),
			AccessToken: page.Get("access_token").String(),
			Category:    page.Get("category").String(),
			Tasks:       tasks,
		})
		return true
	})

	graphRequests.WithLabelValues(OpPageList, "ok").Inc()
	return pages, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func upstreamError(op string, status int, body []byte) *UpstreamError {
	return &UpstreamError{
		Op:         op,
		StatusCode: status,
		Message:    gjson.GetBytes(body, "error.message").String(),
		Code:       gjson.GetBytes(body, "error.code").String(),
	}
}
