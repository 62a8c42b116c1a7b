package connectsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the pagelink Facebook integration service.
// SessionToken is the operator's bearer token minted by the host CRM; the
// client never mints or refreshes it.
type SDKClient struct {
	BaseURL      string
	HTTPClient   *http.Client
	SessionToken string
}

// NewSDKClient creates a new pagelink service client.
func NewSDKClient(baseURL, sessionToken string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		SessionToken: sessionToken,
	}
}

// GetManageablePages exchanges a short-lived user token and returns the
// Pages the Facebook user can connect. An empty slice with no error means
// the user genuinely administers no eligible pages.
func (c *SDKClient) GetManageablePages(
	ctx context.Context,
	facebookUserID, shortLivedToken string,
) ([]ManageablePage, error) {
	var out PagesResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/facebook/get-manageable-pages",
		PagesRequest{
			FacebookUserID:            facebookUserID,
			ShortLivedUserAccessToken: shortLivedToken,
		}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return out.Pages, nil
}

// StorePageToken persists a selected page's access token server-side.
// Returns ErrAlreadyConnected (via errors.Is) when the page already has a
// stored token.
func (c *SDKClient) StorePageToken(
	ctx context.Context,
	pageID, pageName, pageAccessToken string,
) (*StoreTokenResponse, error) {
	var out StoreTokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/facebook/store-page-token",
		StoreTokenRequest{
			PageID:          pageID,
			PageName:        pageName,
			PageAccessToken: pageAccessToken,
		}, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPageTokens returns all stored page connections.
func (c *SDKClient) ListPageTokens(ctx context.Context) ([]PageTokenRecord, error) {
	var out []PageTokenRecord
	err := c.doJSON(ctx, http.MethodGet, "/api/facebook/page-tokens", nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DisconnectPage deletes the stored token record for a page. Returns
// ErrNotConnected (via errors.Is) when no record exists.
func (c *SDKClient) DisconnectPage(ctx context.Context, pageID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete,
		"/api/facebook/page-tokens/"+url.PathEscape(pageID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

// Health calls the liveness probe. Useful for wiring the service into the
// host CRM's own readiness checks.
func (c *SDKClient) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	reqBody any,
	target any,
	expectedStatus int,
) error {
	var body io.Reader
	if reqBody != nil {
		buf, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.SessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.SessionToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}
