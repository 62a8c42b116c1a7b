package connect_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentwire/pagelink/pkg/connectsdk"
)

// cachedSessionProvider simulates an operator whose browser already holds a
// valid Facebook session, so the consent prompt is skipped.
type cachedSessionProvider struct {
	scopes []string
}

func (p *cachedSessionProvider) LoginStatus(ctx context.Context) (connectsdk.LoginStatus, error) {
	return connectsdk.LoginStatus{
		Status: connectsdk.StatusConnected,
		Auth: connectsdk.AuthResponse{
			AccessToken:   "SHORT_LIVED_E2E",
			UserID:        "fb-user-e2e",
			GrantedScopes: p.scopes,
		},
	}, nil
}

func (p *cachedSessionProvider) Login(ctx context.Context, scopes []string) (connectsdk.LoginStatus, error) {
	return connectsdk.LoginStatus{Status: connectsdk.StatusUnknown}, nil
}

func TestConnectFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	client := connectsdk.NewSDKClient(s.Server.URL, mintSessionToken(t, operatorID, operatorScopes))
	provider := &cachedSessionProvider{scopes: connectsdk.RequiredScopes}
	flow := connectsdk.NewFlow(provider, client)

	// Operator clicks "Connect with Facebook"; the cached session short
	// circuits consent and the Gateway returns two pages.
	state := flow.Connect(ctx)
	require.Equal(t, connectsdk.StateAwaitingSelection, state)

	pages := flow.Pages()
	require.Len(t, pages, 2)
	require.Equal(t, "Harbour Cafe", pages[0].Name)
	require.Equal(t, "Dockside Bar", pages[1].Name)
	require.Equal(t, 1, s.GraphCalls.Exchanges)
	require.Equal(t, 1, s.GraphCalls.PageLists)

	// Operator selects the second page.
	state = flow.SelectPage(ctx, pages[1])
	require.Equal(t, connectsdk.StateConnected, state)
	require.Equal(t, "Dockside Bar", flow.ConnectedPage().Name)

	// The stored record is visible over the list endpoint, token omitted.
	records, err := client.ListPageTokens(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "page-202", records[0].PageID)
	require.Equal(t, "Dockside Bar", records[0].PageName)

	// Connecting the same page again conflicts.
	_, err = client.StorePageToken(ctx, "page-202", "Dockside Bar", "PAGE_TOKEN_202")
	require.ErrorIs(t, err, connectsdk.ErrAlreadyConnected)

	// Disconnect clears the record server-side and returns the flow to Idle.
	state, err = flow.Disconnect(ctx)
	require.NoError(t, err)
	require.Equal(t, connectsdk.StateIdle, state)

	records, err = client.ListPageTokens(ctx)
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestConnectEndpointsRequireSession(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	anonymous := connectsdk.NewSDKClient(s.Server.URL, "")
	_, err := anonymous.GetManageablePages(ctx, "fb-user-e2e", "SHORT_LIVED_E2E")
	require.ErrorIs(t, err, connectsdk.ErrUnauthenticated)

	_, err = anonymous.ListPageTokens(ctx)
	require.ErrorIs(t, err, connectsdk.ErrUnauthenticated)

	// No Graph traffic happens for rejected requests.
	require.Zero(t, s.GraphCalls.Exchanges)
}

func TestConnectEndpointsEnforceScopes(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	readOnly := connectsdk.NewSDKClient(s.Server.URL, mintSessionToken(t, operatorID, "integrations:read"))

	// Read scope can list.
	_, err := readOnly.ListPageTokens(ctx)
	require.NoError(t, err)

	// But cannot run the exchange.
	_, err = readOnly.GetManageablePages(ctx, "fb-user-e2e", "SHORT_LIVED_E2E")
	require.ErrorIs(t, err, connectsdk.ErrForbidden)
}

func TestStaleShortLivedTokenSurfacesUpstreamError(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	client := connectsdk.NewSDKClient(s.Server.URL, mintSessionToken(t, operatorID, operatorScopes))

	// The fake Graph rejects any token other than the cached session's, the
	// way the real one rejects a stale token.
	_, err := client.GetManageablePages(ctx, "fb-user-e2e", "STALE_TOKEN")
	require.Error(t, err)

	var apiErr *connectsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "Failed to exchange for long-lived user token", apiErr.Message)
	require.Contains(t, apiErr.Detail, "Session has expired")
}

func TestSystemEndpoints(t *testing.T) {
	s := newStack(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(s.Server.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	resp, err := http.Get(s.Server.URL + "/metrics")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}
