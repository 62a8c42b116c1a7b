package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentwire/pagelink/internal/connect/graph"
)

// fakeGraph stands in for the Facebook Graph API. Handlers are keyed by the
// two operations the client performs.
func fakeGraph(t *testing.T, exchange, accounts http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v19.0/oauth/access_token", exchange)
	mux.HandleFunc("GET /v19.0/{userID}/accounts", accounts)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newExchangeService(baseURL string) *ExchangeService {
	return &ExchangeService{
		Graph: graph.NewClient(baseURL, "v19.0", "app-id", "app-secret"),
	}
}

func TestExchangeAndListPagesHappyPath(t *testing.T) {
	ctx := context.Background()

	var exchangeQuery, accountsToken string
	srv := fakeGraph(t,
		func(w http.ResponseWriter, r *http.Request) {
			exchangeQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"LONG_LIVED_TOKEN","token_type":"bearer","expires_in":5183944}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			accountsToken = r.URL.Query().Get("access_token")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[
				{"id":"111","name":"Cafe One","access_token":"PAGE_TOKEN_1","category":"Cafe","tasks":["MESSAGING","MANAGE"]},
				{"id":"222","name":"Bar Two","access_token":"PAGE_TOKEN_2","category":"Bar","tasks":["MESSAGING"]}
			]}`))
		},
	)

	svc := newExchangeService(srv.URL)
	pages, err := svc.ExchangeAndListPages(ctx, "fb-user-1", "SHORT_LIVED")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	require.Equal(t, "111", pages[0].ID)
	require.Equal(t, "Cafe One", pages[0].Name)
	require.Equal(t, "PAGE_TOKEN_1", pages[0].AccessToken)
	require.Equal(t, []string{"MESSAGING", "MANAGE"}, pages[0].Tasks)
	require.Equal(t, "Bar Two", pages[1].Name)

	// The exchange carried the short-lived token and app credentials; the
	// accounts call used the long-lived token from the exchange.
	require.Contains(t, exchangeQuery, "grant_type=fb_exchange_token")
	require.Contains(t, exchangeQuery, "fb_exchange_token=SHORT_LIVED")
	require.Contains(t, exchangeQuery, "client_id=app-id")
	require.Equal(t, "LONG_LIVED_TOKEN", accountsToken)
}

func TestExchangeAndListPagesEmptyListIsSuccess(t *testing.T) {
	srv := fakeGraph(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"LL"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[]}`))
		},
	)

	svc := newExchangeService(srv.URL)
	pages, err := svc.ExchangeAndListPages(context.Background(), "fb-user-1", "SL")
	require.NoError(t, err)
	require.NotNil(t, pages)
	require.Empty(t, pages)
}

func TestExchangeAndListPagesValidatesInput(t *testing.T) {
	svc := newExchangeService("http://unused")

	_, err := svc.ExchangeAndListPages(context.Background(), "", "token")
	require.ErrorIs(t, err, ErrMissingParams)

	_, err = svc.ExchangeAndListPages(context.Background(), "fb-user", "")
	require.ErrorIs(t, err, ErrMissingParams)
}

func TestExchangeAndListPagesRequiresCredentials(t *testing.T) {
	svc := &ExchangeService{Graph: graph.NewClient("http://unused", "v19.0", "", "")}

	_, err := svc.ExchangeAndListPages(context.Background(), "fb-user", "token")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestExchangeFailureCarriesUpstreamError(t *testing.T) {
	srv := fakeGraph(t,
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","type":"OAuthException","code":190}}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("accounts must not be called when the exchange fails")
			w.WriteHeader(http.StatusInternalServerError)
		},
	)

	svc := newExchangeService(srv.URL)
	_, err := svc.ExchangeAndListPages(context.Background(), "fb-user-1", "STALE")
	require.Error(t, err)

	var upstream *graph.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, graph.OpTokenExchange, upstream.Op)
	require.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	require.Equal(t, "Invalid OAuth access token.", upstream.Message)
	require.Equal(t, "190", upstream.Code)
}

func TestPageListFailureCarriesUpstreamError(t *testing.T) {
	srv := fakeGraph(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"LL"}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"message":"Permissions error","code":200}}`))
		},
	)

	svc := newExchangeService(srv.URL)
	_, err := svc.ExchangeAndListPages(context.Background(), "fb-user-1", "SL")
	require.Error(t, err)

	var upstream *graph.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, graph.OpPageList, upstream.Op)
	require.Equal(t, "Permissions error", upstream.Message)
}
