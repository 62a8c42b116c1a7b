package connect_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/pagelink/internal/connect/graph"
	httpapi "github.com/talentwire/pagelink/internal/connect/http"
	"github.com/talentwire/pagelink/internal/connect/service"
	"github.com/talentwire/pagelink/internal/connect/store/drivers/sqlite"
	"github.com/talentwire/pagelink/pkg/cryptox"
	"github.com/talentwire/pagelink/pkg/httpx"
)

/*
 * End-to-end tests for the page connection flow. The whole stack runs
 * in-process: a real sqlite store, the real router and middleware, and a
 * fake Graph API upstream. Only the Facebook side is simulated.
 */

const (
	sessionSecret     = "e2e-session-secret"
	encryptionKeyHex  = "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
	operatorID        = "operator-e2e"
	operatorScopes    = "integrations:read integrations:write"
	facebookAppID     = "e2e-app-id"
	facebookAppSecret = "e2e-app-secret"
)

// stack is one fully wired service instance plus its fake Graph upstream.
type stack struct {
	Server     *httptest.Server
	GraphCalls *graphCallLog
}

type graphCallLog struct {
	Exchanges int
	PageLists int
}

// pagesJSON is what the fake Graph /accounts endpoint serves.
const pagesJSON = `{"data":[
	{"id":"page-101","name":"Harbour Cafe","access_token":"PAGE_TOKEN_101","category":"Cafe","tasks":["MESSAGING","MANAGE"]},
	{"id":"page-202","name":"Dockside Bar","access_token":"PAGE_TOKEN_202","category":"Bar","tasks":["MESSAGING"]}
]}`

func newStack(t *testing.T) *stack {
	t.Helper()

	cryptox.ResetKeyForTesting()
	cryptox.SetEncryptionKey(encryptionKeyHex)
	t.Cleanup(cryptox.ResetKeyForTesting)

	calls := &graphCallLog{}
	graphMux := http.NewServeMux()
	graphMux.HandleFunc("GET /v19.0/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		calls.Exchanges++
		if r.URL.Query().Get("fb_exchange_token") != "SHORT_LIVED_E2E" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Session has expired","code":190}}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"LONG_LIVED_E2E","token_type":"bearer"}`))
	})
	graphMux.HandleFunc("GET /v19.0/{userID}/accounts", func(w http.ResponseWriter, r *http.Request) {
		calls.PageLists++
		if r.URL.Query().Get("access_token") != "LONG_LIVED_E2E" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token.","code":190}}`))
			return
		}
		_, _ = w.Write([]byte(pagesJSON))
	})
	graphSrv := httptest.NewServer(graphMux)
	t.Cleanup(graphSrv.Close)

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	verifier := httpx.NewSessionVerifier(sessionSecret)
	router := httpapi.NewRouter(verifier, "e2e", st, slogDiscard())
	router.ExchangeService = &service.ExchangeService{
		Graph: graph.NewClient(graphSrv.URL, "v19.0", facebookAppID, facebookAppSecret),
	}
	router.TokenService = &service.TokenService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &stack{Server: srv, GraphCalls: calls}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mintSessionToken(t *testing.T, subject, scope string) string {
	t.Helper()

	claims := httpx.SessionClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(sessionSecret))
	require.NoError(t, err)
	return raw
}
