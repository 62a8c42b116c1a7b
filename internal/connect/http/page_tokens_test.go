package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentwire/pagelink/internal/connect/service"
	"github.com/talentwire/pagelink/internal/connect/store/drivers/sqlite"
	"github.com/talentwire/pagelink/pkg/connectsdk"
	"github.com/talentwire/pagelink/pkg/cryptox"
)

const testKeyHex = "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"

func newPageTokensHandler(t *testing.T) *PageTokensHandler {
	t.Helper()

	cryptox.ResetKeyForTesting()
	cryptox.SetEncryptionKey(testKeyHex)
	t.Cleanup(cryptox.ResetKeyForTesting)

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &PageTokensHandler{TokenService: &service.TokenService{Store: st}}
}

func TestPageTokenHandlersRejectAnonymous(t *testing.T) {
	// The router gates these routes with AuthnMiddleware; every handler
	// still refuses anonymous callers itself so a rewiring mistake cannot
	// expose them.
	h := newPageTokensHandler(t)

	cases := map[string]struct {
		method  string
		target  string
		handler http.HandlerFunc
	}{
		"store":      {http.MethodPost, "/api/facebook/store-page-token", h.HandleStore},
		"list":       {http.MethodGet, "/api/facebook/page-tokens", h.HandleList},
		"disconnect": {http.MethodDelete, "/api/facebook/page-tokens/page-1", h.HandleDisconnect},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := httptest.NewRecorder()
			tc.handler(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "Not authenticated", decodeError(t, rec).Message)
		})
	}
}

func TestStoreTokenRejectsMissingFields(t *testing.T) {
	h := newPageTokensHandler(t)

	rec := httptest.NewRecorder()
	h.HandleStore(rec, authedRequest(http.MethodPost, "/api/facebook/store-page-token",
		`{"pageId":"p1","pageName":"","pageAccessToken":"tok"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing pageId, pageName, or pageAccessToken",
		decodeError(t, rec).Message)
}

func TestStoreTokenHappyPathThenConflict(t *testing.T) {
	h := newPageTokensHandler(t)
	body := `{"pageId":"page-9","pageName":"My Venue","pageAccessToken":"EAATOKEN"}`

	rec := httptest.NewRecorder()
	h.HandleStore(rec, authedRequest(http.MethodPost, "/api/facebook/store-page-token", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp connectsdk.StoreTokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Page connection and token stored successfully", resp.Message)
	require.Equal(t, "page-9", resp.PageID)
	require.NotEmpty(t, resp.TokenID)

	// Second store for the same page is a conflict, not an overwrite.
	rec = httptest.NewRecorder()
	h.HandleStore(rec, authedRequest(http.MethodPost, "/api/facebook/store-page-token", body))

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "Page access token already exists", decodeError(t, rec).Message)
}

func TestListPageTokensOmitsTokenMaterial(t *testing.T) {
	h := newPageTokensHandler(t)

	rec := httptest.NewRecorder()
	h.HandleStore(rec, authedRequest(http.MethodPost, "/api/facebook/store-page-token",
		`{"pageId":"page-1","pageName":"One","pageAccessToken":"SECRET_TOKEN"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleList(rec, authedRequest(http.MethodGet, "/api/facebook/page-tokens", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "SECRET_TOKEN")
	require.NotContains(t, rec.Body.String(), "accessToken")

	var records []connectsdk.PageTokenRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "page-1", records[0].PageID)
	require.Equal(t, "One", records[0].PageName)
}

func TestDisconnectPage(t *testing.T) {
	h := newPageTokensHandler(t)

	rec := httptest.NewRecorder()
	h.HandleStore(rec, authedRequest(http.MethodPost, "/api/facebook/store-page-token",
		`{"pageId":"page-1","pageName":"One","pageAccessToken":"tok"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	req := authedRequest(http.MethodDelete, "/api/facebook/page-tokens/page-1", "")
	req.SetPathValue("pageId", "page-1")
	rec = httptest.NewRecorder()
	h.HandleDisconnect(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Already disconnected.
	req = authedRequest(http.MethodDelete, "/api/facebook/page-tokens/page-1", "")
	req.SetPathValue("pageId", "page-1")
	rec = httptest.NewRecorder()
	h.HandleDisconnect(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Page is not connected", decodeError(t, rec).Message)
}
