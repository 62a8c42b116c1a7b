package connectsdk

import "time"

// ============================================================================
// Wire Types
//
// These are shared between the HTTP handlers and the SDK client so the two
// sides cannot drift apart. The package imports nothing from internal/ so
// external modules can implement PageGateway and build fakes against it.
// ============================================================================

// ManageablePage is one Facebook Page the operator administers, as returned
// by the manageable-pages endpoint. The page-scoped access token has a
// lifetime independent of the user token that produced it. Instances are
// transient: nothing is persisted until the operator selects a page.
type ManageablePage struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AccessToken string   `json:"accessToken"`
	Category    string   `json:"category"`
	Tasks       []string `json:"tasks"`
}

// ErrorResponse is the error body returned by every pagelink endpoint.
// Details carries the upstream provider's error text verbatim when one is
// involved; it is for display and diagnosis only, never interpretation.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// PagesRequest is the body of POST /api/facebook/get-manageable-pages.
type PagesRequest struct {
	FacebookUserID            string `json:"facebookUserId"`
	ShortLivedUserAccessToken string `json:"shortLivedUserAccessToken"`
}

// PagesResponse is the success body of the manageable-pages endpoint.
// Pages may be empty; "no manageable pages" is a valid terminal state.
type PagesResponse struct {
	Pages   []ManageablePage `json:"pages"`
	Message string           `json:"message,omitempty"`
}

// StoreTokenRequest is the body of POST /api/facebook/store-page-token.
// The page access token travels in plaintext over TLS and is encrypted at
// the storage boundary by the server.
type StoreTokenRequest struct {
	PageID          string `json:"pageId"`
	PageName        string `json:"pageName"`
	PageAccessToken string `json:"pageAccessToken"`
}

// StoreTokenResponse is the success body of the store endpoint.
type StoreTokenResponse struct {
	Message string `json:"message"`
	PageID  string `json:"pageId"`
	TokenID string `json:"tokenId"`
}

// PageTokenRecord is a stored page connection as exposed over HTTP. The
// encrypted token is deliberately absent: nothing outside the server ever
// needs it.
type PageTokenRecord struct {
	ID        string    `json:"id"`
	PageID    string    `json:"pageId"`
	PageName  string    `json:"pageName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HealthResponse is returned by the /livez and /readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
