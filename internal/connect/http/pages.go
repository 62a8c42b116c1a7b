package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/talentwire/pagelink/internal/connect/graph"
	"github.com/talentwire/pagelink/internal/connect/service"
	"github.com/talentwire/pagelink/pkg/connectsdk"
	"github.com/talentwire/pagelink/pkg/httpx"
	"github.com/talentwire/pagelink/pkg/slogx"
)

// ManageablePagesHandler serves POST /api/facebook/get-manageable-pages.
// It brokers the short-lived-to-long-lived token exchange and returns the
// Pages the operator can connect, each with its page-scoped token. Nothing
// is persisted here.
type ManageablePagesHandler struct {
	ExchangeService *service.ExchangeService
}

// ServeHTTP godoc
//
//	@Summary		List Manageable Facebook Pages
//	@Description	Exchanges a short-lived user access token for a long-lived one, then lists the
//	@Description	Facebook Pages the user administers together with their page-scoped tokens.
//	@Description	The long-lived user token is discarded server-side; only page data is returned.
//	@Tags			Facebook
//	@Accept			json
//	@Produce		json
//	@Param			body	body		connectsdk.PagesRequest		true	"Facebook user id and short-lived token"
//	@Success		200		{object}	connectsdk.PagesResponse	"pages (may be empty)"
//	@Failure		400		{object}	connectsdk.ErrorResponse	"missing fields"
//	@Failure		401		{object}	connectsdk.ErrorResponse	"not authenticated"
//	@Failure		500		{object}	connectsdk.ErrorResponse	"misconfigured or upstream failure"
//	@Security		BearerAuth
//	@Router			/api/facebook/get-manageable-pages [post].
func (h *ManageablePagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// AuthnMiddleware already gates this route; the explicit check stays
	// because the handler must never run for an anonymous caller even if
	// it gets rewired.
	if httpx.OperatorIDFromCtx(ctx) == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, connectsdk.ErrorResponse{
			Message: "Not authenticated",
		})
		return
	}

	var req connectsdk.PagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, connectsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	pages, err := h.ExchangeService.ExchangeAndListPages(
		ctx, req.FacebookUserID, req.ShortLivedUserAccessToken)
	if err != nil {
		writeExchangeError(w, log, err)
		return
	}

	// The SDK package owns the wire types and must not import internal/,
	// so the domain pages are converted here at the boundary.
	resp := connectsdk.PagesResponse{Pages: make([]connectsdk.ManageablePage, 0, len(pages))}
	for _, p := range pages {
		resp.Pages = append(resp.Pages, connectsdk.ManageablePage{
			ID:          p.ID,
			Name:        p.Name,
			AccessToken: p.AccessToken,
			Category:    p.Category,
			Tasks:       p.Tasks,
		})
	}
	if len(pages) == 0 {
		resp.Message = "No manageable pages found for this user."
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func writeExchangeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var upstream *graph.UpstreamError

	switch {
	case errors.Is(err, service.ErrMissingParams):
		httpx.WriteJSON(w, http.StatusBadRequest, connectsdk.ErrorResponse{
			Message: "Missing shortLivedUserAccessToken or facebookUserId",
		})
	case errors.Is(err, service.ErrNotConfigured):
		httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
			Message: "Server configuration error: Facebook credentials missing.",
			Error:   "FB App ID/Secret missing",
		})
	case errors.As(err, &upstream) && upstream.Op == graph.OpTokenExchange:
		httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
			Message: "Failed to exchange for long-lived user token",
			Error:   upstreamMessage(upstream, "Facebook API error during token exchange"),
			Details: upstream.Error(),
		})
	case errors.As(err, &upstream):
		httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
			Message: "Failed to fetch pages",
			Error:   upstreamMessage(upstream, "Facebook API error while fetching pages"),
			Details: upstream.Error(),
		})
	default:
		log.Error("manageable pages request failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
			Message: "Server error",
			Error:   err.Error(),
		})
	}
}

func upstreamMessage(u *graph.UpstreamError, fallback string) string {
	if u.Message != "" {
		return u.Message
	}
	return fallback
}
