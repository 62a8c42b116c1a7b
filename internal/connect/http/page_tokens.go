package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talentwire/pagelink/internal/connect/service"
	"github.com/talentwire/pagelink/pkg/connectsdk"
	"github.com/talentwire/pagelink/pkg/httpx"
	"github.com/talentwire/pagelink/pkg/slogx"
)

// PageTokensHandler serves the persisted-token endpoints: storing a
// selected page's token, listing connections, and disconnecting a page.
type PageTokensHandler struct {
	TokenService *service.TokenService
}

// HandleStore godoc
//
//	@Summary		Store Page Access Token
//	@Description	Encrypts a page-scoped access token and persists it. Fails with 409 when the
//	@Description	page is already connected; an existing connection is never overwritten.
//	@Tags			Facebook
//	@Accept			json
//	@Produce		json
//	@Param			body	body		connectsdk.StoreTokenRequest	true	"page id, page name and page access token"
//	@Success		200		{object}	connectsdk.StoreTokenResponse	"message, pageId, tokenId"
//	@Failure		400		{object}	connectsdk.ErrorResponse		"missing fields"
//	@Failure		401		{object}	connectsdk.ErrorResponse		"not authenticated"
//	@Failure		409		{object}	connectsdk.ErrorResponse		"page already connected"
//	@Failure		500		{object}	connectsdk.ErrorResponse		"storage failure"
//	@Security		BearerAuth
//	@Router			/api/facebook/store-page-token [post].
func (h *PageTokensHandler) HandleStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if httpx.OperatorIDFromCtx(ctx) == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, connectsdk.ErrorResponse{
			Message: "Not authenticated",
		})
		return
	}

	var req connectsdk.StoreTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, connectsdk.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	record, err := h.TokenService.StorePageToken(ctx, req.PageID, req.PageName, req.PageAccessToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			httpx.WriteJSON(w, http.StatusBadRequest, connectsdk.ErrorResponse{
				Message: "Missing pageId, pageName, or pageAccessToken",
			})
		case errors.Is(err, service.ErrPageAlreadyConnected):
			httpx.WriteJSON(w, http.StatusConflict, connectsdk.ErrorResponse{
				Message: "Page access token already exists",
				Error:   err.Error(),
			})
		default:
			log.Error("store page token failed", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
				Message: "Failed to store page token",
				Error:   err.Error(),
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, connectsdk.StoreTokenResponse{
		Message: "Page connection and token stored successfully",
		PageID:  record.PageID,
		TokenID: record.ID,
	})
}

// HandleList godoc
//
//	@Summary		List Connected Pages
//	@Description	Returns all stored page connections. Access tokens stay encrypted at rest and
//	@Description	are not included in the response.
//	@Tags			Facebook
//	@Produce		json
//	@Success		200	{array}		connectsdk.PageTokenRecord
//	@Failure		401	{object}	connectsdk.ErrorResponse	"not authenticated"
//	@Failure		500	{object}	connectsdk.ErrorResponse	"storage failure"
//	@Security		BearerAuth
//	@Router			/api/facebook/page-tokens [get].
func (h *PageTokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if httpx.OperatorIDFromCtx(ctx) == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, connectsdk.ErrorResponse{
			Message: "Not authenticated",
		})
		return
	}

	records, err := h.TokenService.ListPageTokens(ctx)
	if err != nil {
		log.Error("list page tokens failed", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
			Message: "Failed to list page tokens",
		})
		return
	}

	out := make([]connectsdk.PageTokenRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, connectsdk.PageTokenRecord{
			ID:        rec.ID,
			PageID:    rec.PageID,
			PageName:  rec.PageName,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleDisconnect godoc
//
//	@Summary		Disconnect Page
//	@Description	Deletes the stored token record for a page. The page token itself is not revoked
//	@Description	at the provider; it remains valid there until it expires or is revoked manually.
//	@Tags			Facebook
//	@Produce		json
//	@Param			pageId	path	string	true	"Facebook page id"
//	@Success		204
//	@Failure		401	{object}	connectsdk.ErrorResponse	"not authenticated"
//	@Failure		404	{object}	connectsdk.ErrorResponse	"page not connected"
//	@Failure		500	{object}	connectsdk.ErrorResponse	"storage failure"
//	@Security		BearerAuth
//	@Router			/api/facebook/page-tokens/{pageId} [delete].
func (h *PageTokensHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if httpx.OperatorIDFromCtx(ctx) == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, connectsdk.ErrorResponse{
			Message: "Not authenticated",
		})
		return
	}

	pageID := r.PathValue("pageId")
	if pageID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, connectsdk.ErrorResponse{
			Message: "Missing pageId",
		})
		return
	}

	if err := h.TokenService.DisconnectPage(ctx, pageID); err != nil {
		if errors.Is(err, service.ErrPageNotConnected) {
			httpx.WriteJSON(w, http.StatusNotFound, connectsdk.ErrorResponse{
				Message: "Page is not connected",
			})
			return
		}
		log.Error("disconnect page failed", "err", err, "page_id", pageID)
		httpx.WriteJSON(w, http.StatusInternalServerError, connectsdk.ErrorResponse{
			Message: "Failed to disconnect page",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
