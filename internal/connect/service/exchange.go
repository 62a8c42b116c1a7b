package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentwire/pagelink/internal/connect/domain"
	"github.com/talentwire/pagelink/internal/connect/graph"
	"github.com/talentwire/pagelink/pkg/cryptox"
	"github.com/talentwire/pagelink/pkg/slogx"
)

var (
	// ErrMissingParams is returned when the Facebook user id or the
	// short-lived token is absent from a request.
	ErrMissingParams = errors.New("missing shortLivedUserAccessToken or facebookUserId")

	// ErrNotConfigured is returned when the server-side Facebook app
	// credentials are not configured. The service refuses to call the
	// provider with empty credentials.
	ErrNotConfigured = errors.New("facebook app credentials not configured")
)

// ExchangeService turns a short-lived user token into the list of Pages the
// operator can connect. It is stateless across calls; the long-lived user
// token obtained along the way is discarded before returning.
type ExchangeService struct {
	Graph *graph.Client
}

// ExchangeAndListPages performs the two-hop Graph chain: exchange the
// short-lived token for a long-lived one, then list manageable Pages with
// it. Upstream failures come back as *graph.UpstreamError with the
// provider's own message and status preserved for diagnosis. An empty page
// list is a valid success, distinct from any transport failure.
func (s *ExchangeService) ExchangeAndListPages(
	ctx context.Context,
	fbUserID, shortLivedToken string,
) ([]domain.ManageablePage, error) {
	l := slogx.FromContext(ctx)

	if fbUserID == "" || shortLivedToken == "" {
		return nil, ErrMissingParams
	}
	if s.Graph == nil || !s.Graph.Configured() {
		l.Error("facebook app id or secret missing from server configuration")
		return nil, ErrNotConfigured
	}

	longLived, err := s.Graph.ExchangeUserToken(ctx, shortLivedToken)
	if err != nil {
		l.Warn("token exchange failed", "err", err)
		return nil, fmt.Errorf("exchange user token: %w", err)
	}
	l.Info("obtained long-lived user token",
		"token_preview", cryptox.TokenPreview(longLived),
	)

	pages, err := s.Graph.ListManageablePages(ctx, fbUserID, longLived)
	if err != nil {
		l.Warn("page list failed", "err", err)
		return nil, fmt.Errorf("list manageable pages: %w", err)
	}

	// The long-lived user token goes out of scope here; it is never
	// returned to the caller or persisted.
	l.Info("fetched manageable pages", "count", len(pages))
	return pages, nil
}
