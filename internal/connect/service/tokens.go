package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentwire/pagelink/internal/connect/domain"
	"github.com/talentwire/pagelink/internal/connect/store"
	"github.com/talentwire/pagelink/pkg/cryptox"
	"github.com/talentwire/pagelink/pkg/idx"
	"github.com/talentwire/pagelink/pkg/slogx"
)

var (
	// ErrPageAlreadyConnected is returned when a token for the same page id
	// is already stored. Re-linking must fail loudly so the operator sees a
	// specific message instead of a silent overwrite.
	ErrPageAlreadyConnected = errors.New("page access token already exists")

	// ErrPageNotConnected is returned when no token is stored for a page id.
	ErrPageNotConnected = errors.New("page is not connected")

	// ErrMissingFields is returned when a store request lacks required fields.
	ErrMissingFields = errors.New("missing pageId, pageName, or pageAccessToken")
)

// TokenService owns the lifecycle of persisted page tokens. It is the only
// place where plaintext page tokens meet the cipher: tokens are encrypted
// here before the store ever sees them, and decrypted here for internal
// consumers. The store layer never handles plaintext.
type TokenService struct {
	Store store.Store
}

// StorePageToken encrypts and persists a page-scoped access token.
// Returns ErrPageAlreadyConnected when the page is already linked; the
// create is never an upsert.
func (s *TokenService) StorePageToken(
	ctx context.Context,
	pageID, pageName, pageAccessToken string,
) (domain.PageToken, error) {
	l := slogx.FromContext(ctx)

	if pageID == "" || pageName == "" || pageAccessToken == "" {
		return domain.PageToken{}, ErrMissingFields
	}

	envelope, err := cryptox.EncryptToken(pageAccessToken)
	if err != nil {
		l.Error("failed to encrypt page token", "err", err, "page_id", pageID)
		return domain.PageToken{}, fmt.Errorf("encrypt page token: %w", err)
	}

	now := time.Now().UTC()
	record := domain.PageToken{
		ID:             idx.New().String(),
		PageID:         pageID,
		PageName:       pageName,
		AccessTokenEnc: envelope,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.PageTokens().CreatePageToken(ctx, record); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("page already connected", "page_id", pageID)
			return domain.PageToken{}, ErrPageAlreadyConnected
		}
		l.Error("failed to persist page token", "err", err, "page_id", pageID)
		return domain.PageToken{}, err
	}

	l.Info("page token stored",
		"page_id", pageID,
		"page_name", pageName,
		"token_id", record.ID,
		"token_preview", cryptox.TokenPreview(pageAccessToken),
		"token_fp", cryptox.FingerprintToken(pageAccessToken),
	)
	return record, nil
}

// ListPageTokens returns all stored records. Tokens stay encrypted; listing
// never decrypts.
func (s *TokenService) ListPageTokens(ctx context.Context) ([]domain.PageToken, error) {
	return s.Store.PageTokens().ListPageTokens(ctx)
}

// DecryptedPageToken returns the plaintext page token for internal
// consumers (the messaging webhook worker). The decrypted value must not be
// logged or returned over HTTP.
func (s *TokenService) DecryptedPageToken(ctx context.Context, pageID string) (string, error) {
	record, err := s.Store.PageTokens().GetPageTokenByPageID(ctx, pageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrPageNotConnected
		}
		return "", err
	}

	plaintext, err := cryptox.DecryptToken(record.AccessTokenEnc)
	if err != nil {
		return "", fmt.Errorf("decrypt stored page token: %w", err)
	}
	return plaintext, nil
}

// DisconnectPage removes the stored token for a page. This deletes the
// record server-side rather than only flipping UI state; it does not call a
// provider revoke endpoint, so the token itself stays valid at Facebook
// until it expires or is revoked there.
func (s *TokenService) DisconnectPage(ctx context.Context, pageID string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.PageTokens().DeletePageTokenByPageID(ctx, pageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPageNotConnected
		}
		l.Error("failed to delete page token", "err", err, "page_id", pageID)
		return err
	}

	l.Info("page disconnected", "page_id", pageID)
	return nil
}
