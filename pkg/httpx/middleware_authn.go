package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/talentwire/pagelink/pkg/slogx"
)

// SessionClaims are the claims the host CRM embeds in operator session
// tokens. This service only verifies them, it never issues tokens.
type SessionClaims struct {
	Scope string `json:"scp,omitempty"`
	jwt.RegisteredClaims
}

// SessionVerifier validates operator session tokens minted by the host
// application's auth system (HS256 over a shared secret).
type SessionVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses and validates a raw session token, returning its claims.
func (v *SessionVerifier) Verify(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("session token invalid: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("session token missing subject")
	}
	return claims, nil
}

// AuthnMiddleware rejects requests without a valid operator session token.
// The endpoints behind it broker access to a secret-issuing external API,
// so they must never be reachable unauthenticated.
func AuthnMiddleware(v *SessionVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "session verification failed")
				log.Warn("session verify failed", "err", err)
				return
			}

			ctx = contextWithSession(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithSession(ctx context.Context, c *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyOperatorID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, ParseSpaceDelimitedFields(c.Scope))
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
