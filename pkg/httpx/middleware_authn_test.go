package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "shared-session-secret"

func mintSession(t *testing.T, secret, subject, scope string, ttl time.Duration) string {
	t.Helper()

	claims := SessionClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func echoOperator() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(OperatorIDFromCtx(r.Context())))
	})
}

func TestAuthnMiddlewareAcceptsValidToken(t *testing.T) {
	v := NewSessionVerifier(testSecret)
	handler := AuthnMiddleware(v)(echoOperator())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintSession(t, testSecret, "op-42", "integrations:write", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "op-42", rec.Body.String())
}

func TestAuthnMiddlewareRejections(t *testing.T) {
	v := NewSessionVerifier(testSecret)
	handler := AuthnMiddleware(v)(echoOperator())

	cases := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no header", func(r *http.Request) {}},
		{"not bearer", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.jwt")
		}},
		{"wrong secret", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mintSession(t, "other-secret", "op-1", "", time.Hour))
		}},
		{"expired", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mintSession(t, testSecret, "op-1", "", -time.Minute))
		}},
		{"missing subject", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+mintSession(t, testSecret, "", "", time.Hour))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
		})
	}
}

func TestAuthnMiddlewareRejectsUnsignedToken(t *testing.T) {
	v := NewSessionVerifier(testSecret)
	handler := AuthnMiddleware(v)(echoOperator())

	// alg=none must never pass.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "op-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAnyScope(t *testing.T) {
	v := NewSessionVerifier(testSecret)
	handler := Chain(echoOperator(),
		AuthnMiddleware(v),
		RequireAnyScope("integrations:read", "integrations:write"),
	)

	t.Run("matching scope passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintSession(t, testSecret, "op-1", "integrations:read profile", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing scope forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+mintSession(t, testSecret, "op-1", "profile", time.Hour))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})
}
