package connectsdk

import "context"

// Status is the identity provider's view of the operator's session.
type Status string

const (
	// StatusConnected means the operator has a valid provider session and
	// has authorized the app; AuthResponse is populated.
	StatusConnected Status = "connected"

	// StatusNotAuthorized means the operator is logged in to the provider
	// but has not authorized the app (or declined).
	StatusNotAuthorized Status = "not_authorized"

	// StatusUnknown means the operator is not logged in to the provider,
	// or the SDK could not determine the session state.
	StatusUnknown Status = "unknown"
)

// AuthResponse carries the provider session details needed to drive the
// token exchange. GrantedScopes is the set the operator actually approved,
// which may be narrower than what was requested.
type AuthResponse struct {
	AccessToken   string
	UserID        string
	GrantedScopes []string
}

// LoginStatus is the tagged result of a provider session query. Auth is
// meaningful only when Status is StatusConnected.
type LoginStatus struct {
	Status Status
	Auth   AuthResponse
}

// HasScope reports whether the granted-scopes set contains scope.
func (ls LoginStatus) HasScope(scope string) bool {
	for _, s := range ls.Auth.GrantedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ProviderSDK is the identity provider's login surface as the connection
// flow consumes it. Implementations wrap the provider's platform SDK; this
// package never talks to the provider directly.
type ProviderSDK interface {
	// LoginStatus returns the current session state without any UI.
	LoginStatus(ctx context.Context) (LoginStatus, error)

	// Login runs the provider's consent flow requesting the given scopes.
	// A declined or cancelled consent surfaces as StatusNotAuthorized or
	// StatusUnknown, not as an error.
	Login(ctx context.Context, scopes []string) (LoginStatus, error)
}
