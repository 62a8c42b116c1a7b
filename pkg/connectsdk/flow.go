package connectsdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// State is the connection flow's current position.
type State string

const (
	StateIdle              State = "idle"
	StateCheckingLogin     State = "checking_login"
	StateAwaitingConsent   State = "awaiting_consent"
	StateExchanging        State = "exchanging"
	StateAwaitingSelection State = "awaiting_selection"
	StatePersisting        State = "persisting"
	StateConnected         State = "connected"
	StateError             State = "error"
)

// ErrorKind classifies a failed flow so the UI can pick the right
// remediation message.
type ErrorKind string

const (
	ErrorNone                ErrorKind = ""
	ErrorConsentDeclined     ErrorKind = "consent_declined"
	ErrorNoPagesFound        ErrorKind = "no_pages_found"
	ErrorNoPagesMissingScope ErrorKind = "no_pages_missing_scope"
	ErrorUpstreamFailure     ErrorKind = "upstream_failure"
	ErrorAlreadyConnected    ErrorKind = "already_connected"
	ErrorPersistFailure      ErrorKind = "persist_failure"
)

// RequiredScopes is the exact permission set the consent prompt requests.
var RequiredScopes = []string{
	"public_profile",
	"email",
	"pages_show_list",
	"pages_messaging",
}

// ScopePagesShowList gates whether the provider returns the operator's
// page list at all. Its absence explains an empty result.
const ScopePagesShowList = "pages_show_list"

// PageGateway is the slice of the pagelink API the flow drives. *SDKClient
// satisfies it.
type PageGateway interface {
	GetManageablePages(ctx context.Context, facebookUserID, shortLivedToken string) ([]ManageablePage, error)
	StorePageToken(ctx context.Context, pageID, pageName, pageAccessToken string) (*StoreTokenResponse, error)
	DisconnectPage(ctx context.Context, pageID string) error
}

var _ PageGateway = (*SDKClient)(nil)

// Flow drives one operator's page-connection attempt from "Connect with
// Facebook" through page selection to a stored token. One Flow per operator
// session; all transitions happen under an internal mutex so a second
// Connect click during an in-flight attempt is ignored rather than racing.
//
// Nothing is retried automatically. Every failure parks the flow in
// StateError and the operator restarts from scratch via Retry; the
// short-lived token and page list are not safe to reuse across a failure.
type Flow struct {
	Provider ProviderSDK
	Gateway  PageGateway

	mu       sync.Mutex
	state    State
	errKind  ErrorKind
	errMsg   string
	login    LoginStatus
	pages    []ManageablePage
	selected *ManageablePage
}

// NewFlow creates an idle connection flow.
func NewFlow(provider ProviderSDK, gateway PageGateway) *Flow {
	return &Flow{
		Provider: provider,
		Gateway:  gateway,
		state:    StateIdle,
	}
}

// State returns the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error kind and operator-facing message for StateError.
// Both are zero outside StateError.
func (f *Flow) Err() (ErrorKind, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errKind, f.errMsg
}

// Pages returns the manageable pages offered for selection. Only populated
// in StateAwaitingSelection and later.
func (f *Flow) Pages() []ManageablePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages
}

// ConnectedPage returns the selected page once the flow reaches
// StateConnected, nil otherwise.
func (f *Flow) ConnectedPage() *ManageablePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateConnected {
		return nil
	}
	return f.selected
}

// Connect runs the flow from Idle (or a prior Error) up to
// StateAwaitingSelection, checking for a cached provider session first and
// prompting for consent only when none exists. Calls while the flow is in
// any other state are ignored and return the current state unchanged.
func (f *Flow) Connect(ctx context.Context) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateIdle && f.state != StateError {
		return f.state
	}
	f.reset()

	f.state = StateCheckingLogin
	status, err := f.Provider.LoginStatus(ctx)
	if err != nil {
		return f.fail(ErrorUpstreamFailure, fmt.Sprintf("Could not check Facebook login status: %v", err))
	}

	// Cached valid session skips the consent prompt entirely.
	if status.Status != StatusConnected {
		f.state = StateAwaitingConsent
		status, err = f.Provider.Login(ctx, RequiredScopes)
		if err != nil {
			return f.fail(ErrorUpstreamFailure, fmt.Sprintf("Facebook login failed: %v", err))
		}
		if status.Status != StatusConnected {
			return f.fail(ErrorConsentDeclined, "Facebook login was cancelled or not authorized.")
		}
	}
	f.login = status

	f.state = StateExchanging
	pages, err := f.Gateway.GetManageablePages(ctx, status.Auth.UserID, status.Auth.AccessToken)
	if err != nil {
		return f.fail(ErrorUpstreamFailure, fmt.Sprintf("Failed to fetch your Facebook Pages: %v", err))
	}

	if len(pages) == 0 {
		if !status.HasScope(ScopePagesShowList) {
			return f.fail(ErrorNoPagesMissingScope,
				"No Pages returned: the pages_show_list permission was not granted. Reconnect and approve it.")
		}
		return f.fail(ErrorNoPagesFound,
			"No manageable Facebook Pages were found for this account.")
	}

	f.pages = pages
	f.state = StateAwaitingSelection
	return f.state
}

// SelectPage persists the chosen page's token and moves the flow to
// StateConnected. Valid only in StateAwaitingSelection; calls in any other
// state are ignored.
func (f *Flow) SelectPage(ctx context.Context, page ManageablePage) State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateAwaitingSelection {
		return f.state
	}

	f.state = StatePersisting
	_, err := f.Gateway.StorePageToken(ctx, page.ID, page.Name, page.AccessToken)
	if err != nil {
		if errors.Is(err, ErrAlreadyConnected) {
			return f.fail(ErrorAlreadyConnected,
				fmt.Sprintf("The page %q is already connected.", page.Name))
		}
		return f.fail(ErrorPersistFailure,
			fmt.Sprintf("Failed to save the connection for %q: %v", page.Name, err))
	}

	f.selected = &page
	f.state = StateConnected
	return f.state
}

// Retry restarts a failed flow. Valid only in StateError.
func (f *Flow) Retry() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateError {
		return f.state
	}
	f.reset()
	f.state = StateIdle
	return f.state
}

// Disconnect removes the server-side token record for the connected page
// and returns the flow to Idle. Valid only in StateConnected. The page
// token itself is not revoked at the provider.
func (f *Flow) Disconnect(ctx context.Context) (State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateConnected || f.selected == nil {
		return f.state, nil
	}

	if err := f.Gateway.DisconnectPage(ctx, f.selected.ID); err != nil && !errors.Is(err, ErrNotConnected) {
		return f.state, err
	}

	f.reset()
	f.state = StateIdle
	return f.state, nil
}

// reset clears per-attempt state. Caller holds f.mu.
func (f *Flow) reset() {
	f.errKind = ErrorNone
	f.errMsg = ""
	f.login = LoginStatus{}
	f.pages = nil
	f.selected = nil
}

// fail parks the flow in StateError. Caller holds f.mu.
func (f *Flow) fail(kind ErrorKind, msg string) State {
	f.state = StateError
	f.errKind = kind
	f.errMsg = msg
	return f.state
}
