package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/talentwire/pagelink/internal/connect/service"
	"github.com/talentwire/pagelink/internal/connect/store"
	"github.com/talentwire/pagelink/pkg/httpx"
	"github.com/talentwire/pagelink/pkg/slogx"

	_ "github.com/talentwire/pagelink/api/connect" // Swagger docs
)

// Scopes the host CRM grants operator sessions for this service.
const (
	ScopeIntegrationsRead  = "integrations:read"
	ScopeIntegrationsWrite = "integrations:write"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *httpx.SessionVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	ExchangeService *service.ExchangeService
	TokenService    *service.TokenService
}

func NewRouter(
	verifier *httpx.SessionVerifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.MetricsMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerFacebook()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Pagelink Facebook Integration API
//	@version		0.1.0
//	@description	Facebook Page connection service for the recruiting CRM. Exchanges short-lived
//	@description	user tokens for page-scoped access tokens and stores them encrypted at rest.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator session token minted by the host CRM. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerFacebook() {
	pagesHandler := &ManageablePagesHandler{ExchangeService: r.ExchangeService}
	tokensHandler := &PageTokensHandler{TokenService: r.TokenService}

	// POST /get-manageable-pages - strict rate limit: every hit costs two
	// upstream Graph calls and carries a user credential.
	r.Mux.Handle("POST /api/facebook/get-manageable-pages",
		httpx.Chain(pagesHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeIntegrationsWrite),
			httpx.RateLimitByOperator(httpx.StrictLimit),
		),
	)

	// POST /store-page-token - moderate rate limit by operator
	r.Mux.Handle("POST /api/facebook/store-page-token",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleStore),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeIntegrationsWrite),
			httpx.RateLimitByOperator(httpx.ModerateLimit),
		),
	)

	// GET /page-tokens - lenient rate limit, read-only
	r.Mux.Handle("GET /api/facebook/page-tokens",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeIntegrationsRead, ScopeIntegrationsWrite),
			httpx.RateLimitByOperator(httpx.LenientLimit),
		),
	)

	// DELETE /page-tokens/{pageId} - disconnect a page
	r.Mux.Handle("DELETE /api/facebook/page-tokens/{pageId}",
		httpx.Chain(http.HandlerFunc(tokensHandler.HandleDisconnect),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(ScopeIntegrationsWrite),
			httpx.RateLimitByOperator(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
