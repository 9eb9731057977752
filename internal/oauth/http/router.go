package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/service"
	"github.com/stackfort/oauthd/internal/oauth/store"
	"github.com/stackfort/oauthd/pkg/httpx"
	"github.com/stackfort/oauthd/pkg/sessionx"
	"github.com/stackfort/oauthd/pkg/slogx"

	_ "github.com/stackfort/oauthd/api/oauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions     *sessionx.Manager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	metrics      http.Handler

	RegistryService  *service.RegistryService
	CodeService      *service.CodeService
	GrantService     *service.GrantService
	LifecycleService *service.LifecycleService
}

func NewRouter(
	sessions *sessionx.Manager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	metricsHandler http.Handler,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sessions:     sessions,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		metrics:      metricsHandler,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerClients()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			oauthd API
//	@version		0.1.0
//	@description	OAuth 2.0 authorization server core: opaque token issuance
//	@description	(authorization_code with PKCE, client_credentials,
//	@description	refresh_token with rotation), RFC 7009 revocation, RFC 7662
//	@description	introspection, and an owner-scoped client management surface.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	// POST /token - strict rate limit by IP, covers all grant types
	tokenHandler := &TokenHandler{GrantService: r.GrantService}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /revoke - moderate rate limit
	revokeHandler := &RevokeHandler{
		RegistryService:  r.RegistryService,
		LifecycleService: r.LifecycleService,
	}
	r.Mux.Handle("POST /v1/oauth2/revoke",
		httpx.Chain(revokeHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /introspect - moderate rate limit
	introspectHandler := &IntrospectHandler{
		RegistryService:  r.RegistryService,
		LifecycleService: r.LifecycleService,
	}
	r.Mux.Handle("POST /v1/oauth2/introspect",
		httpx.Chain(introspectHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /authorize - session-authenticated code minting, strict limit
	authorizeHandler := &AuthorizeHandler{CodeService: r.CodeService}
	r.Mux.Handle("POST /v1/oauth2/authorize",
		httpx.Chain(authorizeHandler,
			httpx.SessionMiddleware(r.sessions),
			httpx.RateLimitBySubject(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{RegistryService: r.RegistryService}

	secured := func(hf http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(hf,
			httpx.SessionMiddleware(r.sessions),
			httpx.RateLimitBySubject(limit),
		)
	}

	r.Mux.Handle("POST /v1/clients", secured(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/clients", secured(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /v1/clients/{id}", secured(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/clients/{id}", secured(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("POST /v1/clients/{id}/secret", secured(h.HandleRegenerateSecret, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/clients/{id}", secured(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics)
	}
}
