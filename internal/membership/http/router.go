package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ziberlive/colive/internal/membership/media"
	"github.com/ziberlive/colive/internal/membership/service"
	"github.com/ziberlive/colive/internal/membership/store"
	"github.com/ziberlive/colive/pkg/httpx"
	"github.com/ziberlive/colive/pkg/jwtx"
	"github.com/ziberlive/colive/pkg/slogx"

	_ "github.com/ziberlive/colive/api/membership" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	// Limits are applied per endpoint class. Set before ApplyRoutes.
	Limits httpx.RateLimitProfiles

	store               store.Store
	AuthService         *service.AuthService
	BootstrapService    *service.BootstrapService
	InviteService       *service.InviteService
	RegistrationService *service.RegistrationService
	ApprovalService     *service.ApprovalService
	MemberService       *service.MemberService
	LocationService     *service.LocationService
	Uploader            *media.Uploader // Optional: uploads answer 503 when nil
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       httpx.DefaultRateLimitProfiles(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSystem()
	r.registerBootstrap()
	r.registerAuth()
	r.registerInvites()
	r.registerRegistrations()
	r.registerApplications()
	r.registerMembers()
	r.registerLocations()
	r.registerUploads()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Colive Membership Service API
//	@version		0.1.0
//	@description	Invite, registration and approval workflow for shared living communities.
//	@description
//	@description				Access tokens are EdDSA signed JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				Colive Team
//	@contact.url				https://github.com/ziberlive/colive
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps h with token verification, a scope check and a per-user limit.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig, scopes ...string) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier), // verify JWT (iss/aud/exp)
		httpx.RequireAnyScope(scopes...),  // enforce scopes
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (credential checks)
	login := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	me := &MeHandler{MemberService: r.MemberService}
	r.Mux.Handle("GET /v1/me", r.secured(me, r.Limits.Lenient, service.ScopeProfileRead))
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	// Administration - moderate rate limit by user
	r.Mux.Handle("GET /v1/invites/code",
		r.secured(http.HandlerFunc(h.HandleGenerateCode), r.Limits.Moderate, service.ScopeAdminWrite))
	r.Mux.Handle("POST /v1/invites",
		r.secured(http.HandlerFunc(h.HandleCreate), r.Limits.Moderate, service.ScopeAdminWrite))
	r.Mux.Handle("GET /v1/invites",
		r.secured(http.HandlerFunc(h.HandleList), r.Limits.Moderate, service.ScopeAdminRead))
	r.Mux.Handle("PATCH /v1/invites/{id}",
		r.secured(http.HandlerFunc(h.HandleSetActive), r.Limits.Moderate, service.ScopeAdminWrite))
	r.Mux.Handle("GET /v1/invites/{code}/qr",
		r.secured(http.HandlerFunc(h.HandleQR), r.Limits.Lenient, service.ScopeAdminRead))

	// POST /invites/validate - moderate rate limit by IP (public, guessable codes)
	r.Mux.Handle("POST /v1/invites/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)

	// GET /join/{code} - the target of printed and scanned links
	r.Mux.Handle("GET /join/{code}",
		httpx.Chain(http.HandlerFunc(h.HandleJoin),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
}

func (r *Router) registerRegistrations() {
	h := &RegistrationHandler{RegistrationService: r.RegistrationService}

	r.Mux.Handle("POST /v1/registrations/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidateStage),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	// POST /registrations - moderate rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /v1/registrations",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/registrations/invite",
		r.secured(http.HandlerFunc(h.HandleClaimInvite), r.Limits.Moderate, service.ScopeProfileRead))
}

func (r *Router) registerApplications() {
	h := &ApplicationsHandler{ApprovalService: r.ApprovalService}

	r.Mux.Handle("GET /v1/applications",
		r.secured(http.HandlerFunc(h.HandleList), r.Limits.Lenient, service.ScopeAdminRead))
	r.Mux.Handle("POST /v1/applications/{id}/approve",
		r.secured(http.HandlerFunc(h.HandleApprove), r.Limits.Moderate, service.ScopeAdminWrite))
	r.Mux.Handle("POST /v1/applications/{id}/reject",
		r.secured(http.HandlerFunc(h.HandleReject), r.Limits.Moderate, service.ScopeAdminWrite))
}

func (r *Router) registerMembers() {
	h := &MembersHandler{MemberService: r.MemberService}

	r.Mux.Handle("GET /v1/members",
		r.secured(http.HandlerFunc(h.HandleDirectory), r.Limits.Lenient, service.ScopeMemberRead))
	r.Mux.Handle("PUT /v1/members/{id}/role",
		r.secured(http.HandlerFunc(h.HandleUpdateRole), r.Limits.Moderate, service.ScopeAdminWrite))
	r.Mux.Handle("PUT /v1/members/{id}/status",
		r.secured(http.HandlerFunc(h.HandleUpdateStatus), r.Limits.Moderate, service.ScopeAdminWrite))
}

func (r *Router) registerLocations() {
	h := &LocationsHandler{
		LocationService: r.LocationService,
		ApprovalService: r.ApprovalService,
	}

	r.Mux.Handle("POST /v1/locations",
		r.secured(http.HandlerFunc(h.HandleCreate), r.Limits.Moderate, service.ScopeAdminWrite))
	r.Mux.Handle("GET /v1/locations",
		r.secured(http.HandlerFunc(h.HandleList), r.Limits.Lenient, service.ScopeAdminRead))
	r.Mux.Handle("GET /v1/locations/available",
		r.secured(http.HandlerFunc(h.HandleAvailable), r.Limits.Lenient, service.ScopeAdminRead))
}

func (r *Router) registerUploads() {
	// POST /uploads - strict rate limit by IP (public, large bodies)
	h := &UploadHandler{Uploader: r.Uploader}
	r.Mux.Handle("POST /v1/uploads",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}
