// Package http is the thin HTTP surface over the auth services: one handler
// per endpoint, sentinel-to-status mapping at the boundary, rate limits on
// everything an attacker would hammer.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wonfolio/auth/internal/auth/service"
	"github.com/wonfolio/auth/internal/auth/session"
	"github.com/wonfolio/auth/internal/auth/store"
	"github.com/wonfolio/auth/pkg/httpx"
	"github.com/wonfolio/auth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	version   string
	startTime time.Time
	logger    *slog.Logger

	store   store.Store
	session session.Store

	TokenService  *service.TokenService
	UserService   *service.UserService
	SocialService *service.SocialService
	EmailService  *service.EmailService
}

func NewRouter(version string, st store.Store, sess session.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		version:   version,
		startTime: time.Now(),
		logger:    logger,
		store:     st,
		session:   sess,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerEmail()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential endpoints get the strict limit: they are the brute force
	// targets.
	r.Mux.Handle("POST /api/auth/signup",
		httpx.Chain(&SignupHandler{UserService: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{UserService: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/reissue",
		httpx.Chain(&ReissueHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Token-present logout authenticates through its own payload; the
	// subject-only form needs the bearer middleware.
	r.Mux.Handle("DELETE /api/auth/logout",
		httpx.Chain(&LogoutHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/auth/logout/user",
		httpx.Chain(&LogoutUserHandler{TokenService: r.TokenService},
			BearerMiddleware(r.TokenService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/social/{provider}",
		httpx.Chain(&SocialLoginHandler{SocialService: r.SocialService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(&ProfileHandler{UserService: r.UserService},
			BearerMiddleware(r.TokenService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/auth/profile",
		httpx.Chain(&UpdateProfileHandler{UserService: r.UserService},
			BearerMiddleware(r.TokenService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /api/auth/profile",
		httpx.Chain(&WithdrawHandler{UserService: r.UserService},
			BearerMiddleware(r.TokenService),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/password/reset",
		httpx.Chain(&PasswordResetHandler{UserService: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerEmail() {
	r.Mux.Handle("POST /api/email/send",
		httpx.Chain(&EmailSendHandler{EmailService: r.EmailService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/email/verify",
		httpx.Chain(&EmailVerifyHandler{EmailService: r.EmailService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/email/reset",
		httpx.Chain(&PasswordResetSendHandler{EmailService: r.EmailService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.version))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.version, r.store, r.session))
}
