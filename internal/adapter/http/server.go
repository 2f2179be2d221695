package adapthttp

import (
	"html/template"
	"net/http"
	"time"

	"tasklist/internal/app"
	"tasklist/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the driving HTTP adapter that routes requests to application
// services and renders HTML views.
type Server struct {
	authSvc      *app.AuthService
	tasks        *app.TaskService
	log          *zap.Logger
	views        *template.Template
	health       []domain.Pinger
	oidcConfig   *OIDCConfig
	cookieSecure bool
}

// New creates a Server wired to the given application services.
func New(authSvc *app.AuthService, tasks *app.TaskService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		authSvc:    authSvc,
		tasks:      tasks,
		log:        log,
		views:      mustParseViews(),
		oidcConfig: &OIDCConfig{},
	}
}

// WithHealthCheck adds stores for /healthz to ping. Every one must answer.
func (s *Server) WithHealthCheck(p ...domain.Pinger) *Server {
	for _, pinger := range p {
		if pinger != nil {
			s.health = append(s.health, pinger)
		}
	}
	return s
}

// WithOIDC enables single sign-on.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	if cfg != nil {
		s.oidcConfig = cfg
	}
	return s
}

// WithSecureCookies marks the session cookie Secure.
func (s *Server) WithSecureCookies(secure bool) *Server {
	s.cookieSecure = secure
	return s
}

// Handler returns the root http.Handler for the application. Middleware runs
// in the order it is registered here; session resolution must precede every
// route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(withNoCache)
	r.Use(s.sessionMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Get("/", s.handleIndex)
	r.Get("/signup", s.handleSignupForm)
	r.Post("/signup", s.handleSignup)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)

	r.Get("/auth/sso/login", s.handleSSOLogin)
	r.Get("/auth/sso/callback", s.handleSSOCallback)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Get("/logout", s.handleLogout)
		r.Get("/home", s.handleHome)
		r.Post("/add", s.handleAdd)
		r.Get("/edit/{id}", s.handleEdit)
		r.Post("/update/{id}", s.handleUpdate)
		r.Get("/delete/{id}", s.handleDelete)
	})

	return r
}

// NewHTTPServer wraps h with the timeouts used in production.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
