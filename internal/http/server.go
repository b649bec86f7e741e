package http

import (
	stdhttp "net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"gerbier/site/internal/auth"
	"gerbier/site/internal/imaging"
	"gerbier/site/internal/post"
	"gerbier/site/internal/render"
)

// Options configures the HTTP server wiring.
type Options struct {
	PostService post.Service
	AuthService *auth.Service
	Renderer    *render.Renderer
	Compressor  *imaging.Compressor
	Database    *gorm.DB
	Logger      *logrus.Logger
	SentryHub   *sentry.Hub
	RateLimiter RateLimiterSettings
	SiteAuthor  string
}

// RateLimiterSettings configures the HTTP rate limiter behaviour. Login
// attempts share the ClientTTL but run on a fixed, much tighter budget.
type RateLimiterSettings struct {
	RequestsPerSecond float64
	Burst             int
	ClientTTL         time.Duration
}

const (
	loginLimiterBurst  = 5
	loginLimiterRefill = 0.2
)

// Server wires the HTTP transport layer via Huma and templ components.
type Server struct {
	api          huma.API
	mux          *stdhttp.ServeMux
	posts        post.Service
	auth         *auth.Service
	renderer     *render.Renderer
	compressor   *imaging.Compressor
	logger       *logrus.Logger
	sentry       *sentry.Hub
	db           *gorm.DB
	rateLimiter  *RateLimiter
	loginLimiter *RateLimiter
	siteAuthor   string
}

// NewServer constructs the HTTP server.
func NewServer(opts Options) (*Server, error) {
	if opts.PostService == nil {
		return nil, eris.New("post service is required")
	}
	if opts.AuthService == nil {
		return nil, eris.New("auth service is required")
	}
	if opts.Renderer == nil {
		return nil, eris.New("renderer is required")
	}
	if opts.Compressor == nil {
		return nil, eris.New("image compressor is required")
	}
	if opts.Database == nil {
		return nil, eris.New("database is required")
	}

	mux := stdhttp.NewServeMux()
	config := huma.DefaultConfig("Gerbier", "1.0.0")

	api := humago.New(mux, config)

	srv := &Server{
		api:        api,
		mux:        mux,
		posts:      opts.PostService,
		auth:       opts.AuthService,
		renderer:   opts.Renderer,
		compressor: opts.Compressor,
		logger:     opts.Logger,
		sentry:     opts.SentryHub,
		db:         opts.Database,
		siteAuthor: opts.SiteAuthor,
	}

	settings := opts.RateLimiter
	if settings.Burst <= 0 {
		return nil, eris.New("rate limiter burst must be greater than zero")
	}
	if settings.RequestsPerSecond <= 0 {
		return nil, eris.New("rate limiter requests per second must be greater than zero")
	}
	if settings.ClientTTL <= 0 {
		return nil, eris.New("rate limiter client TTL must be greater than zero")
	}

	srv.rateLimiter = NewRateLimiter(settings.Burst, settings.RequestsPerSecond, settings.ClientTTL)
	srv.loginLimiter = NewRateLimiter(loginLimiterBurst, loginLimiterRefill, settings.ClientTTL)

	srv.registerMiddlewares()
	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the underlying HTTP handler for wiring into the application.
func (s *Server) Handler() stdhttp.Handler {
	return s.mux
}

// API exposes the underlying Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerMiddlewares() {
	s.api.UseMiddleware(
		s.sentryMiddleware(),
		s.recoveryMiddleware(),
		s.requestIDMiddleware(),
		s.rateLimitMiddleware(),
		s.authMiddleware(),
		s.loggingMiddleware(),
	)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /favicon.ico", faviconHandler)
	s.mux.HandleFunc("HEAD /favicon.ico", faviconHandler)

	s.registerHomeRoute()
	s.registerBioRoute()
	s.registerPublicationsRoute()
	s.registerPostRoute()
	s.registerPostPDFRoute()
	s.registerHealthRoute()
	s.registerAdminRoutes()
}

func (s *Server) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	s.mux.ServeHTTP(w, r)
}
