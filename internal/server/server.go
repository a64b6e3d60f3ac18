package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/safetrade/site/internal/assets"
	"github.com/safetrade/site/internal/clock"
	"github.com/safetrade/site/internal/config"
	"github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/inbox"
	"github.com/safetrade/site/internal/live"
	"github.com/safetrade/site/internal/ratelimit"
	"github.com/safetrade/site/internal/widget"
	"github.com/safetrade/site/pkg/middleware"
	"github.com/safetrade/site/pkg/render"
)

// Options configures a Server. Config and Catalog are required.
type Options struct {
	Config  *config.Config
	Catalog *i18n.Catalog

	// Inbox delivers contact submissions. Required.
	Inbox widget.Submitter

	// Clock drives widget timers and the footer year. Default: clock.Real().
	Clock clock.Clock

	// Metrics may be nil.
	Metrics *middleware.Metrics

	// Assets are the static files. Default: assets.Static().
	Assets fs.FS

	Logger *slog.Logger
}

// Server is the site's HTTP server.
type Server struct {
	config     *config.Config
	catalog    *i18n.Catalog
	negotiator *i18n.Negotiator
	inbox      widget.Submitter
	clock      clock.Clock
	metrics    *middleware.Metrics
	limiter    *ratelimit.Limiter
	live       *live.Handler
	renderer   *render.Renderer
	assets     assets.Resolver
	router     chi.Router
	logger     *slog.Logger

	httpServer *http.Server
}

// New builds the server and its routes.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	if opts.Catalog == nil {
		return nil, errors.New("S010").WithDetail("no catalog given")
	}
	if !opts.Catalog.Has(cfg.Site.DefaultLocale) {
		return nil, errors.New("S011").WithDetailf("site.defaultLocale is %q", cfg.Site.DefaultLocale)
	}
	if opts.Inbox == nil {
		return nil, errors.New("S020").WithDetail("no inbox given")
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Assets == nil {
		opts.Assets = assets.Static()
	}

	manifest, err := assets.Build(opts.Assets)
	if err != nil {
		return nil, err
	}
	resolver := assets.NewResolver(manifest, "/assets/")
	if cfg.Dev {
		resolver = assets.NewPassthroughResolver("/assets/")
	}

	s := &Server{
		config:     cfg,
		catalog:    opts.Catalog,
		negotiator: i18n.NewNegotiator(opts.Catalog, cfg.Site.DefaultLocale),
		inbox:      inbox.Instrument(opts.Inbox, opts.Metrics, cfg.Tracing.TracerName, opts.Logger),
		clock:      opts.Clock,
		metrics:    opts.Metrics,
		limiter:    ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 0),
		renderer:   render.NewRenderer(render.RendererConfig{Pretty: cfg.Dev}),
		assets:     resolver,
		logger:     opts.Logger,
	}
	s.live = live.NewHandler(live.Config{
		Catalog:        s.catalog,
		Negotiator:     s.negotiator,
		Inbox:          opts.Inbox,
		Limiter:        s.limiter,
		Clock:          s.clock,
		SuccessDisplay: cfg.Contact.SuccessDisplay.Std(),
		Metrics:        s.metrics,
		TracerName:     cfg.Tracing.TracerName,
		Logger:         s.logger,
		ReadTimeout:    2 * cfg.Server.PingInterval.Std(),
		PingInterval:   cfg.Server.PingInterval.Std(),
	})
	s.router = s.routes(opts.Assets, manifest)
	return s, nil
}

func (s *Server) routes(static fs.FS, manifest *assets.Manifest) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.HTTP)
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerName(s.config.Tracing.TracerName),
		middleware.WithRequestFilter(traced),
	))

	r.Get("/", s.handleIndex)
	r.With(s.limiter.Middleware).Post("/contact", s.handleContact)
	r.Get("/contact", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/#contact", http.StatusMovedPermanently)
	})
	r.Handle("/live", s.live)
	r.Get("/healthz", handleHealth)
	if !s.config.Metrics.Disabled && s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	r.Mount("/assets", http.StripPrefix("/assets", assets.Handler(static, manifest)))
	return r
}

// traced skips probes, scrapes and static files.
func traced(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics", "/live":
		return false
	}
	return !strings.HasPrefix(r.URL.Path, "/assets/")
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx ends, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return s.failed(errors.New("S030").WithDetail(s.config.Addr()).Wrap(err))
	}
	return s.Serve(ctx, ln)
}

// failed logs a server failure and returns it.
func (s *Server) failed(se *errors.SiteError) error {
	s.logger.Error("server failed", "code", se.Code, "error", se.FormatCompact(), "cause", se.Wrapped)
	return se
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.config.Server.ReadTimeout.Std(),
		WriteTimeout:      s.config.Server.WriteTimeout.Std(),
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go s.limiter.Run(sweepCtx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return s.failed(errors.New("S030").Wrap(err))
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes live sessions, then drains HTTP requests, bounded by the
// configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := s.live.Shutdown(ctx); err != nil {
		s.logger.Warn("live sessions did not close in time", "error", err)
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
