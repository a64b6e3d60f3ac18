package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/safetrade/site/internal/clock"
	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/inbox"
	"github.com/safetrade/site/internal/ratelimit"
	"github.com/safetrade/site/internal/widget"
	"github.com/safetrade/site/pkg/middleware"
	"github.com/safetrade/site/pkg/render"
)

// Config configures the live endpoint.
type Config struct {
	// Catalog and Negotiator pick each session's translator.
	Catalog    *i18n.Catalog
	Negotiator *i18n.Negotiator

	// Inbox delivers contact submissions. Default: widget.Simulated.
	Inbox widget.Submitter

	// Limiter, when set, bounds submissions per client IP.
	Limiter *ratelimit.Limiter

	// Clock drives widget timers. Default: clock.Real().
	Clock clock.Clock

	// SuccessDisplay is passed to every contact widget.
	SuccessDisplay time.Duration

	Metrics    *middleware.Metrics
	TracerName string
	Logger     *slog.Logger

	// ReadTimeout is how long a connection may stay silent. Pongs count.
	// Default: 60s.
	ReadTimeout time.Duration

	// WriteTimeout bounds each frame write. Default: 10s.
	WriteTimeout time.Duration

	// PingInterval is how often the server pings. Default: 30s.
	PingInterval time.Duration

	// MaxMessageSize caps inbound frames. Default: 16 KiB.
	MaxMessageSize int64

	// CheckOrigin validates the upgrade's Origin header.
	// Default: same host only (gorilla's default).
	CheckOrigin func(r *http.Request) bool
}

func (c *Config) applyDefaults() {
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	if c.Inbox == nil {
		c.Inbox = widget.NewSimulated(c.Clock)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 60 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 16 << 10
	}
}

// Handler upgrades requests to live sessions.
type Handler struct {
	config   Config
	upgrader websocket.Upgrader
	renderer *render.Renderer

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewHandler creates a live endpoint handler.
func NewHandler(config Config) *Handler {
	config.applyDefaults()
	return &Handler{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		renderer: render.NewRenderer(render.RendererConfig{}),
		sessions: make(map[*Session]struct{}),
	}
}

// ServeHTTP upgrades the connection and runs the session until it ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		h.config.Logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	locale := h.locale(r)
	s := newSession(h, conn, locale, h.submitter(ratelimit.ClientIP(r)))

	s.metrics.RecordSessionOpen()
	defer s.metrics.RecordSessionClose()

	if !h.track(s) {
		s.Close()
		return
	}
	defer h.untrack(s)

	s.mount(r.URL.Query())
	s.run()
}

func (h *Handler) locale(r *http.Request) string {
	if h.config.Negotiator == nil {
		return ""
	}
	locale, _ := h.config.Negotiator.Resolve(r)
	return locale
}

func (h *Handler) translator(locale string) i18n.Translator {
	if h.config.Catalog == nil {
		return i18n.Keys
	}
	return h.config.Catalog.Translator(locale)
}

// submitter builds the per-connection delivery chain: rate limit, then
// tracing and metrics, then the inbox.
func (h *Handler) submitter(ip string) widget.Submitter {
	next := h.config.Inbox
	if h.config.Limiter != nil {
		next = h.config.Limiter.Submitter(ip, next)
	}
	return inbox.Instrument(next, h.config.Metrics, h.config.TracerName, h.config.Logger)
}

func (h *Handler) track(s *Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Handler) untrack(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
	h.wg.Done()
}

// Len returns the number of open sessions.
func (h *Handler) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Shutdown closes every session, refuses new ones, and waits for the
// sessions to unmount or ctx to end.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	open := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
