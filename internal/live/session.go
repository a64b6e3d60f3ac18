package live

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/sections"
	"github.com/safetrade/site/internal/widget"
	"github.com/safetrade/site/pkg/middleware"
	"github.com/safetrade/site/pkg/vdom"
)

// Session is one live connection and the widgets mounted for it.
type Session struct {
	ID     string
	Locale string

	handler *Handler
	conn    *websocket.Conn
	tr      i18n.Translator
	metrics *middleware.Metrics
	logger  *slog.Logger

	contact  *widget.Contact
	carousel *widget.Carousel
	faq      *widget.Accordion

	// inputSeq is the Seq of the last contact input applied.
	inputSeq atomic.Uint64

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(h *Handler, conn *websocket.Conn, locale string, sub widget.Submitter) *Session {
	id := generateSessionID()
	s := &Session{
		ID:       id,
		Locale:   locale,
		handler:  h,
		conn:     conn,
		tr:       h.translator(locale),
		metrics:  h.config.Metrics,
		logger:   h.config.Logger.With("session_id", id, "locale", locale),
		carousel: widget.NewCarousel(sections.Testimonials()),
		faq:      widget.NewAccordion(sections.FAQCount, 0),
		done:     make(chan struct{}),
	}
	s.contact = widget.NewContact(widget.ContactOptions{
		Translator:     s.tr,
		Submitter:      sub,
		Clock:          h.config.Clock,
		SuccessDisplay: h.config.SuccessDisplay,
		OnChange:       func() { s.push(sections.WidgetContact) },
	})
	return s
}

// mount positions the widgets to match the page the browser rendered.
func (s *Session) mount(q url.Values) {
	if i, err := strconv.Atoi(q.Get(sections.TestimonialParam)); err == nil {
		s.carousel.Select(i)
	}
	if q.Get(sections.SentParam) == "1" {
		if err := s.contact.ShowConfirmation(); err != nil {
			s.logger.Debug("confirmation not shown", "error", err)
		}
	}
}

// run reads events until the connection ends, then unmounts the widgets.
func (s *Session) run() {
	defer s.Close()

	cfg := s.handler.config
	s.logger.Debug("session opened")

	s.conn.SetReadLimit(cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	go s.pingLoop()

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			s.logger.Debug("event decode error", "error", err)
			continue
		}
		s.handle(ev)
	}
}

func (s *Session) pingLoop() {
	ticker := time.NewTicker(s.handler.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(s.handler.config.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// handle applies one event. Events for unknown widgets or types are
// dropped without touching the metrics.
func (s *Session) handle(ev Event) {
	if !s.apply(ev) {
		s.logger.Debug("unknown event", "widget", ev.Widget, "type", ev.Type)
		return
	}
	s.metrics.RecordLiveEvent(ev.Widget, ev.Type)
}

func (s *Session) apply(ev Event) bool {
	switch ev.Widget {
	case sections.WidgetContact:
		return s.applyContact(ev)

	case sections.WidgetTestimonials:
		switch ev.Type {
		case EventNext:
			s.carousel.Next()
		case EventPrev:
			s.carousel.Prev()
		case EventSelect:
			s.carousel.Select(ev.Index)
		default:
			return false
		}
		s.push(sections.WidgetTestimonials)
		return true

	case sections.WidgetFAQ:
		if ev.Type != EventToggle {
			return false
		}
		s.faq.Toggle(ev.Index)
		s.push(sections.WidgetFAQ)
		return true
	}
	return false
}

func (s *Session) applyContact(ev Event) bool {
	switch ev.Type {
	case EventInput:
		field, ok := widget.ParseField(ev.Field)
		if !ok {
			s.logger.Debug("unknown field", "field", ev.Field)
			return true
		}
		// Edits during the confirmation view are dropped.
		if err := s.contact.UpdateField(field, ev.Value); err != nil && !errors.Is(err, widget.ErrNotEditable) {
			s.logger.Debug("update rejected", "field", field, "error", err)
		}
		// Stored after the update so a fragment never claims an input it
		// does not render yet.
		if ev.Seq > s.inputSeq.Load() {
			s.inputSeq.Store(ev.Seq)
		}
		return true

	case EventSubmit:
		err := s.contact.Submit()
		switch {
		case err == nil:
		case errors.Is(err, widget.ErrInvalid):
			s.metrics.RecordSubmission(middleware.OutcomeInvalid)
			for field := range s.contact.Snapshot().Errors {
				s.metrics.RecordValidationFailure(string(field))
			}
		default:
			s.logger.Debug("submit rejected", "error", err)
		}
		return true
	}
	return false
}

// render builds the current markup of one widget.
func (s *Session) render(name string) (*vdom.VNode, bool) {
	switch name {
	case sections.WidgetContact:
		return sections.ContactWidget(s.tr, s.contact.Snapshot()), true
	case sections.WidgetTestimonials:
		return sections.TestimonialsWidget(s.tr, s.carousel), true
	case sections.WidgetFAQ:
		return sections.FAQWidget(s.tr, s.faq), true
	}
	return nil, false
}

// push sends the current markup of one widget. The widget is rendered
// under the write lock so the last frame sent always reflects the latest
// state.
func (s *Session) push(name string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}

	frag := Fragment{Widget: name}
	if name == sections.WidgetContact {
		frag.Seq = s.inputSeq.Load()
	}
	node, ok := s.render(name)
	if !ok {
		return
	}
	html, err := s.handler.renderer.RenderToString(node)
	if err != nil {
		s.logger.Error("render failed", "widget", name, "error", err)
		return
	}
	frag.HTML = html

	s.conn.SetWriteDeadline(time.Now().Add(s.handler.config.WriteTimeout))
	if err := s.conn.WriteJSON(frag); err != nil {
		s.logger.Debug("write failed", "widget", name, "error", err)
	}
}

// Close unmounts the widgets and closes the connection. It waits for an
// in-flight submission to observe the cancellation. Safe to call more than
// once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		close(s.done)
		s.writeMu.Unlock()

		s.contact.Dispose()
		s.contact.Wait()

		s.writeMu.Lock()
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.writeMu.Unlock()
		s.conn.Close()

		s.logger.Debug("session closed")
	})
}
