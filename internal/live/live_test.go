package live

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/safetrade/site/internal/clock"
	"github.com/safetrade/site/internal/i18n"
	"github.com/safetrade/site/internal/inbox"
	"github.com/safetrade/site/internal/ratelimit"
	"github.com/safetrade/site/internal/sections"
	"github.com/safetrade/site/pkg/middleware"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	handler *Handler
	server  *httptest.Server
	clock   *clock.Fake
	inbox   *inbox.Memory
	metrics *middleware.Metrics
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()
	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		clock:   clock.NewFake(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		inbox:   inbox.NewMemory(),
		metrics: middleware.NewMetrics(middleware.WithRegistry(prometheus.NewRegistry())),
	}
	cfg := Config{
		Catalog:        catalog,
		Negotiator:     i18n.NewNegotiator(catalog, "en-US"),
		Inbox:          f.inbox,
		Clock:          f.clock,
		SuccessDisplay: 5 * time.Second,
		Metrics:        f.metrics,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	f.handler = NewHandler(cfg)
	f.server = httptest.NewServer(f.handler)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		f.handler.Shutdown(ctx)
		f.server.Close()
	})
	return f
}

func (f *fixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/live" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for f.handler.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("session was not registered")
		}
		time.Sleep(time.Millisecond)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, ev Event) {
	t.Helper()
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) Fragment {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frag Fragment
	if err := conn.ReadJSON(&frag); err != nil {
		t.Fatalf("read: %v", err)
	}
	return frag
}

// receiveUntil reads fragments until one of widget contains want.
func receiveUntil(t *testing.T, conn *websocket.Conn, widget, want string) Fragment {
	t.Helper()
	for i := 0; i < 20; i++ {
		frag := receive(t, conn)
		if frag.Widget == widget && strings.Contains(frag.HTML, want) {
			return frag
		}
	}
	t.Fatalf("no %s fragment containing %q", widget, want)
	return Fragment{}
}

func counter(t *testing.T, m *middleware.Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if v, ok := labels[lp.GetName()]; ok && v != lp.GetValue() {
					continue next
				}
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	return 0
}

func TestContactRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventInput, Field: "name", Value: "Ivan"})
	frag := receive(t, conn)
	if frag.Widget != sections.WidgetContact || !strings.Contains(frag.HTML, `value="Ivan"`) {
		t.Fatalf("unexpected fragment: %+v", frag)
	}

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventInput, Field: "email", Value: "ivan@example.com"})
	receive(t, conn)
	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventInput, Field: "message", Value: "Hello"})
	receive(t, conn)

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventSubmit})
	receiveUntil(t, conn, sections.WidgetContact, "Message sent!")

	if f.inbox.Len() != 1 {
		t.Fatalf("inbox has %d submissions, want 1", f.inbox.Len())
	}
	got := f.inbox.List()[0]
	if got.Name != "Ivan" || got.Email != "ivan@example.com" || got.Locale != "en-US" {
		t.Errorf("submission = %+v", got)
	}

	f.clock.Advance(5 * time.Second)
	frag = receiveUntil(t, conn, sections.WidgetContact, "Send Message")
	if strings.Contains(frag.HTML, "Message sent!") {
		t.Error("success view still shown after the display window")
	}

	if v := counter(t, f.metrics, "safetrade_contact_submissions_total", map[string]string{"outcome": "delivered"}); v != 1 {
		t.Errorf("delivered submissions = %v, want 1", v)
	}
	if v := counter(t, f.metrics, "safetrade_live_events_total", map[string]string{"widget": "contact", "type": "input"}); v != 3 {
		t.Errorf("input events = %v, want 3", v)
	}
}

func TestContactInvalidSubmit(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventSubmit})
	frag := receive(t, conn)
	for _, want := range []string{"Please enter your name.", "Please enter your email address.", "Please enter a message."} {
		if !strings.Contains(frag.HTML, want) {
			t.Errorf("fragment missing %q", want)
		}
	}
	if f.inbox.Len() != 0 {
		t.Error("invalid form reached the inbox")
	}

	for _, field := range []string{"name", "email", "message"} {
		if v := counter(t, f.metrics, "safetrade_contact_validation_failures_total", map[string]string{"field": field}); v != 1 {
			t.Errorf("validation failures for %s = %v, want 1", field, v)
		}
	}
	if v := counter(t, f.metrics, "safetrade_contact_submissions_total", map[string]string{"outcome": "invalid"}); v != 1 {
		t.Errorf("invalid submissions = %v, want 1", v)
	}
}

func TestContactRateLimited(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		c.Limiter = ratelimit.New(0.0001, 1, time.Minute)
	})
	conn := f.dial(t, "")

	fill := func() {
		for _, ev := range []Event{
			{Widget: sections.WidgetContact, Type: EventInput, Field: "name", Value: "Ivan"},
			{Widget: sections.WidgetContact, Type: EventInput, Field: "email", Value: "ivan@example.com"},
			{Widget: sections.WidgetContact, Type: EventInput, Field: "message", Value: "Hello"},
		} {
			send(t, conn, ev)
			receive(t, conn)
		}
	}

	fill()
	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventSubmit})
	receiveUntil(t, conn, sections.WidgetContact, "Message sent!")
	f.clock.Advance(5 * time.Second)
	receiveUntil(t, conn, sections.WidgetContact, "Send Message")

	fill()
	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventSubmit})
	frag := receiveUntil(t, conn, sections.WidgetContact, "Too many messages.")
	if !strings.Contains(frag.HTML, `value="Ivan"`) {
		t.Error("fields should be kept after a rejected submission")
	}
	if f.inbox.Len() != 1 {
		t.Errorf("inbox has %d submissions, want 1", f.inbox.Len())
	}
	if v := counter(t, f.metrics, "safetrade_contact_submissions_total", map[string]string{"outcome": "rate_limited"}); v != 1 {
		t.Errorf("rate limited submissions = %v, want 1", v)
	}
}

func TestCarouselAndAccordion(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventNext})
	frag := receive(t, conn)
	if frag.Widget != sections.WidgetTestimonials || !strings.Contains(frag.HTML, "Maria Garcia") {
		t.Errorf("next fragment = %+v", frag)
	}

	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventPrev})
	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventPrev})
	receive(t, conn)
	frag = receive(t, conn)
	if !strings.Contains(frag.HTML, "Sarah Williams") || !strings.Contains(frag.HTML, "4 / 4") {
		t.Errorf("prev should wrap to the last testimonial: %s", frag.HTML)
	}

	send(t, conn, Event{Widget: sections.WidgetFAQ, Type: EventToggle, Index: 2})
	frag = receive(t, conn)
	if frag.Widget != sections.WidgetFAQ {
		t.Fatalf("widget = %q", frag.Widget)
	}
	if got := strings.Count(frag.HTML, `<details class="faq-item" open>`); got != 1 {
		t.Errorf("open items = %d, want 1: %s", got, frag.HTML)
	}
	if !strings.Contains(frag.HTML, `<details class="faq-item" open><summary data-event="toggle" data-index="2">`) {
		t.Errorf("item 3 should be open: %s", frag.HTML)
	}
}

func TestCarouselSelect(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventSelect, Index: 2})
	frag := receive(t, conn)
	if frag.Widget != sections.WidgetTestimonials || !strings.Contains(frag.HTML, "3 / 4") {
		t.Fatalf("select fragment = %+v", frag)
	}

	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventSelect, Index: 9})
	frag = receive(t, conn)
	if !strings.Contains(frag.HTML, "3 / 4") {
		t.Errorf("out of range select moved the carousel: %s", frag.HTML)
	}
	if v := counter(t, f.metrics, "safetrade_live_events_total", map[string]string{"widget": "testimonials", "type": "select"}); v != 2 {
		t.Errorf("select events = %v, want 2", v)
	}
}

func TestSessionTestimonialParam(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "?t=3")

	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventNext})
	frag := receive(t, conn)
	if !strings.Contains(frag.HTML, "1 / 4") {
		t.Errorf("next from the fourth testimonial should wrap to the first: %s", frag.HTML)
	}
}

func TestSessionAfterFormFallback(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "?sent=1")

	frag := receive(t, conn)
	if frag.Widget != sections.WidgetContact || !strings.Contains(frag.HTML, "Message sent!") {
		t.Fatalf("first fragment = %+v, want the confirmation", frag)
	}
	if strings.Contains(frag.HTML, "<form") {
		t.Error("confirmation should not render the form")
	}

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventInput, Field: "name", Value: "Ivan"})
	f.clock.Advance(4999 * time.Millisecond)
	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventNext})
	if frag := receive(t, conn); frag.Widget != sections.WidgetTestimonials {
		t.Fatalf("contact pushed before the display window ended: %+v", frag)
	}

	f.clock.Advance(time.Millisecond)
	frag = receive(t, conn)
	if frag.Widget != sections.WidgetContact || !strings.Contains(frag.HTML, "<form") {
		t.Fatalf("fragment after 5000ms = %+v, want the form", frag)
	}
	if strings.Contains(frag.HTML, `value="Ivan"`) {
		t.Error("input during the confirmation view should be dropped")
	}
}

func TestContactFragmentSeq(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventInput, Field: "name", Value: "I", Seq: 1})
	frag := receive(t, conn)
	if frag.Seq > 1 || !strings.Contains(frag.HTML, `value="I"`) {
		t.Fatalf("echo = seq %d %s", frag.Seq, frag.HTML)
	}

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventInput, Field: "name", Value: "Iv", Seq: 2})
	frag = receive(t, conn)
	if frag.Seq < 1 || frag.Seq > 2 || !strings.Contains(frag.HTML, `value="Iv"`) {
		t.Fatalf("echo = seq %d %s", frag.Seq, frag.HTML)
	}

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventSubmit})
	frag = receive(t, conn)
	if frag.Seq != 2 || !strings.Contains(frag.HTML, `value="Iv"`) {
		t.Errorf("submit fragment = seq %d, want 2", frag.Seq)
	}

	send(t, conn, Event{Widget: sections.WidgetFAQ, Type: EventToggle, Index: 1})
	if frag := receive(t, conn); frag.Seq != 0 {
		t.Errorf("faq fragment seq = %d, want 0", frag.Seq)
	}
}

func TestUnknownEventsIgnored(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	send(t, conn, Event{Widget: "ticker", Type: "next"})
	send(t, conn, Event{Widget: sections.WidgetFAQ, Type: "explode"})
	send(t, conn, Event{Widget: sections.WidgetTestimonials, Type: EventNext})

	frag := receive(t, conn)
	if frag.Widget != sections.WidgetTestimonials {
		t.Errorf("first reply = %q, want the testimonials fragment", frag.Widget)
	}
	if v := counter(t, f.metrics, "safetrade_live_events_total", map[string]string{"widget": "ticker"}); v != 0 {
		t.Errorf("unknown widget was counted: %v", v)
	}
}

func TestSessionLocale(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "?lang=bg")

	send(t, conn, Event{Widget: sections.WidgetContact, Type: EventSubmit})
	frag := receive(t, conn)
	if !strings.Contains(frag.HTML, "Моля, въведете име.") {
		t.Errorf("expected Bulgarian errors: %s", frag.HTML)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	f := newFixture(t, nil)
	conn := f.dial(t, "")

	if v := counter(t, f.metrics, "safetrade_live_sessions", nil); v != 1 {
		t.Errorf("live sessions = %v, want 1", v)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.handler.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after shutdown = %v, want normal closure", err)
	}
	if f.handler.Len() != 0 {
		t.Errorf("Len() = %d after shutdown", f.handler.Len())
	}

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/live"
	late, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		resp.Body.Close()
		late.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := late.ReadMessage(); err == nil {
			t.Error("session accepted after shutdown")
		}
		late.Close()
	}
}

func TestUpgradeRequired(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := http.Get(f.server.URL + "/live")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
