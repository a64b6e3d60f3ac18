package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestOpenTelemetryPassesThrough(t *testing.T) {
	var sawSpan bool
	h := OpenTelemetry(WithTracerName("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = SpanFromRequest(r) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if !sawSpan {
		t.Error("handler should see a span on the request context")
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	var ctx context.Context
	h := OpenTelemetry(WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/healthz"
	}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ctx != req.Context() {
		t.Error("filtered request should keep its original context")
	}
}

func TestStartSpan(t *testing.T) {
	ctx, end := StartSpan(context.Background(), "", "contact.submit", attribute.String("locale", "en-US"))
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	end(errors.New("boom"))

	_, end = StartSpan(ctx, "test", "child")
	end(nil)
}
