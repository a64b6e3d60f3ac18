package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/safetrade/site/internal/widget"
)

func TestAllowPerKey(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Fatal("third event should be limited")
	}
	if !l.Allow("b") {
		t.Fatal("other keys have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatal("token should refill after one second")
	}
}

func TestSweep(t *testing.T) {
	l := New(1, 1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(50 * time.Second)
	l.Allow("new")
	now = now.Add(20 * time.Second)
	l.Sweep()

	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	if !l.Allow("old") {
		t.Error("swept key should start with a full bucket")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	l := New(1, 1, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMiddleware(t *testing.T) {
	l := New(0.001, 1, time.Minute)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [204 429]", codes)
	}
}

func TestSubmitter(t *testing.T) {
	l := New(0.001, 1, time.Minute)
	calls := 0
	sub := l.Submitter("ip", widget.SubmitterFunc(func(context.Context, widget.Submission) error {
		calls++
		return nil
	}))

	if err := sub.Submit(context.Background(), widget.Submission{}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if err := sub.Submit(context.Background(), widget.Submission{}); !errors.Is(err, widget.ErrRateLimited) {
		t.Fatalf("second Submit = %v, want ErrRateLimited", err)
	}
	if calls != 1 {
		t.Errorf("next called %d times, want 1", calls)
	}
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.7:5000": "203.0.113.7",
		"[2001:db8::1]:80": "2001:db8::1",
		"[2001:db8::2]":    "2001:db8::2",
		"198.51.100.1":     "198.51.100.1",
	}
	for addr, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		if got := ClientIP(r); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", addr, got, want)
		}
	}
}
