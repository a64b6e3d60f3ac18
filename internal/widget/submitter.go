package widget

import (
	"context"
	"errors"
	"time"

	"github.com/safetrade/site/internal/clock"
)

// ErrRateLimited is returned by submitters that refuse to forward a message
// because the sender is over its budget.
var ErrRateLimited = errors.New("widget: submission rate limited")

// Submission is a validated contact message.
type Submission struct {
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	Locale     string    `json:"locale"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Submitter delivers a submission. Implementations must honour ctx
// cancellation; the contact widget cancels it on Dispose.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, s Submission) error

// Submit implements Submitter.
func (f SubmitterFunc) Submit(ctx context.Context, s Submission) error {
	return f(ctx, s)
}

// DefaultSubmitDelay is the latency of the simulated submitter.
const DefaultSubmitDelay = 1500 * time.Millisecond

// Simulated is a Submitter that waits Delay on Clock and always succeeds.
type Simulated struct {
	Clock clock.Clock
	Delay time.Duration
}

// NewSimulated returns a simulated submitter with the default delay.
func NewSimulated(c clock.Clock) *Simulated {
	return &Simulated{Clock: c, Delay: DefaultSubmitDelay}
}

// Submit implements Submitter.
func (s *Simulated) Submit(ctx context.Context, _ Submission) error {
	c := s.Clock
	if c == nil {
		c = clock.Real()
	}
	done := make(chan struct{})
	t := c.AfterFunc(s.Delay, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		t.Stop()
		return ctx.Err()
	}
}
