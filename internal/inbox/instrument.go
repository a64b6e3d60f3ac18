package inbox

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	siteerrors "github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/widget"
	"github.com/safetrade/site/pkg/middleware"
)

// Instrumented wraps a Submitter with a trace span, an outcome metric and
// a log line per delivery. It is the only place a failed delivery is
// logged.
type Instrumented struct {
	next       widget.Submitter
	metrics    *middleware.Metrics
	tracerName string
	logger     *slog.Logger
}

// Instrument wraps next. metrics may be nil.
func Instrument(next widget.Submitter, metrics *middleware.Metrics, tracerName string, logger *slog.Logger) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumented{next: next, metrics: metrics, tracerName: tracerName, logger: logger}
}

// Submit implements widget.Submitter.
func (i *Instrumented) Submit(ctx context.Context, s widget.Submission) error {
	ctx, end := middleware.StartSpan(ctx, i.tracerName, "contact.submit",
		attribute.String("contact.locale", s.Locale),
	)
	err := i.next.Submit(ctx, s)
	end(err)

	switch {
	case err == nil:
		i.metrics.RecordSubmission(middleware.OutcomeDelivered)
		i.logger.Info("contact submission delivered", "locale", s.Locale)
	case errors.Is(err, widget.ErrRateLimited):
		i.metrics.RecordSubmission(middleware.OutcomeRateLimited)
	case errors.Is(err, context.Canceled):
		// The widget was unmounted mid-flight.
	default:
		i.metrics.RecordSubmission(middleware.OutcomeFailed)
		se := siteerrors.FromError(err, "S022")
		i.logger.Error("contact submission failed",
			"code", se.Code,
			"error", se.FormatCompact(),
			"cause", err,
		)
	}
	return err
}
