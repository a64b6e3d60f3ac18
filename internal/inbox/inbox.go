// Package inbox delivers contact form submissions.
//
// Every backend implements widget.Submitter. Open picks one from
// configuration:
//
//	simulated  waits the configured delay and succeeds; the default
//	memory     keeps submissions in process, for development and tests
//	s3         stores each submission as a JSON object in an S3 bucket
//
// Instrument wraps any backend with a span, a metric and a log line.
package inbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/safetrade/site/internal/clock"
	siteerrors "github.com/safetrade/site/internal/errors"
	"github.com/safetrade/site/internal/widget"
)

// Backend names accepted by Open.
const (
	BackendSimulated = "simulated"
	BackendMemory    = "memory"
	BackendS3        = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend     string
	SubmitDelay time.Duration
	S3          S3Config
}

// S3Config configures the S3 backend.
type S3Config struct {
	Bucket   string
	Prefix   string
	Region   string
	Endpoint string
}

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config, clk clock.Clock, logger *slog.Logger) (widget.Submitter, error) {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", BackendSimulated:
		s := widget.NewSimulated(clk)
		if cfg.SubmitDelay > 0 {
			s.Delay = cfg.SubmitDelay
		}
		logger.Debug("inbox opened", "backend", BackendSimulated, "delay", s.Delay)
		return s, nil
	case BackendMemory:
		logger.Debug("inbox opened", "backend", BackendMemory)
		return NewMemory(), nil
	case BackendS3:
		s, err := NewS3FromConfig(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		s.clock = clk
		logger.Info("inbox opened", "backend", BackendS3, "bucket", cfg.S3.Bucket, "prefix", cfg.S3.Prefix)
		return s, nil
	default:
		return nil, siteerrors.New("S020").WithDetailf("backend %q", cfg.Backend)
	}
}
