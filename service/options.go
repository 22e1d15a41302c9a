package service

import (
	"log/slog"
	"time"

	"github.com/layer-3/auctioneer/internal/logger"
	"github.com/layer-3/auctioneer/internal/metrics"
)

// Option configures the services in this package
type Option func(*options)

type options struct {
	now     func() time.Time
	log     *slog.Logger
	metrics metrics.Recorder
}

// WithClock replaces time.Now as the source of the current time
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithLogger sets the structured logger
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		log:     logger.Discard(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
