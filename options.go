package hast

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/hast/codec"
)

type options struct {
	codec               codec.Codec
	compression         codec.Compression
	metricsCollector    MetricsCollector
	logger              *Logger
	recoveryConcurrency int
}

// Option configures Storage behavior at Open.
type Option func(*options)

func defaultOptions() options {
	return options{
		codec:               codec.Default,
		compression:         codec.CompressionNone,
		metricsCollector:    NoopMetricsCollector{},
		logger:              NoopLogger(),
		recoveryConcurrency: runtime.GOMAXPROCS(0),
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithCodec configures the codec used to encode and decode report files.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression compresses newly written report files. Recovery detects
// the compression of every file on its own, so changing this setting never
// makes existing files unreadable.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector sets a custom metrics collector for monitoring.
//
// Example with BasicMetricsCollector:
//
//	collector := &hast.BasicMetricsCollector{}
//	s, err := hast.Open(ctx, hast.Local(dir), hast.WithMetricsCollector(collector))
//	// ... perform operations ...
//	stats := collector.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a custom structured logger.
//
// Example:
//
//	logger := hast.NewJSONLogger(slog.LevelInfo)
//	s, err := hast.Open(ctx, hast.Local(dir), hast.WithLogger(logger))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel installs a text logger writing to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithRecoveryConcurrency bounds how many report files recovery reads at
// once. Values below 1 select GOMAXPROCS. Recovery holds at most four times
// this many decoded reports in memory before they are indexed.
func WithRecoveryConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.recoveryConcurrency = n
	}
}
