package postgresengine

import (
	"github.com/quercus-labs/library-lending-core-go/librarycore"
)

// Option defines a functional option for configuring a Library.
type Option func(*Library) error

// WithTablePrefix prefixes the book, card and borrow table names, e.g.
// WithTablePrefix("lms_") uses lms_book, lms_card and lms_borrow. The
// default is no prefix.
func WithTablePrefix(prefix string) Option {
	return func(l *Library) error {
		if prefix == "" {
			return librarycore.ErrEmptyTablePrefix
		}

		l.tablePrefix = prefix

		return nil
	}
}

// WithLogger sets the logger for the Library.
// The logger will receive messages at different levels based on the logger's
// configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: operation outcomes and durations (production-safe)
// Warn level: non-critical issues like rollback/cleanup failures
// Error level: storage failures that cause operation failures.
func WithLogger(logger librarycore.Logger) Option {
	return func(l *Library) error {
		l.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Library. It
// receives the same messages as the plain logger plus the operation context,
// enabling automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger librarycore.ContextualLogger) Option {
	return func(l *Library) error {
		l.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Library. It receives
// per-operation durations, outcome counters and business-rule violation
// counters.
func WithMetrics(collector librarycore.MetricsCollector) Option {
	return func(l *Library) error {
		l.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Library. Every public
// operation is wrapped in one span carrying the operation name and outcome.
func WithTracing(collector librarycore.TracingCollector) Option {
	return func(l *Library) error {
		l.tracingCollector = collector
		return nil
	}
}
