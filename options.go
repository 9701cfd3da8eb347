package jsonmend

import (
	"io"
	"log/slog"
)

// Option is a function that configures the Repairer.
// This functional options pattern provides several key benefits:
// 1. Backwards compatibility - new options don't break existing code
// 2. Optional parameters - users only specify what they want to change
// 3. Self-documenting - option names clearly indicate their purpose
type Option func(*Repairer)

// WithUnescapedUnicode controls the post-repair re-encode step. When
// enabled, \uXXXX escapes and escaped forward slashes in the repaired
// output's strings are rewritten as literal characters; layout and key
// order are unchanged, and escapes that strict JSON requires stay escaped.
//
// Default: disabled (the repaired output keeps whatever escaping the input
// carried).
func WithUnescapedUnicode(enabled bool) Option {
	return func(r *Repairer) {
		r.unescapedUnicode = enabled
	}
}

// WithOmitEmptyValues controls how keys that lost their value are handled.
// When enabled, a key whose value is missing — `{"a": }` or a bare key at
// end of input — is deleted from the output instead of receiving a
// substituted empty string.
//
// Default: disabled (missing values become "").
func WithOmitEmptyValues(enabled bool) Option {
	return func(r *Repairer) {
		r.omitEmptyValues = enabled
	}
}

// WithOmitIncompleteStrings controls how an object value string that was
// still open at end of input is handled. When enabled, the key and its
// partial value are deleted; otherwise the string is closed where the
// input ended.
//
// Default: disabled (incomplete strings are closed).
func WithOmitIncompleteStrings(enabled bool) Option {
	return func(r *Repairer) {
		r.omitIncompleteStrings = enabled
	}
}

// WithLogger sets a custom slog.Logger for the repairer.
// This enables structured logging for operational observability in production.
//
// Logging strategy:
// - INFO: Operational events (repair completed)
// - DEBUG: Per-decision detail (every repair decision with offset and context)
// - ERROR: Repaired output failing the strict parse, callback panics
//
// If no logger is provided, a no-op logger is used to avoid breaking existing code.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repairer) {
		if logger == nil {
			// Create a no-op logger when nil is provided
			r.logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
				Level: slog.LevelError + 1, // Effectively disable all logging
			}))
			return
		}
		r.logger = logger
	}
}

// WithLogLevel sets the logging level for the default logger.
// This is a convenience option when you want to control the level without
// constructing a logger. For production use, prefer WithLogger with a
// properly configured handler.
func WithLogLevel(level slog.Level) Option {
	return func(r *Repairer) {
		handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: level,
		})
		r.logger = slog.New(handler)
	}
}

// WithMetricsCallback sets a callback function that receives metric events.
// This enables integration with monitoring systems like Prometheus, DataDog,
// or custom metrics collection.
//
// The callback receives typed event data that can be safely type-switched:
//
//	repairer := jsonmend.New(
//	    jsonmend.WithMetricsCallback(func(data jsonmend.MetricEventData) {
//	        switch eventData := data.(type) {
//	        case jsonmend.RepairOutcomeData:
//	            myMetrics.Repairs.Inc()
//	            myMetrics.Decisions.Add(float64(eventData.Decisions))
//	        case jsonmend.RepairDecisionData:
//	            myMetrics.DecisionsByKind.WithLabelValues(string(eventData.Event)).Inc()
//	        }
//	    }),
//	)
//
// The callback is called synchronously during repair, so it should be fast.
// The repairer includes panic recovery for metrics callbacks: if your
// callback panics, the panic is caught, logged, and the repair continues.
func WithMetricsCallback(callback func(MetricEventData)) Option {
	return func(r *Repairer) {
		r.metricsCallback = callback
	}
}

// ApplyOptions applies a slice of options to a repairer.
func ApplyOptions(r *Repairer, opts []Option) {
	for _, opt := range opts {
		opt(r)
	}
}
