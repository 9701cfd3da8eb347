// Package jsonmend repairs malformed or truncated JSON-like text into
// strictly valid JSON. It salvages output from sources that emit near-JSON
// text — LLM responses, human-typed configuration, logs embedding JSON in
// prose — including inputs cut mid-token when streaming ended early.
//
// The pipeline has three stages: a sanitiser that extracts JSON from
// markdown fences and strips comments, a single-pass repair engine that
// re-emits the input as canonical JSON, and a finaliser that closes every
// construct still open at end of input.
//
// CONCURRENCY SUMMARY:
//   - Repairer: Thread-safe, can be shared across goroutines
//   - Engine state: allocated per Repair call, never shared
//   - Package-level Repair/Decode: Thread-safe
package jsonmend

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Repairer turns near-JSON text into strictly valid JSON.
//
// THREAD SAFETY: Repairer instances are safe for concurrent use by multiple
// goroutines. All fields are immutable after construction (set once during
// New()); each Repair call allocates its own engine state.
type Repairer struct {
	logger          *slog.Logger
	metricsCallback func(MetricEventData)

	// Repair behaviour configuration
	unescapedUnicode      bool // re-encode output with non-ASCII left literal
	omitEmptyValues       bool // delete keys with missing values instead of substituting ""
	omitIncompleteStrings bool // delete keys whose value string was cut off mid-stream
}

// New creates a new repairer with optional configurations.
func New(opts ...Option) *Repairer {
	r := &Repairer{
		// Initialize with a no-op logger to avoid nil pointer issues
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError + 1, // Effectively disable all logging by default
		})),
	}

	// Apply all provided options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// defaultRepairer backs the package-level convenience functions.
var defaultRepairer = New()

// Repair repairs input with default options. See [Repairer.Repair].
func Repair(input string) (string, error) {
	return defaultRepairer.Repair(input)
}

// Decode repairs and decodes input with default options. See [Repairer.Decode].
func Decode(input string) (any, error) {
	return defaultRepairer.Decode(input)
}

// Repair runs the full pipeline on input and returns strictly valid JSON.
//
// If the input (after fence extraction and comment stripping) is already
// valid JSON it is returned unchanged, byte for byte, unless
// [WithUnescapedUnicode] is enabled, which rewrites its escapes. Otherwise the repair
// engine rewrites it, closing open containers and strings, normalising
// quoting and keywords, and inserting missing separators. An empty result
// means no JSON content could be recovered; a non-empty result either
// parses as strict JSON or Repair returns a [*RepairFailedError].
func (r *Repairer) Repair(input string) (string, error) {
	startTime := time.Now()
	run := &repairRun{
		repairer: r,
		id:       uuid.NewString(),
	}

	// Already-valid input is returned byte for byte; the sanitiser must not
	// get a chance to misread fences or comment markers inside its strings.
	var out string
	alreadyValid := json.Valid([]byte(input))
	if alreadyValid {
		out = input
	} else {
		sanitized := sanitize(input, run)
		if json.Valid([]byte(sanitized)) {
			alreadyValid = true
			out = sanitized
		} else {
			eng := newEngine(sanitized, run)
			out = eng.exec()
		}
	}

	if r.unescapedUnicode && out != "" {
		reencoded, err := reencodeUnescaped(out)
		if err != nil {
			failure := &RepairFailedError{Output: out, Err: err}
			r.logger.Error("Repaired output failed strict JSON parse",
				"error", err,
				"output_length", len(out))
			return "", failure
		}
		out = reencoded
	} else if out != "" && !json.Valid([]byte(out)) {
		// Closure guarantee: non-empty output must parse. Reaching this
		// branch indicates an engine defect or an extreme pathological
		// input; surface the produced output for diagnosis.
		failure := &RepairFailedError{Output: out}
		r.logger.Error("Repaired output failed strict JSON parse",
			"output_length", len(out))
		return "", failure
	}

	r.logger.Info("Repair completed",
		"repair_id", run.id,
		"input_bytes", len(input),
		"output_bytes", len(out),
		"already_valid", alreadyValid,
		"decisions", run.decisions)

	r.emitMetric(RepairOutcomeData{
		RepairID:       run.id,
		InputBytes:     len(input),
		OutputBytes:    len(out),
		AlreadyValid:   alreadyValid,
		Decisions:      run.decisions,
		DecisionCounts: run.counts,
		Performance: PerformanceMetrics{
			ProcessingDuration: time.Since(startTime),
		},
	})

	return out, nil
}

// Decode repairs input and then decodes the result with a strict JSON
// decoder. Decoder errors are surfaced unchanged.
func (r *Repairer) Decode(input string) (any, error) {
	repaired, err := r.Repair(input)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecodeInto repairs input and unmarshals the result into v.
func (r *Repairer) DecodeInto(input string, v any) error {
	repaired, err := r.Repair(input)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(repaired), v)
}

// reencodeUnescaped rewrites s with \uXXXX escapes and escaped slashes
// turned into their literal characters, leaving layout, key order, and all
// other tokens untouched. Escapes that strict JSON requires (control
// characters, quotes, backslashes, lone surrogates) stay escaped.
func reencodeUnescaped(s string) (string, error) {
	if !json.Valid([]byte(s)) {
		return "", errors.New("output is not valid JSON")
	}

	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			i++
			continue
		}
		switch c {
		case '"':
			inString = false
			b.WriteByte(c)
			i++
		case '\\':
			// json.Valid guarantees a complete escape follows.
			switch s[i+1] {
			case '/':
				b.WriteByte('/')
				i += 2
			case 'u':
				r := rune(parseHex4(s[i+2 : i+6]))
				if utf16.IsSurrogate(r) {
					if i+12 <= len(s) && s[i+6] == '\\' && s[i+7] == 'u' {
						r2 := rune(parseHex4(s[i+8 : i+12]))
						if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
							b.WriteRune(combined)
							i += 12
							continue
						}
					}
					// A lone surrogate half has no literal form.
					b.WriteString(s[i : i+6])
					i += 6
					continue
				}
				if r < 0x20 || r == '"' || r == '\\' {
					b.WriteString(s[i : i+6])
					i += 6
					continue
				}
				b.WriteRune(r)
				i += 6
			default:
				b.WriteByte('\\')
				b.WriteByte(s[i+1])
				i += 2
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// parseHex4 decodes four hex digits. The input is known valid.
func parseHex4(s string) uint16 {
	var v uint16
	for i := 0; i < 4; i++ {
		v <<= 4
		switch b := s[i]; {
		case b >= '0' && b <= '9':
			v |= uint16(b - '0')
		case b >= 'a' && b <= 'f':
			v |= uint16(b-'a') + 10
		case b >= 'A' && b <= 'F':
			v |= uint16(b-'A') + 10
		}
	}
	return v
}

// emitMetric safely calls the metrics callback with panic recovery.
// A faulty callback must never break a repair in progress.
func (r *Repairer) emitMetric(data MetricEventData) {
	if r.metricsCallback == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Metrics callback panicked",
				"panic", rec,
				"event_type", string(data.EventType()))
		}
	}()
	r.metricsCallback(data)
}

// repairRun carries the per-invocation observability state shared by the
// sanitiser and the engine: the repair ID, the decision log, and counters
// for the outcome metric.
type repairRun struct {
	repairer  *Repairer
	id        string
	decisions int
	counts    map[RepairEvent]int
}

// log records a single repair decision: a structured log line at Debug and
// a RepairDecisionData metric event. src is the input the offset refers to.
func (run *repairRun) log(event RepairEvent, offset int, src string) {
	run.decisions++
	if run.counts == nil {
		run.counts = make(map[RepairEvent]int)
	}
	run.counts[event]++

	r := run.repairer
	snippet := contextSnippet(src, offset)
	r.logger.Debug("Repair decision",
		"repair_id", run.id,
		"event", string(event),
		"offset", offset,
		"context", snippet)
	r.emitMetric(RepairDecisionData{
		RepairID: run.id,
		Event:    event,
		Offset:   offset,
		Context:  snippet,
	})
}
