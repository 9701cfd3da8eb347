package jsonmend

import "time"

// MetricEvent represents the type of metric event being emitted.
// Each event corresponds to a significant operation within the repairer.
type MetricEvent string

const (
	// MetricEventRepairDecision fires once for every individual repair
	// decision the sanitiser or engine makes: removing a comment,
	// normalising a keyword, inserting a separator, closing a string, and
	// so on.
	MetricEventRepairDecision MetricEvent = "repair_decision"

	// MetricEventRepairOutcome fires once per Repair call with aggregate
	// counts and timing for the whole invocation.
	MetricEventRepairOutcome MetricEvent = "repair_outcome"
)

// MetricEventData is implemented by all metric event data structures.
// This interface enables type-safe handling of different event types while
// maintaining a clean callback signature.
type MetricEventData interface {
	EventType() MetricEvent
}

// PerformanceMetrics contains timing information included with outcome
// events for operational visibility.
//
// Thread Safety: PerformanceMetrics instances are immutable after creation,
// making them safe for concurrent access by metric callbacks.
type PerformanceMetrics struct {
	// ProcessingDuration is the total time spent processing the operation.
	// Uses time.Duration for nanosecond precision - callers can convert as needed
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// RepairDecisionData describes a single repair decision.
type RepairDecisionData struct {
	// RepairID identifies the Repair invocation this decision belongs to
	RepairID string `json:"repair_id"`

	// Event is the kind of decision made
	Event RepairEvent `json:"event"`

	// Offset is the input byte offset where the decision was made
	Offset int `json:"offset"`

	// Context is a ±15 byte window around the offset with a >>> marker
	Context string `json:"context"`
}

func (d RepairDecisionData) EventType() MetricEvent {
	return MetricEventRepairDecision
}

// RepairOutcomeData summarises a completed Repair invocation.
type RepairOutcomeData struct {
	// RepairID identifies the Repair invocation
	RepairID string `json:"repair_id"`

	// InputBytes is the length of the original input
	InputBytes int `json:"input_bytes"`

	// OutputBytes is the length of the repaired output
	OutputBytes int `json:"output_bytes"`

	// AlreadyValid reports whether the sanitised input parsed as strict
	// JSON, short-circuiting the engine
	AlreadyValid bool `json:"already_valid"`

	// Decisions is the total number of repair decisions made
	Decisions int `json:"decisions"`

	// DecisionCounts breaks decisions down by kind. The map is created
	// fresh per invocation and never modified after the metric is emitted,
	// making it safe for concurrent read access.
	DecisionCounts map[RepairEvent]int `json:"decision_counts,omitempty"`

	// Performance contains timing metrics for this repair
	Performance PerformanceMetrics `json:"performance"`
}

func (d RepairOutcomeData) EventType() MetricEvent {
	return MetricEventRepairOutcome
}
