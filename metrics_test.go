package jsonmend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_OutcomeEmittedPerRepair(t *testing.T) {
	var outcomes []RepairOutcomeData
	var decisions []RepairDecisionData

	r := New(WithMetricsCallback(func(data MetricEventData) {
		switch d := data.(type) {
		case RepairOutcomeData:
			outcomes = append(outcomes, d)
		case RepairDecisionData:
			decisions = append(decisions, d)
		}
	}))

	_, err := r.Repair(`{'a': 1, b: 2`)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	outcome := outcomes[0]
	assert.NotEmpty(t, outcome.RepairID)
	assert.False(t, outcome.AlreadyValid)
	assert.Equal(t, len(`{'a': 1, b: 2`), outcome.InputBytes)
	assert.Equal(t, outcome.Decisions, len(decisions))
	assert.NotZero(t, outcome.Decisions)
	assert.Equal(t, MetricEventRepairOutcome, outcome.EventType())

	// Every decision carries the invocation's repair ID and a marked context.
	for _, d := range decisions {
		assert.Equal(t, outcome.RepairID, d.RepairID)
		assert.Contains(t, d.Context, ">>>")
		assert.Equal(t, MetricEventRepairDecision, d.EventType())
	}

	// The counts break down to the total.
	total := 0
	for _, n := range outcome.DecisionCounts {
		total += n
	}
	assert.Equal(t, outcome.Decisions, total)
}

func TestMetrics_AlreadyValidInput(t *testing.T) {
	var outcomes []RepairOutcomeData
	r := New(WithMetricsCallback(func(data MetricEventData) {
		if d, ok := data.(RepairOutcomeData); ok {
			outcomes = append(outcomes, d)
		}
	}))

	_, err := r.Repair(`{"a": 1}`)
	require.NoError(t, err)

	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].AlreadyValid)
	assert.Zero(t, outcomes[0].Decisions)
}

func TestMetrics_CallbackPanicIsRecovered(t *testing.T) {
	r := New(WithMetricsCallback(func(MetricEventData) {
		panic("callback exploded")
	}))

	// The panic must never escape the repair.
	got, err := r.Repair(`{'a': 1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestMetrics_DistinctRepairIDs(t *testing.T) {
	ids := make(map[string]bool)
	r := New(WithMetricsCallback(func(data MetricEventData) {
		if d, ok := data.(RepairOutcomeData); ok {
			ids[d.RepairID] = true
		}
	}))

	for i := 0; i < 5; i++ {
		_, err := r.Repair(`{'n': 1}`)
		require.NoError(t, err)
	}
	assert.Len(t, ids, 5)
}
