// Package metrics exposes the engine's Prometheus counters: streams
// started, tool calls executed, distillations run, and journal flush
// latency. Grounded on the pack's observability package
// (promauto-registered CounterVec/HistogramVec pairs), scoped down to
// only the four signals the engine itself produces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StreamsStarted counts provider streams opened, by provider and model.
var StreamsStarted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "forge_streams_started_total",
		Help: "Total number of provider streams opened",
	},
	[]string{"provider", "model"},
)

// ToolCallsExecuted counts tool invocations by tool name and outcome
// (the journal's call outcome kind: ok, err, timeout, cancelled).
var ToolCallsExecuted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "forge_tool_calls_executed_total",
		Help: "Total number of tool calls executed, by tool name and outcome",
	},
	[]string{"tool", "outcome"},
)

// DistillationsRun counts background context distillations started.
var DistillationsRun = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "forge_distillations_run_total",
		Help: "Total number of context distillation runs started",
	},
)

// JournalFlushDuration measures how long a single write-ahead journal
// append takes, by journal (stream, tool).
var JournalFlushDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "forge_journal_flush_duration_seconds",
		Help:    "Duration of a single write-ahead journal append",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"journal"},
)
