package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStreamsStartedCountsByProviderAndModel(t *testing.T) {
	StreamsStarted.Reset()
	StreamsStarted.WithLabelValues("claude", "claude-opus-4").Inc()
	StreamsStarted.WithLabelValues("claude", "claude-opus-4").Inc()
	StreamsStarted.WithLabelValues("openai", "gpt-4o").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(StreamsStarted.WithLabelValues("claude", "claude-opus-4")))
	assert.Equal(t, float64(1), testutil.ToFloat64(StreamsStarted.WithLabelValues("openai", "gpt-4o")))
}

func TestToolCallsExecutedCountsByToolAndOutcome(t *testing.T) {
	ToolCallsExecuted.Reset()
	ToolCallsExecuted.WithLabelValues("bash", "ok").Inc()
	ToolCallsExecuted.WithLabelValues("bash", "error").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(ToolCallsExecuted.WithLabelValues("bash", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ToolCallsExecuted.WithLabelValues("bash", "error")))
}

func TestDistillationsRunIncrements(t *testing.T) {
	before := testutil.ToFloat64(DistillationsRun)
	DistillationsRun.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(DistillationsRun))
}

func TestJournalFlushDurationObservesByJournal(t *testing.T) {
	JournalFlushDuration.Reset()
	JournalFlushDuration.WithLabelValues("stream").Observe(0.001)
	JournalFlushDuration.WithLabelValues("tool").Observe(0.002)

	count, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "forge_journal_flush_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
