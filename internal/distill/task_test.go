package distill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSummarizer struct {
	calls     int
	failUntil int // return a retryable failure for calls <= failUntil
	failKind  FailureKind
	result    string
}

func (s *stubSummarizer) Summarize(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error) {
	s.calls++
	if s.calls <= s.failUntil {
		return "", &Failure{Kind: s.failKind, Message: "transient"}
	}
	return s.result, nil
}

func TestRunSucceedsOnFirstAttempt(t *testing.T) {
	s := &stubSummarizer{result: "[Conversation Summary]\nkey points"}
	h := Run(context.Background(), s, "summarize", nil, time.Second)
	<-h.Done()
	result, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, "[Conversation Summary]\nkey points", result)
	assert.Equal(t, 1, s.calls)
}

func TestRunRetriesRateLimitedThenSucceeds(t *testing.T) {
	s := &stubSummarizer{failUntil: 2, failKind: FailureRateLimited, result: "summary"}
	h := Run(context.Background(), s, "summarize", nil, 5*time.Second)
	<-h.Done()
	result, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, "summary", result)
	assert.Equal(t, 3, s.calls)
}

func TestRunDoesNotRetryAuthFailure(t *testing.T) {
	s := &stubSummarizer{failUntil: maxAttempts, failKind: FailureAuth}
	h := Run(context.Background(), s, "summarize", nil, 5*time.Second)
	<-h.Done()
	_, err := h.Result()
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureAuth, f.Kind)
	assert.Equal(t, 1, s.calls, "auth failures must not be retried")
}

func TestRunExhaustsRetriesOnPersistentRateLimit(t *testing.T) {
	s := &stubSummarizer{failUntil: maxAttempts, failKind: FailureRateLimited}
	h := Run(context.Background(), s, "summarize", nil, 30*time.Second)
	<-h.Done()
	_, err := h.Result()
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureRateLimited, f.Kind)
	assert.Equal(t, maxAttempts, s.calls)
}

func TestRunTreatsEmptyOutputAsInvalid(t *testing.T) {
	s := &stubSummarizer{result: ""}
	h := Run(context.Background(), s, "summarize", nil, time.Second)
	<-h.Done()
	_, err := h.Result()
	require.Error(t, err)
}

func TestComputeBackoffIsBoundedAndMonotonicBeforeCap(t *testing.T) {
	d1 := computeBackoffWithRand(1, 0)
	d2 := computeBackoffWithRand(2, 0)
	d5 := computeBackoffWithRand(5, 0)
	assert.Equal(t, 500*time.Millisecond, d1)
	assert.Equal(t, 1000*time.Millisecond, d2)
	assert.LessOrEqual(t, d5, 8000*time.Millisecond+200*time.Millisecond)
}

func TestComputeBackoffAppliesJitterWithinRange(t *testing.T) {
	base := computeBackoffWithRand(1, 0)
	jittered := computeBackoffWithRand(1, 1)
	assert.Equal(t, 200*time.Millisecond, jittered-base)
}

func TestClassifyPassesThroughTypedFailure(t *testing.T) {
	f := classify(&Failure{Kind: FailureTimeout, Message: "slow"})
	assert.Equal(t, FailureTimeout, f.Kind)
}

func TestClassifyDefaultsUnknownErrorsToRateLimited(t *testing.T) {
	f := classify(errors.New("boom"))
	assert.Equal(t, FailureRateLimited, f.Kind)
}
