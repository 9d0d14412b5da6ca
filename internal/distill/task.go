// Package distill runs the background summarization task that
// produces a context-manager distillate. Grounded on the teacher's
// internal/conversation/compaction.go Compactor.summarize (a
// synchronous, single-shot call using a dedicated system prompt and a
// no-op stream handler), turned into a cancellable background task
// with the bounded-handle and jittered-backoff-retry shape spec §4.9
// requires.
package distill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielchristiancazares/forge/internal/domain"
)

// FailureKind discriminates why a distillation attempt did not
// produce a usable distillate.
type FailureKind int

const (
	FailureAuth FailureKind = iota
	FailureRateLimited
	FailureTimeout
	FailureInvalidOutput
)

func (k FailureKind) String() string {
	switch k {
	case FailureAuth:
		return "auth"
	case FailureRateLimited:
		return "rate_limited"
	case FailureTimeout:
		return "timeout"
	case FailureInvalidOutput:
		return "invalid_output"
	default:
		return "unknown"
	}
}

// Failure is a typed, non-retryable-by-inspection distillation error.
// The retry loop itself decides whether a given Failure is worth
// retrying; FailureInvalidOutput never is (the provider is behaving
// correctly and producing empty output deterministically).
type Failure struct {
	Kind    FailureKind
	Message string
}

func (f *Failure) Error() string { return fmt.Sprintf("distillation failed (%s): %s", f.Kind, f.Message) }

// Summarizer produces a single summary string from a system prompt and
// a slice of history entries. Implemented by internal/provideradapter;
// declared here so distill has no dependency on any concrete provider.
type Summarizer interface {
	Summarize(ctx context.Context, systemPrompt string, entries []domain.Entry) (string, error)
}

// classify maps a raw Summarizer error into a typed Failure. Providers
// are expected to return *Failure directly when they can identify the
// cause (auth/rate-limit/timeout); anything else is treated as a
// retryable, unclassified network-ish failure by reusing
// FailureRateLimited's retry eligibility without asserting a cause.
func classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: FailureRateLimited, Message: err.Error()}
}

func retryable(kind FailureKind) bool {
	return kind != FailureAuth && kind != FailureInvalidOutput
}

// Handle is the bounded handle for one in-flight distillation task. It
// is safe to read Done and call Cancel from any goroutine; Result must
// only be read after Done is closed.
type Handle struct {
	done   chan struct{}
	cancel context.CancelFunc
	result string
	err    error
}

// Done signals when the task has reached a terminal state (success,
// exhausted retries, a non-retryable failure, or the wall-clock cap).
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel requests cooperative cancellation of the in-flight attempt.
func (h *Handle) Cancel() { h.cancel() }

// Result returns the distillate and error after Done has fired. Err is
// non-nil only on terminal failure, in which case it is always a
// *Failure.
func (h *Handle) Result() (string, error) { return h.result, h.err }

// Run launches the background distillation task. wallClock bounds the
// entire retry sequence, not a single attempt.
func Run(parent context.Context, summarizer Summarizer, systemPrompt string, entries []domain.Entry, wallClock time.Duration) *Handle {
	ctx, cancel := context.WithTimeout(parent, wallClock)
	h := &Handle{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(h.done)
		defer cancel()

		var lastFailure *Failure
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if ctx.Err() != nil {
				h.err = &Failure{Kind: FailureTimeout, Message: "distillation wall-clock exceeded"}
				return
			}

			summary, err := summarizer.Summarize(ctx, systemPrompt, entries)
			if err == nil && summary == "" {
				err = &Failure{Kind: FailureInvalidOutput, Message: "summarizer returned empty output"}
			}
			if err == nil {
				h.result = summary
				return
			}

			lastFailure = classify(err)
			if !retryable(lastFailure.Kind) || attempt == maxAttempts {
				h.err = lastFailure
				return
			}

			select {
			case <-time.After(computeBackoff(attempt)):
			case <-ctx.Done():
				h.err = &Failure{Kind: FailureTimeout, Message: "distillation wall-clock exceeded"}
				return
			}
		}
		h.err = lastFailure
	}()

	return h
}
