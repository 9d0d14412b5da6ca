// Package provideradapter translates each backend's wire protocol into
// the normalized streampipe.Event shape, so the engine never depends
// on a specific provider SDK. Grounded on the teacher's
// internal/api/streaming.go StreamHandler, which plays the same role
// for Claude alone (a set of OnXxx callbacks invoked as an SSE stream
// is parsed); this generalizes that single-provider callback interface
// into one normalized channel three adapters can feed.
package provideradapter

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/streampipe"
)

// eventChannelCapacity is the adapter-to-engine channel capacity spec
// §6 requires (>= 64 events); a slow consumer backpressures the
// adapter rather than the adapter dropping events.
const eventChannelCapacity = 64

// ToolSpec describes one tool offered to the model, independent of any
// provider's wire shape.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
}

// Request is everything an adapter needs to start one streaming step,
// independent of which provider ends up serving it.
type Request struct {
	SystemPrompt string
	Entries      []domain.Entry
	Model        domain.ModelName
	Key          domain.ApiKey
	Tools        []ToolSpec
	MaxTokens    int
}

// Adapter starts a single streaming step and returns a receive-only
// channel of normalized events, closed when the stream ends (after an
// EventDone or EventError). The returned CancelFunc lets the engine
// abort an in-flight stream on a :cancel command.
type Adapter interface {
	Stream(ctx context.Context, req Request) (<-chan streampipe.Event, context.CancelFunc, error)
}

// Registry resolves a Provider to its Adapter. Built once at startup
// from whichever providers the user has configured credentials for.
type Registry struct {
	adapters map[domain.Provider]Adapter
}

// NewRegistry builds a Registry from explicit provider/adapter pairs.
func NewRegistry(pairs map[domain.Provider]Adapter) *Registry {
	reg := &Registry{adapters: make(map[domain.Provider]Adapter, len(pairs))}
	for p, a := range pairs {
		reg.adapters[p] = a
	}
	return reg
}

// Resolve returns the Adapter registered for provider.
func (r *Registry) Resolve(provider domain.Provider) (Adapter, error) {
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("provideradapter: no adapter registered for %s", provider)
	}
	return a, nil
}

// RateLimited wraps an Adapter with a token-bucket limiter so a burst of
// retried turns never exceeds a provider's own request-rate limit.
// Grounded on the token-bucket limiter pattern other example repos
// build around golang.org/x/time/rate (e.g. taipm-go-deep-agent's
// agent.tokenBucketLimiter), reduced to the one knob forge needs: a
// blocking Wait before a stream starts, not per-key stats or
// reservations.
type RateLimited struct {
	next    Adapter
	limiter *rate.Limiter
}

// NewRateLimited returns an Adapter that waits for a token from a
// limiter allowing ratePerSecond requests/sec with the given burst
// before delegating to next.
func NewRateLimited(next Adapter, ratePerSecond float64, burst int) *RateLimited {
	return &RateLimited{next: next, limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Stream blocks until the limiter admits the request, then delegates.
func (r *RateLimited) Stream(ctx context.Context, req Request) (<-chan streampipe.Event, context.CancelFunc, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("provideradapter: rate limit wait: %w", err)
	}
	return r.next.Stream(ctx, req)
}

// emit is a small helper every adapter's background goroutine uses to
// push an event without blocking forever past context cancellation.
func emit(ctx context.Context, out chan<- streampipe.Event, ev streampipe.Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
