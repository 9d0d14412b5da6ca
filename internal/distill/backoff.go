package distill

import (
	"math"
	"math/rand/v2"
	"time"
)

// maxAttempts is the number of summarization attempts before a
// distillation task gives up with a terminal failure.
const maxAttempts = 5

// computeBackoff implements spec §4.9's retry delay: for attempt n
// (1-indexed), min(8000ms, 500ms*2^(n-1)) plus uniform jitter in
// [0, 200ms). Grounded on haasonsaas-nexus's
// internal/backoff/policy.ComputeBackoff/ComputeBackoffWithRand split,
// which separates the random draw out for deterministic tests.
func computeBackoff(attempt int) time.Duration {
	return computeBackoffWithRand(attempt, rand.Float64())
}

func computeBackoffWithRand(attempt int, randomValue float64) time.Duration {
	exp := math.Max(float64(attempt-1), 0)
	base := math.Min(8000, 500*math.Pow(2, exp))
	jitter := randomValue * 200
	return time.Duration(base+jitter) * time.Millisecond
}
