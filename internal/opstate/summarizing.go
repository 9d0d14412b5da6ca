package opstate

import (
	"github.com/danielchristiancazares/forge/internal/distill"
	"github.com/danielchristiancazares/forge/internal/domain"
)

// SummarizingState holds the in-flight distillation task. distill.Handle
// already carries out spec §4.9's full retry sequence (up to 5 attempts
// with jittered backoff) before settling, so this state covers the
// entire retry window, not just a single attempt.
type SummarizingState struct {
	Task *distill.Handle
}

func (*SummarizingState) Kind() Kind { return KindSummarizing }
func (*SummarizingState) isState()   {}

// SummarizingWithQueuedState is SummarizingState plus a user request
// blocked until the task settles.
type SummarizingWithQueuedState struct {
	Task   *distill.Handle
	Queued domain.QueuedUserMessage
}

func (*SummarizingWithQueuedState) Kind() Kind { return KindSummarizingWithQueued }
func (*SummarizingWithQueuedState) isState()   {}
