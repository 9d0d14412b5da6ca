package opstate

import (
	"context"

	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/journal"
)

// Batch is the set of tool calls parsed from one terminal assistant
// message, awaiting approval or execution.
type Batch struct {
	ID     journal.ToolBatchId
	StepID journal.StepId
	Model  domain.ModelName
	Calls  []ParsedToolCall
}

// CallResult is one call's outcome, recorded as execution proceeds.
type CallResult struct {
	CallIndex int
	Outcome   journal.CallOutcome
}

// Phase discriminates where a ToolLoopState is within its batch's
// lifecycle.
type Phase interface {
	phaseKind() string
}

// AwaitingApproval holds the decision state the approval UI is
// collecting; it is opaque to opstate (owned by internal/toolloop).
type AwaitingApproval struct {
	DecisionState any
}

func (AwaitingApproval) phaseKind() string { return "awaiting_approval" }

// Executing holds progress through sequential per-call execution.
type Executing struct {
	CurrentIndex int
	ResultsSoFar []CallResult
	Cancel       context.CancelFunc
}

func (Executing) phaseKind() string { return "executing" }

// ToolLoopState is the ToolLoop(batch, phase) variant.
type ToolLoopState struct {
	Batch Batch
	Phase Phase
}

func (*ToolLoopState) Kind() Kind { return KindToolLoop }
func (*ToolLoopState) isState()   {}

// NewToolLoopAwaitingApproval constructs a ToolLoop state freshly
// entered from Streaming.
func NewToolLoopAwaitingApproval(batch Batch, decisionState any) *ToolLoopState {
	return &ToolLoopState{Batch: batch, Phase: AwaitingApproval{DecisionState: decisionState}}
}

// ToolRecoveryState is a batch rehydrated from the tool journal on
// startup, awaiting user disposition. The engine offers only abandon;
// it does not retry or commit part of a recovered batch.
type ToolRecoveryState struct {
	Recovered journal.RecoveredBatch
	StepID    journal.StepId
	Model     domain.ModelName
}

func (*ToolRecoveryState) Kind() Kind { return KindToolRecovery }
func (*ToolRecoveryState) isState()   {}
