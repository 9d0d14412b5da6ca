package opstate

import (
	"fmt"
)

// Machine owns the single current State and enforces spec §4.4's
// legal-transition table. It is not safe for concurrent use — like
// History and the journals, it is owned exclusively by the engine
// thread.
type Machine struct {
	current State
}

// NewMachine starts a Machine in Idle.
func NewMachine() *Machine {
	return &Machine{current: Idle}
}

// Current returns the active state.
func (m *Machine) Current() State { return m.current }

// illegalTransition is returned when a caller attempts a transition
// the current state does not permit.
func (m *Machine) illegalTransition(to string) error {
	return fmt.Errorf("illegal transition to %s from %s", to, m.current.Kind())
}

// ToStreaming implements Idle -> Streaming and ToolLoop(Executing) ->
// Streaming (on CommitBatch, resuming with extended history).
func (m *Machine) ToStreaming(s *StreamingState) error {
	switch m.current.Kind() {
	case KindIdle:
	case KindToolLoop:
		tl := m.current.(*ToolLoopState)
		if _, ok := tl.Phase.(Executing); !ok {
			return m.illegalTransition("streaming")
		}
	default:
		return m.illegalTransition("streaming")
	}
	m.current = s
	return nil
}

// ToIdle implements every *->Idle edge: Streaming seal (Complete,
// Incomplete, or Errored) with no tool calls, ToolLoop abandonment,
// Summarizing/SummarizingWithQueued settling (success with no queued
// request, or terminal failure), and ToolRecovery disposition.
func (m *Machine) ToIdle() error {
	switch m.current.Kind() {
	case KindStreaming, KindToolLoop, KindSummarizing, KindSummarizingWithQueued, KindToolRecovery:
	default:
		return m.illegalTransition("idle")
	}
	m.current = Idle
	return nil
}

// ToToolLoopAwaitingApproval implements Streaming -> ToolLoop(AwaitingApproval),
// triggered when the terminal assistant message carries tool uses.
func (m *Machine) ToToolLoopAwaitingApproval(s *ToolLoopState) error {
	if m.current.Kind() != KindStreaming {
		return m.illegalTransition("tool_loop")
	}
	if _, ok := s.Phase.(AwaitingApproval); !ok {
		return fmt.Errorf("ToToolLoopAwaitingApproval requires an AwaitingApproval phase")
	}
	m.current = s
	return nil
}

// ToToolLoopExecuting implements ToolLoop(AwaitingApproval) ->
// ToolLoop(Executing), triggered by a user approval decision.
func (m *Machine) ToToolLoopExecuting(executing Executing) error {
	tl, ok := m.current.(*ToolLoopState)
	if !ok {
		return m.illegalTransition("tool_loop_executing")
	}
	if _, ok := tl.Phase.(AwaitingApproval); !ok {
		return m.illegalTransition("tool_loop_executing")
	}
	m.current = &ToolLoopState{Batch: tl.Batch, Phase: executing}
	return nil
}

// ToSummarizing implements Idle -> Summarizing, on explicit command or
// between-turn context pressure.
func (m *Machine) ToSummarizing(s *SummarizingState) error {
	if m.current.Kind() != KindIdle {
		return m.illegalTransition("summarizing")
	}
	m.current = s
	return nil
}

// ToSummarizingWithQueued implements Idle -> SummarizingWithQueued,
// consuming a QueuedUserMessage while budget classifies MustDistill.
func (m *Machine) ToSummarizingWithQueued(s *SummarizingWithQueuedState) error {
	if m.current.Kind() != KindIdle {
		return m.illegalTransition("summarizing_with_queued")
	}
	m.current = s
	return nil
}

// ToToolRecovery is only reachable at startup, before the frame loop's
// first tick; it has no predecessor state to validate against.
func (m *Machine) ToToolRecovery(s *ToolRecoveryState) error {
	if m.current.Kind() != KindIdle {
		return m.illegalTransition("tool_recovery")
	}
	m.current = s
	return nil
}

// ToToolLoopExecutingFromRecovery implements ToolRecovery ->
// ToolLoop(Executing). The engine's recovery key handler offers only
// abandon and never calls this transition.
func (m *Machine) ToToolLoopExecutingFromRecovery(batch Batch, executing Executing) error {
	if m.current.Kind() != KindToolRecovery {
		return m.illegalTransition("tool_loop_executing")
	}
	m.current = &ToolLoopState{Batch: batch, Phase: executing}
	return nil
}
