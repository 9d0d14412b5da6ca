// Package contextmgr derives the API-visible slice of history and
// classifies context pressure for it. Grounded on the teacher's
// internal/conversation/context.go (system-reminder assembly) and
// compaction.go (token-threshold trigger, message-range replacement),
// generalized from a single fixed threshold into the four-way
// Healthy/Tight/MustDistill/CannotFit classification and single
// replaceable distillation cut spec §4.6 describes.
package contextmgr

import (
	"github.com/danielchristiancazares/forge/internal/domain"
)

// Cut records the single active distillation: entries strictly before
// BeforeIndex in history have been replaced, for API purposes, by
// Distillate.
type Cut struct {
	BeforeIndex int
	Distillate  domain.Message
}

// View is a prepared API request body: system prompt, the distillate
// if a cut exists, then every message after the cut.
type View struct {
	SystemPrompt string
	Distillate   *domain.Message
	Messages     []domain.Entry
}

// minMessagesToExtendCut is the post-cut message count a view must
// exceed before an over-budget view classifies MustDistill. At or
// below it, an over-budget view classifies CannotFit only when the
// protected tail alone exceeds the context window, and Tight otherwise.
const minMessagesToExtendCut = 2

// Manager derives API views from history and classifies their context
// pressure against an active model. Owned exclusively by the engine
// thread.
type Manager struct {
	history      *domain.History
	systemPrompt string
	cut          *Cut
}

func NewManager(history *domain.History, systemPrompt string) *Manager {
	return &Manager{history: history, systemPrompt: systemPrompt}
}

// View builds the current API view.
func (m *Manager) View() View {
	entries := m.history.Entries()
	v := View{SystemPrompt: m.systemPrompt}
	if m.cut != nil {
		d := m.cut.Distillate
		v.Distillate = &d
		if m.cut.BeforeIndex <= len(entries) {
			v.Messages = entries[m.cut.BeforeIndex:]
		}
		return v
	}
	v.Messages = entries
	return v
}

// Classify computes the budget classification for the current view
// against model's limits.
func (m *Manager) Classify(model domain.ModelName) Budget {
	limits := model.Limits()
	v := m.View()

	estimated := EstimateTokens(v.SystemPrompt)
	if v.Distillate != nil {
		estimated += EstimateTokens(v.Distillate.Content())
	}
	for _, e := range v.Messages {
		estimated += EstimateTokens(e.Message.Content())
	}

	moreToCut := len(v.Messages) > minMessagesToExtendCut
	protectedTail := EstimateTokens(m.systemPrompt) + lastUserMessageTokens(v.Messages)

	return classify(limits, estimated, moreToCut, protectedTail)
}

func lastUserMessageTokens(entries []domain.Entry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Message.Kind() == domain.MessageUser {
			return EstimateTokens(entries[i].Message.Content())
		}
	}
	return 0
}

// ActiveCut reports the current distillation cut, if any.
func (m *Manager) ActiveCut() (Cut, bool) {
	if m.cut == nil {
		return Cut{}, false
	}
	return *m.cut, true
}

// SetCut installs a new distillation, replacing any prior one. Per
// spec §4.6 at most one cut exists at a time; a new distillation
// always operates on the current API-visible slice, never recursively
// on a prior distillate.
func (m *Manager) SetCut(beforeIndex int, distillate domain.Message) {
	m.cut = &Cut{BeforeIndex: beforeIndex, Distillate: distillate}
}

// ClearCut removes the active distillation, if any.
func (m *Manager) ClearCut() {
	m.cut = nil
}

// TryRestore drops the active cut if the full history once again fits
// under model's limits. Restoration is advisory and bounded: it only
// ever fully restores or leaves the cut untouched, never splits a
// distillate into a smaller one.
func (m *Manager) TryRestore(model domain.ModelName) bool {
	if m.cut == nil {
		return false
	}
	limits := model.Limits()
	entries := m.history.Entries()

	estimated := EstimateTokens(m.systemPrompt)
	for _, e := range entries {
		estimated += EstimateTokens(e.Message.Content())
	}
	remaining := limits.ContextTokens - estimated - limits.MaxOutputTokens - safetyMargin
	if remaining < 0 {
		return false
	}
	m.cut = nil
	return true
}
