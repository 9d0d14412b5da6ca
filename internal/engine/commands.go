package engine

import (
	"fmt"
	"time"

	"github.com/danielchristiancazares/forge/internal/command"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/skills"
)

// dispatchCommand resolves a parsed Command against current operation
// state, falling back to the skills registry for anything
// command.Dispatch does not recognize, before finally executing the
// command's effect. internal/command stays free of any skills
// dependency (it only knows about the fixed built-in set); engine is
// the one package holding both the parsed Command and the loaded
// Registry, so it is the natural place for that fallback to live.
func (e *Engine) dispatchCommand(cmd command.Command) {
	if cmd.Kind == command.KindUnknown && e.deps.Skills != nil {
		if skill, ok := e.deps.Skills.Lookup(cmd.Raw); ok {
			e.runSkill(skill, cmd.Args)
			return
		}
	}

	resolved, notice := command.Dispatch(cmd, e.ops.Current().Kind())
	if notice != nil {
		e.notice = notice.Text
		e.bumpVersion()
		return
	}
	e.runCommand(resolved)
}

// runSkill injects the skill's content as a system-style instruction
// ahead of the user's own next message, then drops back to Normal so
// the user can follow up immediately. Skills have no side effects of
// their own here: they are prompt text, dispatched the same way a
// PreToolUse prompt-hook injection is.
func (e *Engine) runSkill(skill skills.Skill, args string) {
	msg := skill.Content
	if args != "" {
		msg = msg + "\n\n" + args
	}
	entry := domain.NewSystemMessage(msg, time.Now())
	if id, err := e.history.Append(entry); err == nil {
		e.persistEntry(id, entry)
	}
	e.notice = fmt.Sprintf("ran skill: %s", skill.Name)
	e.bumpVersion()
}

func (e *Engine) runCommand(cmd command.Command) {
	switch cmd.Kind {
	case command.KindHelp:
		e.notice = "normal: i insert, : command, m model, q quit. insert: enter submit, esc normal, @ file picker."
	case command.KindVersion:
		e.notice = "forge (development build)"
	case command.KindCost:
		budget := e.ctxmgr.Classify(e.activeModel)
		e.notice = fmt.Sprintf("estimated input tokens: %d (%s)", budget.EstimatedInputTokens, budget.Classification)
	case command.KindContext:
		e.notice = e.contextSummary()
	case command.KindModel:
		e.input.EnterModelSelect(e.deps.ModelCatalog)
	case command.KindMcp:
		e.notice = "mcp servers: see config.toml [mcp_servers]"
	case command.KindConfig:
		e.notice = "config: edit config.toml and restart to apply changes"
	case command.KindClear:
		e.history.Clear()
		e.ctxmgr.ClearCut()
		e.render.Reset()
	case command.KindMemory:
		e.notice = "memory editing is not available in this session"
	case command.KindInit:
		e.notice = "project memory initialization is not available in this session"
	case command.KindLogin:
		e.notice = "run the forge login command outside the session to authenticate"
	case command.KindLogout:
		e.notice = "run the forge logout command outside the session to clear credentials"
	case command.KindCompact:
		view := e.ctxmgr.View()
		if len(view.Messages) == 0 {
			e.notice = "nothing to compact"
			break
		}
		e.beginSummarizationNoQueue()
	case command.KindResume, command.KindContinue:
		e.notice = "switching sessions is not available mid-session; restart forge with --resume"
	case command.KindDiff:
		e.notice = "diff review is not available in this session"
	case command.KindReview:
		e.notice = "code review is not available in this session"
	case command.KindCancel:
		e.cancelActiveOperation()
	case command.KindQuit:
		e.quitting = true
	default:
		e.notice = fmt.Sprintf("unknown command: %s", cmd.Raw)
	}
	e.bumpVersion()
}

func (e *Engine) contextSummary() string {
	budget := e.ctxmgr.Classify(e.activeModel)
	cut, hasCut := e.ctxmgr.ActiveCut()
	if !hasCut {
		return fmt.Sprintf("%s: %d tokens estimated, no active distillation", budget.Classification, budget.EstimatedInputTokens)
	}
	return fmt.Sprintf("%s: %d tokens estimated, distilled before message index %d",
		budget.Classification, budget.EstimatedInputTokens, cut.BeforeIndex)
}

