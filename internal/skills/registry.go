package skills

import "strings"

// Registry resolves a slash-command name (as command.Parse extracts
// it from a KindUnknown Command.Raw, without the leading slash) to the
// skill it should invoke.
type Registry struct {
	byTrigger map[string]Skill
}

// NewRegistry indexes loaded by trigger name. A skill with no Trigger
// is indexed under its own Name instead, so a skill file with only
// "name: commit" still responds to "/commit".
func NewRegistry(loaded []Skill) *Registry {
	r := &Registry{byTrigger: make(map[string]Skill, len(loaded))}
	for _, s := range loaded {
		trigger := strings.TrimPrefix(s.Trigger, "/")
		if trigger == "" {
			trigger = s.Name
		}
		if trigger == "" {
			continue
		}
		r.byTrigger[strings.ToLower(trigger)] = s
	}
	return r
}

// Lookup finds the skill triggered by name (case-insensitive, no
// leading slash).
func (r *Registry) Lookup(name string) (Skill, bool) {
	s, ok := r.byTrigger[strings.ToLower(name)]
	return s, ok
}
