// Package skills discovers markdown-with-frontmatter skill files and
// exposes their slash-command triggers, which the engine's command
// dispatcher looks up (§4.10). Skills live in:
//   - ~/.forge/skills/ (user-level, all projects)
//   - .forge/skills/   (project-level, overrides user-level by name)
//
// spec.md is silent on skills; carried forward per the expanded spec
// as a supplemented feature.
package skills

// Skill is one loaded skill definition.
type Skill struct {
	Name        string // skill name from frontmatter, or the filename stem
	Description string // short description from frontmatter
	Trigger     string // slash command trigger, e.g. "/commit"
	Content     string // markdown body, injected as instructions/prompt
	FilePath    string // source file, for diagnostics
}
