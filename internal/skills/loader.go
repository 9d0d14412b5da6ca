package skills

import (
	"os"
	"path/filepath"
	"strings"
)

// LoadSkills discovers and parses skill files from both user-level
// (~/.forge/skills/) and project-level (.forge/skills/) directories.
// Project-level skills take precedence over user-level skills with the
// same name.
func LoadSkills(cwd string) []Skill {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var loaded []Skill
	seen := make(map[string]bool)

	projectDir := filepath.Join(cwd, ".forge", "skills")
	for _, s := range loadSkillsFromDir(projectDir) {
		loaded = append(loaded, s)
		seen[s.Name] = true
	}

	userDir := filepath.Join(home, ".forge", "skills")
	for _, s := range loadSkillsFromDir(userDir) {
		if !seen[s.Name] {
			loaded = append(loaded, s)
			seen[s.Name] = true
		}
	}

	return loaded
}

// ActiveSkillContent concatenates every loaded skill's content for
// injection into the system prompt.
func ActiveSkillContent(loaded []Skill) string {
	if len(loaded) == 0 {
		return ""
	}

	var parts []string
	for _, s := range loaded {
		header := "## " + s.Name
		if s.Description != "" {
			header += " — " + s.Description
		}
		if s.Trigger != "" {
			header += " (trigger: " + s.Trigger + ")"
		}
		parts = append(parts, header+"\n\n"+s.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func loadSkillsFromDir(dir string) []Skill {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var loaded []Skill
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		skill := parseSkill(string(data), path)
		if skill.Name == "" {
			skill.Name = strings.TrimSuffix(entry.Name(), ".md")
		}
		loaded = append(loaded, skill)
	}
	return loaded
}

// parseSkill parses a markdown file with optional "---"-delimited YAML
// frontmatter (simple key: value lines; no list/nested-map support).
func parseSkill(content, filePath string) Skill {
	s := Skill{FilePath: filePath}

	if !strings.HasPrefix(content, "---") {
		s.Content = strings.TrimSpace(content)
		return s
	}

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		s.Content = strings.TrimSpace(content)
		return s
	}

	frontmatter, body := parts[1], parts[2]

	for _, line := range strings.Split(frontmatter, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			s.Name = value
		case "description":
			s.Description = value
		case "trigger":
			s.Trigger = value
		}
	}

	s.Content = strings.TrimSpace(body)
	return s
}
