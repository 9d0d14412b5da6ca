package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkillWithFrontmatter(t *testing.T) {
	content := `---
name: commit
description: Create a git commit
trigger: /commit
---

# Commit Skill

Instructions for creating commits...`

	skill := parseSkill(content, "test.md")

	assert.Equal(t, "commit", skill.Name)
	assert.Equal(t, "Create a git commit", skill.Description)
	assert.Equal(t, "/commit", skill.Trigger)
	assert.Equal(t, "# Commit Skill\n\nInstructions for creating commits...", skill.Content)
}

func TestParseSkillNoFrontmatter(t *testing.T) {
	skill := parseSkill("Just some markdown content", "test.md")
	assert.Empty(t, skill.Name)
	assert.Equal(t, "Just some markdown content", skill.Content)
}

func TestParseSkillEmptyFrontmatter(t *testing.T) {
	skill := parseSkill("---\n---\nBody content here", "test.md")
	assert.Equal(t, "Body content here", skill.Content)
}

func TestParseSkillPartialFrontmatter(t *testing.T) {
	skill := parseSkill("---\nname: myskill\n---\nBody", "test.md")
	assert.Equal(t, "myskill", skill.Name)
	assert.Empty(t, skill.Description)
}

func TestLoadSkillsFromDirParsesMarkdownAndIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	skillContent := "---\nname: test-skill\ndescription: A test skill\ntrigger: /test\n---\nTest instructions"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.md"), []byte(skillContent), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a skill"), 0644))

	loaded := loadSkillsFromDir(dir)
	require.Len(t, loaded, 1)
	assert.Equal(t, "test-skill", loaded[0].Name)
	assert.Equal(t, "/test", loaded[0].Trigger)
}

func TestLoadSkillsFromDirFallsBackToFilenameStem(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "review.md"), []byte("Review instructions"), 0644))

	loaded := loadSkillsFromDir(dir)
	require.Len(t, loaded, 1)
	assert.Equal(t, "review", loaded[0].Name)
}

func TestLoadSkillsFromDirNonexistentDirReturnsNil(t *testing.T) {
	assert.Nil(t, loadSkillsFromDir("/nonexistent/path"))
}

func TestActiveSkillContentEmptyReturnsEmptyString(t *testing.T) {
	assert.Empty(t, ActiveSkillContent(nil))
}

func TestActiveSkillContentJoinsMultipleSkills(t *testing.T) {
	content := ActiveSkillContent([]Skill{
		{Name: "skill1", Description: "First", Trigger: "/s1", Content: "Body 1"},
		{Name: "skill2", Description: "Second", Content: "Body 2"},
	})

	assert.Contains(t, content, "skill1")
	assert.Contains(t, content, "skill2")
	assert.Contains(t, content, "Body 1")
	assert.Contains(t, content, "Body 2")
}

func TestLoadSkillsProjectLevelOverridesUserLevelByName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cwd := t.TempDir()

	userDir := filepath.Join(home, ".forge", "skills")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "shared.md"), []byte(
		"---\nname: shared-skill\ndescription: User version\n---\nUser content"), 0644))

	projDir := filepath.Join(cwd, ".forge", "skills")
	require.NoError(t, os.MkdirAll(projDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(projDir, "shared.md"), []byte(
		"---\nname: shared-skill\ndescription: Project version\n---\nProject content"), 0644))

	loaded := LoadSkills(cwd)

	var found *Skill
	for i := range loaded {
		if loaded[i].Name == "shared-skill" {
			found = &loaded[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "Project version", found.Description)
}

func TestRegistryLookupIndexesByTriggerWithoutSlash(t *testing.T) {
	reg := NewRegistry([]Skill{{Name: "commit", Trigger: "/commit", Content: "body"}})

	skill, ok := reg.Lookup("commit")
	require.True(t, ok)
	assert.Equal(t, "body", skill.Content)
}

func TestRegistryLookupFallsBackToNameWhenNoTrigger(t *testing.T) {
	reg := NewRegistry([]Skill{{Name: "review", Content: "body"}})

	_, ok := reg.Lookup("review")
	assert.True(t, ok)
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry([]Skill{{Name: "commit", Trigger: "/Commit"}})

	_, ok := reg.Lookup("COMMIT")
	assert.True(t, ok)
}

func TestRegistryLookupMissReturnsFalse(t *testing.T) {
	reg := NewRegistry(nil)
	_, ok := reg.Lookup("anything")
	assert.False(t, ok)
}
