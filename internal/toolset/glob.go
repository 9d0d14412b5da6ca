package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/danielchristiancazares/forge/internal/config"
)

const globTimeout = 30 * time.Second

const globSchemaJSON = `{
  "type": "object",
  "properties": {
    "pattern": {"type": "string", "description": "The glob pattern to match files against"},
    "path": {"type": "string", "description": "The directory to search in; defaults to the working directory"}
  },
  "required": ["pattern"],
  "additionalProperties": false
}`

var globSchema = compileSchema(globSchemaJSON)

type globInput struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
}

// GlobTool matches files by pattern, grounded on the teacher's use of
// bmatcuk/doublestar/v4 for "**" support that path/filepath.Match lacks.
type GlobTool struct {
	workDir string
	sandbox *config.SandboxPolicy
}

// NewGlobTool builds a Glob tool rooted at workDir.
func NewGlobTool(workDir string, sandbox *config.SandboxPolicy) *GlobTool {
	return &GlobTool{workDir: workDir, sandbox: sandbox}
}

func (t *GlobTool) Name() string { return "Glob" }

func (t *GlobTool) InputSchema() json.RawMessage { return json.RawMessage(globSchemaJSON) }

func (t *GlobTool) Timeout() time.Duration { return globTimeout }

func (t *GlobTool) Execute(_ context.Context, argsJSON json.RawMessage) (string, error) {
	if _, err := validateArgs(globSchema, argsJSON); err != nil {
		return "", err
	}
	var in globInput
	if err := json.Unmarshal(argsJSON, &in); err != nil {
		return "", fmt.Errorf("parsing Glob arguments: %w", err)
	}
	if in.Pattern == "" {
		return "", fmt.Errorf("pattern is required")
	}

	searchDir := t.workDir
	if in.Path != "" {
		if filepath.IsAbs(in.Path) {
			searchDir = in.Path
		} else {
			searchDir = filepath.Join(t.workDir, in.Path)
		}
	}
	if err := t.sandbox.CheckPath(searchDir); err != nil {
		return "", err
	}

	info, err := os.Stat(searchDir)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", searchDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", searchDir)
	}

	matches, err := doublestar.Glob(os.DirFS(searchDir), in.Pattern)
	if err != nil {
		return "", fmt.Errorf("matching pattern %q: %w", in.Pattern, err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No files matched %q in %s", in.Pattern, searchDir), nil
	}

	type entry struct {
		path    string
		modTime int64
	}
	entries := make([]entry, 0, len(matches))
	for _, m := range matches {
		abs := filepath.Join(searchDir, m)
		fi, err := os.Stat(abs)
		if err != nil || fi.IsDir() {
			continue
		}
		entries = append(entries, entry{path: abs, modTime: fi.ModTime().UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime > entries[j].modTime })

	var out strings.Builder
	for _, e := range entries {
		out.WriteString(e.path)
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n"), nil
}
