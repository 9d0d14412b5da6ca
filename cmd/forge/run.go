package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/danielchristiancazares/forge/internal/auth"
	"github.com/danielchristiancazares/forge/internal/config"
	"github.com/danielchristiancazares/forge/internal/domain"
	"github.com/danielchristiancazares/forge/internal/engine"
	"github.com/danielchristiancazares/forge/internal/historydb"
	"github.com/danielchristiancazares/forge/internal/hooks"
	"github.com/danielchristiancazares/forge/internal/journal"
	"github.com/danielchristiancazares/forge/internal/logging"
	"github.com/danielchristiancazares/forge/internal/mcpclient"
	"github.com/danielchristiancazares/forge/internal/provideradapter"
	"github.com/danielchristiancazares/forge/internal/render"
	"github.com/danielchristiancazares/forge/internal/skills"
	"github.com/danielchristiancazares/forge/internal/toolset"
)

// defaultSystemPrompt is Forge's baseline identity; active skill
// content (if any) is appended to it at startup.
const defaultSystemPrompt = "You are Forge, a terminal assistant. Be direct and terse."

// interactiveOptions are the flags runInteractive needs from the root
// command; kept as a struct rather than threading cobra's *Command
// through, since the wiring below has nothing else to do with cobra.
type interactiveOptions struct {
	logLevel      string
	modelOverride string
	resumeSession string
}

func runInteractive(ctx context.Context, opts interactiveOptions) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("forge requires an interactive terminal")
	}

	logger, closeLog, err := logging.Setup(opts.logLevel)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	cfg, warnings, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	for _, w := range warnings {
		logger.Warn("unrecognized config key", "key", w.Key)
	}

	stateDir, err := stateDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	streamJournal, err := journal.OpenStreamJournal(ctx, filepath.Join(stateDir, "stream_journal.db"))
	if err != nil {
		return fmt.Errorf("opening stream journal: %w", err)
	}
	defer streamJournal.Close()

	toolJournal, err := journal.OpenToolJournal(ctx, filepath.Join(stateDir, "tool_journal.db"))
	if err != nil {
		return fmt.Errorf("opening tool journal: %w", err)
	}
	defer toolJournal.Close()

	historyStore, err := historydb.Open(ctx, filepath.Join(stateDir, "history.db"))
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer historyStore.Close()

	recovered, err := engine.Recover(ctx, streamJournal, toolJournal)
	if err != nil {
		return fmt.Errorf("recovering from prior crash: %w", err)
	}

	sessionID, history, ids, err := loadOrCreateSession(ctx, historyStore, opts.resumeSession)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	credStore, err := auth.NewCredentialStore()
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	resolver := auth.NewResolver(cfg.ApiKeys, auth.NewTokenProvider(credStore))
	providers := buildProviderRegistry(ctx, resolver, cfg)

	sandbox := config.NewSandboxPolicy(cfg.Tools.Sandbox)
	tools := toolset.NewRegistry(
		toolset.NewBashTool(cwd),
		toolset.NewFileReadTool(sandbox),
		toolset.NewFileWriteTool(sandbox),
		toolset.NewFileEditTool(sandbox),
		toolset.NewGlobTool(cwd, sandbox),
		toolset.NewGrepTool(cwd, sandbox),
		toolset.NewWebFetchTool(http.DefaultClient),
	)
	allTools := toolset.Merge(tools, discoverMCPTools(ctx, cwd, logger))

	skillList := skills.LoadSkills(cwd)
	systemPrompt := defaultSystemPrompt
	if active := skills.ActiveSkillContent(skillList); active != "" {
		systemPrompt += "\n\n" + active
	}

	catalog := modelCatalog()
	initialModel, err := resolveInitialModel(cfg, catalog, opts.modelOverride)
	if err != nil {
		return err
	}

	deps := engine.Dependencies{
		Providers:     providers,
		Tools:         allTools,
		Approval:      config.NewApprovalPolicy(cfg.Tools.Approval),
		Hooks:         hooks.NewRunner(cfg.Hooks),
		Skills:        skills.NewRegistry(skillList),
		Resolver:      resolver,
		StreamJournal: streamJournal,
		ToolJournal:   toolJournal,
		History:       historyStore,
		SessionID:     sessionID,
		Ids:           ids,
		SystemPrompt:  systemPrompt,
		ModelCatalog:  catalog,
		InitialModel:  initialModel,
		MaxTokens:     cfg.App.MaxOutputTokens,
		Accessibility: render.AccessibilityOptions{
			PlainText:    cfg.App.ASCIIOnly,
			ReduceMotion: cfg.App.ReducedMotion,
		},
	}
	if deps.MaxTokens == 0 {
		deps.MaxTokens = initialModel.Limits().MaxOutputTokens
	}

	eng := engine.New(deps, history, recovered)
	program := tea.NewProgram(eng, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running frame loop: %w", err)
	}
	return nil
}

// stateDir is <home>/.forge, matching internal/config, internal/auth,
// and internal/logging's own convention.
func stateDir() (string, error) {
	if dir := os.Getenv("FORGE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".forge"), nil
}

// loadOrCreateSession resumes resumeID if given, otherwise continues the
// most recently active session, otherwise starts a fresh one.
func loadOrCreateSession(ctx context.Context, store *historydb.Store, resumeID string) (string, *domain.History, *domain.IdSequence, error) {
	ids := domain.NewIdSequence()

	if resumeID != "" {
		return loadSession(ctx, store, ids, resumeID)
	}

	meta, found, err := store.MostRecentSession(ctx)
	if err != nil {
		return "", nil, nil, fmt.Errorf("listing sessions: %w", err)
	}
	if !found {
		sessionID := newSessionID()
		if err := store.CreateSession(ctx, sessionID, "", timeNow()); err != nil {
			return "", nil, nil, fmt.Errorf("creating session: %w", err)
		}
		return sessionID, domain.NewHistory(ids), ids, nil
	}
	return loadSession(ctx, store, ids, meta.ID)
}

func loadSession(ctx context.Context, store *historydb.Store, ids *domain.IdSequence, sessionID string) (string, *domain.History, *domain.IdSequence, error) {
	entries, err := store.LoadSession(ctx, sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	history := domain.NewHistory(ids)
	var lastID domain.MessageId
	for _, entry := range entries {
		history.AppendRestored(entry.ID, entry.Message)
		lastID = entry.ID
	}
	ids.SeedMessages(lastID)
	return sessionID, history, ids, nil
}

// providerRateLimit caps outbound requests per provider at a
// conservative rate, so a retry storm (e.g. the engine reopening a
// stream repeatedly after a transient error) never itself trips the
// provider's own rate limit.
const providerRateLimit = 4 // requests/sec
const providerRateBurst = 8

// buildProviderRegistry resolves a credential for each provider Forge
// knows about and registers a rate-limited adapter only for the ones
// that succeed; a provider the user never configured simply has no
// adapter, and internal/engine surfaces that as an error the moment a
// stream is attempted against it rather than failing startup outright.
func buildProviderRegistry(ctx context.Context, resolver *auth.Resolver, cfg *config.Config) *provideradapter.Registry {
	pairs := make(map[domain.Provider]provideradapter.Adapter)

	if key, err := resolver.Resolve(ctx, domain.ProviderClaude); err == nil {
		pairs[domain.ProviderClaude] = rateLimited(provideradapter.NewClaudeAdapter(key))
	}
	if key, err := resolver.Resolve(ctx, domain.ProviderOpenAI); err == nil {
		pairs[domain.ProviderOpenAI] = rateLimited(provideradapter.NewOpenAIAdapter(key))
	}
	if key, err := resolver.Resolve(ctx, domain.ProviderGemini); err == nil {
		pairs[domain.ProviderGemini] = rateLimited(provideradapter.NewGeminiAdapter(key))
	}

	return provideradapter.NewRegistry(pairs)
}

func rateLimited(adapter provideradapter.Adapter) provideradapter.Adapter {
	return provideradapter.NewRateLimited(adapter, providerRateLimit, providerRateBurst)
}

// discoverMCPTools starts every server named in .mcp.json and returns
// their tools wrapped in a toolset.Registry so toolset.Merge can splice
// them in alongside the built-ins. A missing or empty .mcp.json is not
// an error; a server that fails to start is logged and skipped so one
// bad server config never blocks startup.
func discoverMCPTools(ctx context.Context, cwd string, logger *slog.Logger) *toolset.Registry {
	mcpCfg, err := mcpclient.LoadConfig(cwd)
	if err != nil || mcpCfg == nil {
		return toolset.NewRegistry()
	}

	manager := mcpclient.NewManager(cwd, logger)
	discovered, err := manager.StartServers(ctx, mcpCfg.Servers)
	if err != nil {
		logger.Warn("starting MCP servers", "error", err)
	}
	return toolset.NewRegistry(discovered...)
}

// modelCatalog lists every known model across all three providers, for
// :model's selection list.
func modelCatalog() []domain.ModelName {
	var catalog []domain.ModelName
	catalog = append(catalog, domain.KnownModels(domain.ProviderClaude)...)
	catalog = append(catalog, domain.KnownModels(domain.ProviderOpenAI)...)
	catalog = append(catalog, domain.KnownModels(domain.ProviderGemini)...)
	return catalog
}

func newSessionID() string { return uuid.NewString() }

func timeNow() time.Time { return time.Now() }

// resolveInitialModel honors an explicit --model override first, then
// [app].model from config.toml, falling back to the first catalog entry
// (Claude's, since it sorts first) so startup never fails for want of a
// model selection.
func resolveInitialModel(cfg *config.Config, catalog []domain.ModelName, override string) (domain.ModelName, error) {
	if override != "" {
		return findModel(override)
	}
	if cfg.App.Model != "" {
		if model, err := findModel(cfg.App.Model); err == nil {
			return model, nil
		}
	}
	if len(catalog) == 0 {
		return domain.ModelName{}, fmt.Errorf("no known models in catalog")
	}
	return catalog[0], nil
}

// findModel matches id against each provider's known model ids in turn,
// since a bare id like "gpt-4o" carries no provider prefix of its own.
func findModel(id string) (domain.ModelName, error) {
	for _, provider := range []domain.Provider{domain.ProviderClaude, domain.ProviderOpenAI, domain.ProviderGemini} {
		if model, err := domain.NewModelName(provider, id); err == nil {
			return model, nil
		}
	}
	return domain.ModelName{}, fmt.Errorf("unknown model %q", id)
}
