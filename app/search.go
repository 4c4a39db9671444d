package app

import (
	"context"
	"fmt"
	"os"

	"taskdeck/cmd"
	"taskdeck/cmd/commands"
	"taskdeck/config"
	"taskdeck/issues"
	"taskdeck/palette"
	"taskdeck/palette/providers"
)

func engineOptions(cfg *config.Config) []palette.EngineOption {
	var opts []palette.EngineOption
	if d := cfg.ProviderTimeout(); d > 0 {
		opts = append(opts, palette.WithProviderTimeout(d))
	}
	return append(opts, palette.WithMaxConcurrency(cfg.Palette.MaxConcurrency))
}

// Search runs a single palette query without starting the UI. Result actions
// are not wired, so selecting a returned result does nothing. An empty query
// with initial set returns what an opened palette shows before typing.
func Search(ctx context.Context, cfg *config.Config, req palette.Request, initial bool) ([]palette.Result, error) {
	commandRegistry := cmd.NewCommandRegistry()
	if err := cmd.InitializeCommands(commandRegistry, nil); err != nil {
		return nil, fmt.Errorf("failed to initialize commands: %w", err)
	}

	repoPath := cfg.RepoPath
	if repoPath == "" {
		if wd, err := os.Getwd(); err == nil {
			repoPath = wd
		}
	}
	noop := func(string) error { return nil }

	registry := palette.NewRegistry()
	for _, p := range []palette.Provider{
		providers.NewCommandProvider(commandRegistry),
		providers.NewNavigationProvider(&commands.NavigationHandlers{}),
		providers.NewIssueProvider(issues.NewMockTracker(), noop),
		providers.NewBranchProvider(repoPath, noop),
	} {
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register palette provider: %w", err)
		}
	}
	engine := palette.NewEngine(registry, engineOptions(cfg)...)

	if req.Limit <= 0 {
		req.Limit = cfg.Palette.Limit
	}
	if initial && req.Query == "" {
		results, err := engine.InitialResults(ctx, req.Context)
		if err != nil {
			return nil, err
		}
		if req.Limit > 0 && len(results) > req.Limit {
			results = results[:req.Limit]
		}
		return results, nil
	}
	return engine.Query(ctx, req)
}
