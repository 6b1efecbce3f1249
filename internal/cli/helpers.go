package cli

import (
	"context"
	"fmt"

	"github.com/glorpus-work/addonctl/internal/logger"
	"github.com/glorpus-work/addonctl/pkg/cache"
	"github.com/glorpus-work/addonctl/pkg/catalog"
	"github.com/glorpus-work/addonctl/pkg/config"
	"github.com/glorpus-work/addonctl/pkg/docstore"
	"github.com/glorpus-work/addonctl/pkg/download"
	"github.com/glorpus-work/addonctl/pkg/hooks"
	"github.com/glorpus-work/addonctl/pkg/transfer"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	LogFormat  *string
)

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// loadConfig reads the configuration and initializes the logger from it.
// Command line flags win over the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	format := cfg.Settings.LogFormat
	if LogFormat != nil && *LogFormat != "" {
		format = *LogFormat
	}
	logger.InitLogger(level, logger.OutputFormat(format))
	return cfg, nil
}

// openCatalog builds the catalog service from cfg and merges the saved state.
func openCatalog(cfg *config.Config, cbs catalog.Hooks) (*catalog.Service, error) {
	s := cfg.Settings
	timeout := s.HTTPTimeout.Std()

	archives, err := cache.NewManager(s.CacheDir)
	if err != nil {
		return nil, err
	}
	fetcher := docstore.NewHTTPFetcher(docstore.FetcherOptions{Timeout: timeout, UserAgent: s.UserAgent})
	agent := &transfer.Router{
		HTTP: transfer.NewHTTPAgent(fetcher, download.NewManager(timeout, s.UserAgent), archives.ArchivesPath()),
		Git:  transfer.NewGitAgent(),
	}

	postInstall, err := loadPostInstall(s.Hooks.PostInstall)
	if err != nil {
		return nil, err
	}

	svc := catalog.New(catalog.Options{
		Fetcher: fetcher,
		Agent:   agent,
		Sink:    logger.Sink("catalog"),
		Roots: catalog.Destinations{
			Themes:     s.InstallRoots.Themes,
			Apps:       s.InstallRoots.Apps,
			Extensions: s.InstallRoots.Extensions,
			ExpPacks:   s.InstallRoots.ExpPacks,
			Languages:  s.InstallRoots.Languages,
		},
		Channel:      s.Channel,
		Hooks:        cbs,
		PostInstall:  postInstall,
		FetchTimeout: timeout,
		DefaultRepository: &catalog.RepositorySpec{
			CodeName:    cfg.DefaultRepository.CodeName,
			DisplayName: cfg.DefaultRepository.Name,
			BaseURL:     cfg.DefaultRepository.URL,
			TTL:         cfg.DefaultRepository.TTL.Std(),
		},
	})

	if err := svc.LoadFile(s.StateFile); err != nil {
		return nil, err
	}
	logger.Debug("Catalog state loaded", logger.Fields{"path": s.StateFile})
	return svc, nil
}

func saveCatalog(cfg *config.Config, svc *catalog.Service) error {
	if err := svc.SaveFile(cfg.Settings.StateFile); err != nil {
		return err
	}
	logger.Debug("Catalog state saved", logger.Fields{"path": cfg.Settings.StateFile})
	return nil
}

// loadPostInstall turns the configured tengo script into a catalog hook.
func loadPostInstall(path string) (catalog.PostInstallFunc, error) {
	if path == "" {
		return nil, nil
	}
	executor := hooks.NewTengoExecutor()
	if err := hooks.LoadScriptFile(executor, hooks.PostInstall, path); err != nil {
		return nil, err
	}
	return func(ctx context.Context, ev catalog.InstallEvent) error {
		return executor.Execute(ctx, hooks.PostInstall, hooks.HookContext{
			AddonName:    ev.DisplayName,
			AddonCode:    ev.Ref.Addon,
			Repository:   ev.Ref.Repository,
			ListName:     ev.Ref.List,
			InstallPath:  ev.InstallPath,
			AddonVersion: ev.Version,
		})
	}, nil
}

// progressHooks logs refresh progress at debug level.
func progressHooks() catalog.Hooks {
	return catalog.Hooks{OnProgress: func(p catalog.Progress) {
		logger.Debug("Refreshing repository", logger.Fields{
			"repository": p.Repository,
			"progress":   fmt.Sprintf("%d/%d", p.ReceivedUnits, p.TotalUnits),
		})
	}}
}
