package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/logger"
	"github.com/glorpus-work/addonctl/pkg/cache"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the archive cache",
		Long:  "Clean, show information about, and locate downloaded add-on archives",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "clean",
			Short: "Remove downloaded archives",
			RunE:  runCacheClean,
		},
		&cobra.Command{
			Use:   "info",
			Short: "Show cache information",
			RunE:  runCacheInfo,
		},
		&cobra.Command{
			Use:   "dir",
			Short: "Show cache directory path",
			RunE:  runCacheDir,
		},
	)

	return cmd
}

func cacheManager() (*cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewManager(cfg.Settings.CacheDir)
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	mgr, err := cacheManager()
	if err != nil {
		return err
	}
	freed, err := mgr.Clean()
	if err != nil {
		return fmt.Errorf("failed to clean cache: %w", err)
	}
	if freed == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No files were removed from the cache.")
		return nil
	}
	logger.Success("Cache cleaned", logger.Fields{"freed": cache.FormatBytes(freed)})
	return nil
}

func runCacheInfo(cmd *cobra.Command, _ []string) error {
	mgr, err := cacheManager()
	if err != nil {
		return err
	}
	info, err := mgr.Info()
	if err != nil {
		return fmt.Errorf("failed to get cache info: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cache Information:\n  Directory: %s\n  Archives:  %s (%d files)\n",
		info.Directory, cache.FormatBytes(info.Size), info.Files)
	return nil
}

func runCacheDir(cmd *cobra.Command, _ []string) error {
	mgr, err := cacheManager()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), mgr.Directory())
	return nil
}
