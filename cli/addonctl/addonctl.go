package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/cli"
)

var (
	configPath string
	verbose    bool
	logFormat  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addonctl",
		Short: "Browse and install add-ons from remote repositories",
		Long: `addonctl keeps a local catalog of remote add-on repositories with:
- refresh and list: discover themes, apps, extensions, experience packs and languages
- install and upgrade: transfer add-ons into their destination directories
- serve: refresh on a schedule and expose metrics`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogFormat = &logFormat

	cmd.AddCommand(
		cli.NewRefreshCmd(),
		cli.NewListCmd(),
		cli.NewInstallCmd(),
		cli.NewUpgradeCmd(),
		cli.NewRepoCmd(),
		cli.NewConfigCmd(),
		cli.NewCacheCmd(),
		cli.NewServeCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
