package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/logger"
)

// NewRefreshCmd creates the refresh command.
func NewRefreshCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh repository catalogs",
		Long: `Fetch the index documents of every enabled repository whose TTL has
elapsed and merge them into the local catalog.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRefresh(cmd, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Refresh repositories even if their TTL has not elapsed")

	return cmd
}

func runRefresh(cmd *cobra.Command, force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openCatalog(cfg, progressHooks())
	if err != nil {
		return err
	}

	report := svc.RefreshAll(cmd.Context(), force)

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Refreshed: %d, failed: %d, skipped: %d\n",
		len(report.Refreshed), len(report.Failed), len(report.Skipped))
	if len(report.Failed) > 0 {
		logger.Warn("Some repositories could not be refreshed", logger.Fields{"repositories": strings.Join(report.Failed, ",")})
	}

	return saveCatalog(cfg, svc)
}
