package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/logger"
)

// NewUpgradeCmd creates the upgrade command.
func NewUpgradeCmd() *cobra.Command {
	var (
		force  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade installed add-ons",
		Long: `Refresh the catalog, ask every installed add-on whether its remote
has a newer release and reinstall the ones that do.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpgrade(cmd, force, dryRun)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Refresh repositories even if their TTL has not elapsed")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only list add-ons that would be upgraded")

	return cmd
}

func runUpgrade(cmd *cobra.Command, force, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openCatalog(cfg, progressHooks())
	if err != nil {
		return err
	}

	if dryRun {
		items := svc.GetUpgradeList(cmd.Context(), force)
		if len(items) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All add-ons are up to date")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ADDON\tSOURCE\tSIZE")
		for _, item := range items {
			source := "(not in catalog)"
			if item.Addon != nil {
				source = item.Addon.String()
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", item.CodeName, source, item.EstimatedSize)
		}
		return tw.Flush()
	}

	results, upgradeErr := svc.Update(cmd.Context(), force)
	for _, res := range results {
		logger.Success("Upgraded add-on", logger.Fields{"addon": res.Ref.String(), "version": versionLabel(res.Marker, res.Version)})
	}
	if len(results) == 0 && upgradeErr == nil {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "All add-ons are up to date")
	}

	if err := saveCatalog(cfg, svc); err != nil {
		return err
	}
	return upgradeErr
}
