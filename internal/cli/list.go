package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/pkg/catalog"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var (
		repoFilter string
		installed  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available add-ons",
		Long: `List the add-ons offered by the configured repositories.

The catalog is refreshed first when a repository's TTL has elapsed.
Use --installed to list install records instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, repoFilter, installed)
		},
	}

	cmd.Flags().StringVar(&repoFilter, "repo", "", "Only show add-ons of this repository")
	cmd.Flags().BoolVar(&installed, "installed", false, "List installed add-ons")

	return cmd
}

func runList(cmd *cobra.Command, repoFilter string, installed bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openCatalog(cfg, progressHooks())
	if err != nil {
		return err
	}
	svc.RefreshAll(cmd.Context(), false)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	defer func() { _ = tw.Flush() }()

	if installed {
		_, _ = fmt.Fprintln(tw, "ADDON\tVERSION\tSTATUS")
		for _, ia := range svc.Installed() {
			if repoFilter != "" && ia.Ref.Repository != repoFilter {
				continue
			}
			status := "installed"
			if ia.Pending() {
				status = "not in catalog"
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", ia.Ref, versionLabel(ia.Marker, ia.InstalledVersion), status)
		}
		return nil
	}

	_, _ = fmt.Fprintln(tw, "ADDON\tNAME\tINSTALLED\tDESCRIPTION")
	for _, repo := range svc.Repositories() {
		if repoFilter != "" && repo.CodeName != repoFilter {
			continue
		}
		for _, list := range repo.Lists {
			for _, cat := range list.Categories {
				for _, a := range cat.Addons {
					ref := catalog.AddonRef{Repository: repo.CodeName, List: list.DisplayName, Category: cat.CodeName, Addon: a.CodeName}
					state := "-"
					if a.IsInstalled {
						state = versionLabel(a.InstalledMarker, a.InstalledVersion)
					}
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ref, a.DisplayName, state, truncate(a.Description, MaxDescriptionLength))
				}
			}
		}
	}
	return nil
}

// versionLabel prefers the verbatim marker over the release number.
func versionLabel(marker string, release int) string {
	if marker != "" {
		return marker
	}
	return fmt.Sprintf("v%d", release)
}
