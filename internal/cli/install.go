package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/logger"
	"github.com/glorpus-work/addonctl/pkg/catalog"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var reinstall bool

	cmd := &cobra.Command{
		Use:   "install REPO/LIST[/CATEGORY]/ADDON...",
		Short: "Install add-ons",
		Long: `Install one or more add-ons from the configured repositories into the
destination directory configured for their list.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args, reinstall)
		},
	}

	cmd.Flags().BoolVar(&reinstall, "reinstall", false, "Transfer the add-on again even if it is installed")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string, reinstall bool) error {
	refs := make([]catalog.AddonRef, 0, len(args))
	for _, arg := range args {
		ref, err := catalog.ParseAddonRef(arg)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openCatalog(cfg, progressHooks())
	if err != nil {
		return err
	}
	svc.RefreshAll(cmd.Context(), false)

	var errs []error
	for _, ref := range refs {
		res, err := svc.Install(cmd.Context(), ref, reinstall)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("install %s: %w", ref, err))
		case res.Skipped != nil:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: already installed (use --reinstall)\n", res.Ref)
		default:
			logger.Success("Installed add-on", logger.Fields{"addon": res.Ref.String(), "version": versionLabel(res.Marker, res.Version)})
		}
	}

	if err := saveCatalog(cfg, svc); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
