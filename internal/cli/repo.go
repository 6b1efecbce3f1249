package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/addonctl/internal/logger"
	"github.com/glorpus-work/addonctl/pkg/catalog"
)

// NewRepoCmd creates the repo command with subcommands.
func NewRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
		Long:  "Add, remove, list, enable and disable add-on repositories",
	}

	cmd.AddCommand(
		newRepoAddCmd(),
		newRepoRemoveCmd(),
		newRepoListCmd(),
		newRepoToggleCmd("enable", "Enable refreshing of a repository", true),
		newRepoToggleCmd("disable", "Stop refreshing a repository", false),
	)

	return cmd
}

func newRepoAddCmd() *cobra.Command {
	var (
		name string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add CODENAME URL",
		Short: "Add a repository",
		Long:  "Add a repository by code name and the URL of its root index document",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateCatalog(func(svc *catalog.Service) error {
				return svc.AddRepository(catalog.RepositorySpec{
					CodeName:    args[0],
					DisplayName: name,
					BaseURL:     args[1],
					TTL:         ttl,
				})
			}, "Repository added", args[0])
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the code name)")
	cmd.Flags().DurationVar(&ttl, "ttl", catalog.DefaultTTL, "How long a refresh stays fresh")

	return cmd
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove CODENAME",
		Aliases: []string{"rm"},
		Short:   "Remove a repository",
		Long:    "Remove a repository together with the install records of its add-ons",
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateCatalog(func(svc *catalog.Service) error {
				return svc.RemoveRepository(args[0])
			}, "Repository removed", args[0])
		},
	}
}

func newRepoToggleCmd(verb, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " CODENAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return mutateCatalog(func(svc *catalog.Service) error {
				return svc.SetEnabled(args[0], enabled)
			}, "Repository "+verb+"d", args[0])
		},
	}
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured repositories",
		Long:  "List all configured add-on repositories",
		RunE:  runRepoList,
	}
}

// mutateCatalog applies fn to the saved catalog state and writes it back.
func mutateCatalog(fn func(*catalog.Service) error, success, codeName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openCatalog(cfg, catalog.Hooks{})
	if err != nil {
		return err
	}
	if err := fn(svc); err != nil {
		return err
	}
	if err := saveCatalog(cfg, svc); err != nil {
		return err
	}
	logger.Success(success, logger.Fields{"repository": codeName})
	return nil
}

func runRepoList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openCatalog(cfg, catalog.Hooks{})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CODENAME\tNAME\tTTL\tSTATUS\tURL")
	for _, r := range svc.Repositories() {
		status := "enabled"
		if !r.Enabled {
			status = "disabled"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.CodeName, r.DisplayName, r.TTL, status, r.BaseURL)
	}
	return tw.Flush()
}
