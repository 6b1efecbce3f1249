// Package catalog keeps the local catalog of remote add-on repositories,
// refreshes it from their index documents, installs add-ons through a
// transfer agent and persists what was installed.
//
// A Service is guarded by a single mutex. Every public operation holds it
// for its whole duration, including network round trips, so readers never
// see a partially merged repository.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/addonctl/pkg/docstore"
	"github.com/glorpus-work/addonctl/pkg/sink"
	"github.com/glorpus-work/addonctl/pkg/transfer"
)

// DefaultTTL applies to repositories created without one.
const DefaultTTL = time.Hour

// Hooks are optional callbacks invoked while the service works.
type Hooks struct {
	OnProgress func(Progress)
}

// InstallEvent describes a completed install.
type InstallEvent struct {
	Ref         AddonRef
	DisplayName string
	InstallPath string
	Version     string
}

// PostInstallFunc runs after a successful install. Its error is logged and
// does not undo the install.
type PostInstallFunc func(ctx context.Context, ev InstallEvent) error

// RepositorySpec describes a repository to add.
type RepositorySpec struct {
	CodeName    string
	DisplayName string
	BaseURL     string
	TTL         time.Duration
}

// Options configure a Service.
type Options struct {
	Fetcher     docstore.Fetcher
	Agent       transfer.Agent
	Sink        sink.Sink
	Roots       Destinations
	Channel     string
	Hooks       Hooks
	PostInstall PostInstallFunc
	// FetchTimeout bounds each remote document fetch. Zero leaves the
	// fetcher's own timeout in charge.
	FetchTimeout time.Duration
	// DefaultRepository, when set, is present before any state is loaded.
	DefaultRepository *RepositorySpec
	Clock             func() time.Time
}

type boundSession struct {
	name    string
	session transfer.Session
	ref     AddonRef
}

// Service is the add-on catalog.
type Service struct {
	mu sync.Mutex

	repos     []*Repository
	installed []*InstalledAddon
	sessions  []boundSession

	fetcher      docstore.Fetcher
	agent        transfer.Agent
	sink         sink.Sink
	roots        Destinations
	channel      string
	hooks        Hooks
	postInstall  PostInstallFunc
	fetchTimeout time.Duration
	now          func() time.Time
}

// New creates a Service.
func New(opts Options) *Service {
	s := &Service{
		fetcher:      opts.Fetcher,
		agent:        opts.Agent,
		sink:         opts.Sink,
		roots:        opts.Roots,
		channel:      opts.Channel,
		hooks:        opts.Hooks,
		postInstall:  opts.PostInstall,
		fetchTimeout: opts.FetchTimeout,
		now:          opts.Clock,
	}
	if s.sink == nil {
		s.sink = sink.Discard
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.DefaultRepository != nil {
		if err := s.addRepository(*opts.DefaultRepository); err != nil {
			s.logf(sink.Error, "default repository ignored: %v", err)
		}
	}
	return s
}

func (s *Service) logf(level sink.Level, format string, args ...interface{}) {
	sink.Emit(s.sink, fmt.Sprintf(format, args...), level)
}

func (s *Service) progress(repo string, received int) {
	if s.hooks.OnProgress == nil {
		return
	}
	defer func() { _ = recover() }()
	s.hooks.OnProgress(Progress{Repository: repo, TotalUnits: 100, ReceivedUnits: received})
}

// AddRepository adds an enabled repository.
func (s *Service) AddRepository(spec RepositorySpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addRepository(spec)
}

func (s *Service) addRepository(spec RepositorySpec) error {
	if spec.CodeName == "" || spec.BaseURL == "" {
		return fmt.Errorf("repository needs a code name and a url")
	}
	if strings.Contains(spec.CodeName, "/") {
		return fmt.Errorf("repository code name %q must not contain '/'", spec.CodeName)
	}
	if s.repository(spec.CodeName) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateRepository, spec.CodeName)
	}
	if spec.DisplayName == "" {
		spec.DisplayName = spec.CodeName
	}
	if spec.TTL <= 0 {
		spec.TTL = DefaultTTL
	}
	s.repos = append(s.repos, &Repository{
		CodeName:    spec.CodeName,
		DisplayName: spec.DisplayName,
		BaseURL:     spec.BaseURL,
		TTL:         spec.TTL,
		Enabled:     true,
	})
	return nil
}

// RemoveRepository drops a repository and its installed records.
func (s *Service) RemoveRepository(codeName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.repos {
		if r.CodeName != codeName {
			continue
		}
		s.repos = append(s.repos[:i], s.repos[i+1:]...)
		kept := s.installed[:0]
		for _, ia := range s.installed {
			if ia.Ref.Repository != codeName {
				kept = append(kept, ia)
			}
		}
		s.installed = kept
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRepositoryNotFound, codeName)
}

// SetEnabled turns refreshing of a repository on or off.
func (s *Service) SetEnabled(codeName string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.repository(codeName)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrRepositoryNotFound, codeName)
	}
	r.Enabled = enabled
	return nil
}

func (s *Service) repository(codeName string) *Repository {
	for _, r := range s.repos {
		if r.CodeName == codeName {
			return r
		}
	}
	return nil
}

// Repositories returns a deep copy of the catalog.
func (s *Service) Repositories() []Repository {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Repository, 0, len(s.repos))
	for _, r := range s.repos {
		out = append(out, copyRepository(r))
	}
	return out
}

func copyRepository(r *Repository) Repository {
	cp := *r
	cp.Lists = make([]*AddonList, 0, len(r.Lists))
	for _, l := range r.Lists {
		lc := *l
		lc.Categories = make([]*Category, 0, len(l.Categories))
		for _, c := range l.Categories {
			cc := *c
			cc.Addons = make([]*Addon, 0, len(c.Addons))
			for _, a := range c.Addons {
				ac := *a
				cc.Addons = append(cc.Addons, &ac)
			}
			lc.Categories = append(lc.Categories, &cc)
		}
		cp.Lists = append(cp.Lists, &lc)
	}
	return cp
}

// Installed returns a copy of the installed records.
func (s *Service) Installed() []InstalledAddon {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]InstalledAddon, 0, len(s.installed))
	for _, ia := range s.installed {
		out = append(out, *ia)
	}
	return out
}

// Find returns a copy of the add-on ref points at.
func (s *Service) Find(ref AddonRef) (Addon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.resolve(ref)
	if err != nil {
		return Addon{}, err
	}
	return *r.addon, nil
}

// resolved is the result of resolving an AddonRef.
type resolved struct {
	repo     *Repository
	list     *AddonList
	category *Category
	addon    *Addon
}

// ref returns the fully qualified reference of the resolved add-on.
func (r resolved) ref() AddonRef {
	return AddonRef{
		Repository: r.repo.CodeName,
		List:       r.list.DisplayName,
		Category:   r.category.CodeName,
		Addon:      r.addon.CodeName,
	}
}

func (s *Service) resolve(ref AddonRef) (resolved, error) {
	repo := s.repository(ref.Repository)
	if repo == nil {
		return resolved{}, fmt.Errorf("%w: %s: unknown repository", ErrAddonNotFound, ref)
	}
	list := repo.List(ref.List)
	if list == nil {
		return resolved{}, fmt.Errorf("%w: %s: unknown list", ErrAddonNotFound, ref)
	}
	for _, c := range list.Categories {
		if ref.Category != "" && c.CodeName != ref.Category {
			continue
		}
		if a := c.Addon(ref.Addon); a != nil {
			return resolved{repo: repo, list: list, category: c, addon: a}, nil
		}
	}
	return resolved{}, fmt.Errorf("%w: %s", ErrAddonNotFound, ref)
}
