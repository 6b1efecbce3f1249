package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/glorpus-work/addonctl/pkg/async"
	"github.com/glorpus-work/addonctl/pkg/docstore"
	"github.com/glorpus-work/addonctl/pkg/index"
	"github.com/glorpus-work/addonctl/pkg/metrics"
	"github.com/glorpus-work/addonctl/pkg/sink"
	"github.com/glorpus-work/addonctl/pkg/transfer"
)

// Document kinds used as metric labels.
const (
	kindRepository = "repository"
	kindList       = "list"
	kindPackage    = "package"
)

// RefreshReport lists the repositories a refresh pass looked at, by outcome.
type RefreshReport struct {
	Refreshed []string
	Failed    []string
	Skipped   []string
}

// RefreshAll refreshes every enabled repository whose TTL elapsed, or all
// enabled repositories when force is set. Failures are reported through the
// sink and never returned.
func (s *Service) RefreshAll(ctx context.Context, force bool) RefreshReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshAll(ctx, force)
}

// RefreshAllAsync runs RefreshAll on its own goroutine.
func (s *Service) RefreshAllAsync(ctx context.Context, force bool) <-chan async.Result[RefreshReport] {
	return async.Go(ctx, func(ctx context.Context) (RefreshReport, error) {
		return s.RefreshAll(ctx, force), nil
	})
}

func (s *Service) refreshAll(ctx context.Context, force bool) RefreshReport {
	var report RefreshReport
	for _, repo := range s.repos {
		if !repo.Enabled || !(force || repo.Due(s.now())) {
			report.Skipped = append(report.Skipped, repo.CodeName)
			continue
		}
		if s.refreshRepository(ctx, repo) {
			report.Refreshed = append(report.Refreshed, repo.CodeName)
			metrics.RepositoryRefreshes.WithLabelValues(repo.CodeName, metrics.OutcomeOK).Inc()
		} else {
			report.Failed = append(report.Failed, repo.CodeName)
			metrics.RepositoryRefreshes.WithLabelValues(repo.CodeName, metrics.OutcomeError).Inc()
		}
	}
	return report
}

// fetch retrieves one remote document, bounded by the service's fetch timeout.
func (s *Service) fetch(ctx context.Context, kind, url string) (*docstore.Node, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("no document fetcher configured")
	}
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}
	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.DocumentFetches.WithLabelValues(kind, metrics.OutcomeError).Inc()
		return nil, err
	}
	metrics.DocumentFetches.WithLabelValues(kind, metrics.OutcomeOK).Inc()
	return doc, nil
}

func (s *Service) warnFunc(scope string) index.Warn {
	return func(msg string) {
		s.logf(sink.Warning, "%s: %s", scope, msg)
	}
}

// refreshRepository reports false when the root index could not be used.
// Sub-fetch failures are logged and do not fail the repository.
func (s *Service) refreshRepository(ctx context.Context, repo *Repository) bool {
	s.progress(repo.CodeName, 0)

	doc, err := s.fetch(ctx, kindRepository, repo.BaseURL)
	if err != nil {
		s.logf(sink.Error, "repository %s: fetching index %s: %v", repo.CodeName, repo.BaseURL, err)
		return false
	}
	idx, err := index.ParseRepoIndex(doc, s.warnFunc("repository "+repo.CodeName))
	if err != nil {
		s.logf(sink.Error, "repository %s: %v", repo.CodeName, err)
		return false
	}

	if idx.CodeName != "" && idx.CodeName != repo.CodeName {
		s.logf(sink.Warning, "repository %s: index announces code name %q, keeping %q",
			repo.CodeName, idx.CodeName, repo.CodeName)
	}
	if idx.Name != "" {
		repo.DisplayName = idx.Name
	}
	if idx.Description != "" {
		repo.Description = idx.Description
	}
	if idx.HasTTL {
		repo.TTL = idx.TTL
	}

	for _, ref := range idx.Lists {
		list := s.mergeList(repo, ref)
		s.refreshList(ctx, repo, list)
	}

	repo.LastRefreshedAt = s.now()
	s.resolvePending(repo)
	metrics.CatalogAddons.WithLabelValues(repo.CodeName).Set(float64(countAddons(repo)))
	s.progress(repo.CodeName, 100)
	return true
}

func (s *Service) mergeList(repo *Repository, ref index.ListRef) *AddonList {
	list := repo.List(ref.Name)
	if list == nil {
		list = newAddonList(ref.Name, ref.URL, ref.Description)
		repo.Lists = append(repo.Lists, list)
	} else {
		if ref.Description != "" {
			list.Description = ref.Description
		}
		if list.RemoteIndexURL == "" {
			list.RemoteIndexURL = ref.URL
		}
	}

	for _, c := range ref.Categories {
		if cat := list.Category(c.CodeName); cat != nil {
			if c.Name != "" {
				cat.DisplayName = c.Name
			}
			if c.Description != "" {
				cat.Description = c.Description
			}
			continue
		}
		name := c.Name
		if name == "" {
			name = c.CodeName
		}
		list.Categories = append(list.Categories, &Category{
			CodeName:    c.CodeName,
			DisplayName: name,
			Description: c.Description,
		})
	}
	return list
}

func (s *Service) refreshList(ctx context.Context, repo *Repository, list *AddonList) {
	scope := fmt.Sprintf("repository %s, list %s", repo.CodeName, list.DisplayName)
	if !strings.Contains(list.RemoteIndexURL, PathToken) {
		s.logf(sink.Warning, "%s: index url %q has no %s placeholder", scope, list.RemoteIndexURL, PathToken)
	}

	url := list.ResolveURL(listIndexPath)
	doc, err := s.fetch(ctx, kindList, url)
	if err != nil {
		s.logf(sink.Error, "%s: fetching %s: %v", scope, url, err)
		return
	}
	pkgs, err := index.ParseListIndex(doc, s.warnFunc(scope))
	if err != nil {
		s.logf(sink.Error, "%s: %v", scope, err)
		return
	}

	for _, p := range pkgs.Packages {
		cat := list.Category(UncategorisedCodeName)
		if p.Category != "" {
			if c := list.Category(p.Category); c != nil {
				cat = c
			} else {
				s.logf(sink.Warning, "%s: package %s names unknown category %q, filing it under %s",
					scope, p.URL, p.Category, UncategorisedName)
			}
		}

		infoURL := list.ResolveURL(p.URL + infoSuffix)
		doc, err := s.fetch(ctx, kindPackage, infoURL)
		if err != nil {
			s.logf(sink.Error, "%s: fetching package %s: %v", scope, infoURL, err)
			continue
		}
		info, err := index.ParsePackageInfo(doc, s.warnFunc(scope+", package "+p.URL))
		if err != nil {
			s.logf(sink.Error, "%s: package %s: %v", scope, p.URL, err)
			continue
		}
		if info.Name == "" || info.CodeName == "" {
			s.logf(sink.Warning, "%s: package %s lacks a name or code name, skipped", scope, p.URL)
			continue
		}
		if err := transfer.ValidName(info.CodeName); err != nil {
			s.logf(sink.Warning, "%s: package %s skipped: %v", scope, p.URL, err)
			continue
		}

		cat.Addons = append(cat.Addons, &Addon{
			DisplayName:         info.Name,
			CodeName:            info.CodeName,
			Description:         info.Description,
			RelativeURL:         p.URL,
			IsRestrictedContent: p.Restricted,
			InstalledVersion:    NotInstalled,
		})
	}
}

// resolvePending attaches restored install records of repo to the add-ons
// the refresh produced and binds a session for each.
func (s *Service) resolvePending(repo *Repository) {
	for _, ia := range s.installed {
		if !ia.Pending() || ia.Ref.Repository != repo.CodeName {
			continue
		}
		r, err := s.resolve(ia.Ref)
		if err != nil {
			continue
		}
		r.addon.IsInstalled = true
		r.addon.InstalledVersion = ia.InstalledVersion
		r.addon.InstalledMarker = ia.Marker
		ia.addon = r.addon
		if r.addon.session != nil || s.agent == nil {
			continue
		}
		if _, err := s.bind(r); err != nil {
			s.logf(sink.Warning, "restoring session for %s: %v", ia.Ref, err)
		}
	}
}

func countAddons(repo *Repository) int {
	n := 0
	for _, l := range repo.Lists {
		for _, c := range l.Categories {
			n += len(c.Addons)
		}
	}
	return n
}
