package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/glorpus-work/addonctl/pkg/async"
	"github.com/glorpus-work/addonctl/pkg/metrics"
	"github.com/glorpus-work/addonctl/pkg/sink"
)

// GetUpgradeList refreshes the catalog and asks every registered session
// whether its local copy is current. Staleness is whatever the session
// reports; catalog versions are not compared.
func (s *Service) GetUpgradeList(ctx context.Context, force bool) []UpgradeListItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upgradeList(ctx, force)
}

func (s *Service) upgradeList(ctx context.Context, force bool) []UpgradeListItem {
	s.refreshAll(ctx, force)

	var items []UpgradeListItem
	for _, b := range s.sessions {
		if s.probe(ctx, b) {
			continue
		}
		item := UpgradeListItem{CodeName: b.name, EstimatedSize: b.session.EstimatedSize()}
		if r, err := s.resolve(b.ref); err == nil {
			ref := r.ref()
			item.Addon = &ref
		}
		items = append(items, item)
	}
	metrics.PendingUpgrades.Set(float64(len(items)))
	return items
}

// probe reports whether b's local copy is current. A failing or panicking
// session is logged and treated as current.
func (s *Service) probe(ctx context.Context, b boundSession) (current bool) {
	defer func() {
		if p := recover(); p != nil {
			s.logf(sink.Error, "checking %s for updates panicked: %v", b.name, p)
			current = true
		}
	}()
	if err := b.session.LoadRemoteVersion(ctx); err != nil {
		s.logf(sink.Error, "checking %s for updates: %v", b.name, err)
		return true
	}
	return b.session.IsCurrent()
}

// Update reinstalls every add-on GetUpgradeList reports. Items without a
// catalog entry are skipped with a Warning. Install failures are joined.
func (s *Service) Update(ctx context.Context, force bool) ([]InstallResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		results []InstallResult
		errs    []error
	)
	for _, item := range s.upgradeList(ctx, force) {
		if item.Addon == nil {
			s.logf(sink.Warning, "upgrade %s: no longer in the catalog, skipped", item.CodeName)
			continue
		}
		res, err := s.install(ctx, *item.Addon, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("upgrade %s: %w", item.Addon, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// UpdateAsync runs Update on its own goroutine.
func (s *Service) UpdateAsync(ctx context.Context, force bool) <-chan async.Result[[]InstallResult] {
	return async.Go(ctx, func(ctx context.Context) ([]InstallResult, error) {
		return s.Update(ctx, force)
	})
}
