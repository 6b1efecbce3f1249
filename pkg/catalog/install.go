package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-version"

	"github.com/glorpus-work/addonctl/pkg/async"
	"github.com/glorpus-work/addonctl/pkg/metrics"
	"github.com/glorpus-work/addonctl/pkg/sink"
	"github.com/glorpus-work/addonctl/pkg/transfer"
)

// InstallResult describes the outcome of Install.
type InstallResult struct {
	// Ref is the fully qualified reference of the add-on.
	Ref       AddonRef
	Installed bool
	Version   int
	Marker    string
	// Skipped is ErrAlreadyInstalled when the request was refused without
	// side effects.
	Skipped error
}

// Install transfers the add-on ref points at into its destination root.
//
// An add-on that already has a session is left alone unless reinstall is
// set; the refusal is logged at Error and reported through
// InstallResult.Skipped with a nil error.
func (s *Service) Install(ctx context.Context, ref AddonRef, reinstall bool) (InstallResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.install(ctx, ref, reinstall)
}

// InstallAsync runs Install on its own goroutine.
func (s *Service) InstallAsync(ctx context.Context, ref AddonRef, reinstall bool) <-chan async.Result[InstallResult] {
	return async.Go(ctx, func(ctx context.Context) (InstallResult, error) {
		return s.Install(ctx, ref, reinstall)
	})
}

func (s *Service) install(ctx context.Context, ref AddonRef, reinstall bool) (InstallResult, error) {
	r, err := s.resolve(ref)
	if err != nil {
		metrics.Installs.WithLabelValues(metrics.OutcomeError).Inc()
		return InstallResult{Ref: ref}, err
	}
	full := r.ref()
	result := InstallResult{Ref: full}

	if r.addon.session != nil && !reinstall {
		s.logf(sink.Error, "install %s: %v", full, ErrAlreadyInstalled)
		metrics.Installs.WithLabelValues(metrics.OutcomeSkipped).Inc()
		result.Skipped = ErrAlreadyInstalled
		return result, nil
	}

	session := r.addon.session
	created := false
	if session == nil {
		session, err = s.bind(r)
		if err != nil {
			metrics.Installs.WithLabelValues(metrics.OutcomeError).Inc()
			return result, err
		}
		created = true
	}

	if err := session.UpdateSync(ctx, true); err != nil {
		if created {
			s.unbind(r.addon)
		}
		s.logf(sink.Error, "install %s: %v", full, err)
		metrics.Installs.WithLabelValues(metrics.OutcomeError).Inc()
		return result, fmt.Errorf("%w: %s: %w", ErrTransfer, full, err)
	}

	marker := session.InstalledVersion()
	release := releaseNumber(marker)
	s.recordInstall(r, release, marker)
	metrics.Installs.WithLabelValues(metrics.OutcomeOK).Inc()
	s.logf(sink.Info, "installed %s", full)

	result.Installed = true
	result.Version = release
	result.Marker = marker
	s.runPostInstall(ctx, r, session)
	return result, nil
}

// bind creates a session for the resolved add-on and registers it.
func (s *Service) bind(r resolved) (transfer.Session, error) {
	if s.agent == nil {
		return nil, ErrNoAgent
	}
	root, err := s.roots.For(r.list.DisplayName)
	if err != nil {
		return nil, err
	}
	session, err := s.agent.Create(r.addon.CodeName, r.list.ResolveURL(r.addon.RelativeURL), root, s.channel)
	if err != nil {
		return nil, fmt.Errorf("%w: creating session for %s: %w", ErrTransfer, r.ref(), err)
	}
	session.OnLogEvent(func(ev transfer.LogEvent) {
		sink.EmitAttrs(s.sink, fmt.Sprintf("%s: %s", ev.Session, ev.Message), ev.Level,
			sink.Attr{Key: "event_id", Value: ev.ID.String()},
			sink.Attr{Key: "session", Value: ev.Session})
	})
	r.addon.session = session
	s.sessions = append(s.sessions, boundSession{name: session.Name(), session: session, ref: r.ref()})
	return session, nil
}

func (s *Service) unbind(a *Addon) {
	for i, b := range s.sessions {
		if b.session == a.session {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	a.session = nil
}

// releaseNumber is the major component of a release marker such as
// "1.4.2", or 0 when the marker does not parse as a version.
func releaseNumber(marker string) int {
	v, err := version.NewVersion(marker)
	if err != nil {
		return 0
	}
	return v.Segments()[0]
}

func (s *Service) recordInstall(r resolved, release int, marker string) {
	r.addon.IsInstalled = true
	r.addon.InstalledVersion = release
	r.addon.InstalledMarker = marker
	for _, ia := range s.installed {
		if ia.addon == r.addon {
			ia.InstalledVersion, ia.Marker = release, marker
			return
		}
	}
	s.installed = append(s.installed, &InstalledAddon{
		Ref:              r.ref(),
		InstalledVersion: release,
		Marker:           marker,
		addon:            r.addon,
	})
}

func (s *Service) runPostInstall(ctx context.Context, r resolved, session transfer.Session) {
	if s.postInstall == nil {
		return
	}
	root, _ := s.roots.For(r.list.DisplayName)
	ev := InstallEvent{
		Ref:         r.ref(),
		DisplayName: r.addon.DisplayName,
		InstallPath: filepath.Join(root, r.addon.CodeName),
		Version:     session.InstalledVersion(),
	}
	defer func() {
		if p := recover(); p != nil {
			s.logf(sink.Error, "post-install hook for %s panicked: %v", ev.Ref, p)
		}
	}()
	if err := s.postInstall(ctx, ev); err != nil {
		s.logf(sink.Error, "post-install hook for %s: %v", ev.Ref, err)
	}
}
