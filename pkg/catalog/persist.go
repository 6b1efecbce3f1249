package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/glorpus-work/addonctl/pkg/docstore"
	apperrors "github.com/glorpus-work/addonctl/pkg/errors"
	"github.com/glorpus-work/addonctl/pkg/sink"
)

// State document element and attribute names.
const (
	stateRoot   = "catalog"
	stateRepos  = "repos"
	stateRepo   = "repo"
	stateAddons = "addons"
	stateAddon  = "addon"

	stateCodeName = "codename"
	stateURL      = "url"
	stateName     = "name"
	stateTTL      = "ttl"
	stateEnabled  = "enabled"
	stateRepoRef  = "repo"
	stateList     = "list"
	stateCategory = "category"
	stateVersion  = "version"
	stateMarker   = "marker"
)

// Save renders the repositories and install records as a state document.
func (s *Service) Save() *docstore.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, root := docstore.NewDocument(stateRoot)
	repos := docstore.AddElement(root, stateRepos)
	for _, r := range s.repos {
		docstore.AddElement(repos, stateRepo,
			stateCodeName, r.CodeName,
			stateURL, r.BaseURL,
			stateName, r.DisplayName,
			stateTTL, strconv.FormatInt(int64(r.TTL/time.Second), 10),
			stateEnabled, strconv.FormatBool(r.Enabled),
		)
	}
	addons := docstore.AddElement(root, stateAddons)
	for _, ia := range s.installed {
		attrs := []string{
			stateCodeName, ia.Ref.Addon,
			stateRepoRef, ia.Ref.Repository,
			stateList, ia.Ref.List,
			stateCategory, ia.Ref.Category,
			stateVersion, strconv.Itoa(ia.InstalledVersion),
		}
		if ia.Marker != "" {
			attrs = append(attrs, stateMarker, ia.Marker)
		}
		docstore.AddElement(addons, stateAddon, attrs...)
	}
	return doc
}

// Load merges a state document produced by Save. A repository that is
// already known takes the stored TTL and also the stored enabled flag, so
// a disabled repository stays disabled across restarts; its url and name
// are left alone. Install records
// of unknown repositories are discarded with a Warning; the rest stay
// pending until a refresh produces the add-on they name.
func (s *Service) Load(doc *docstore.Node) error {
	root := docstore.Root(doc)
	if root == nil || docstore.Name(root) != stateRoot {
		return fmt.Errorf("%w: want <%s> root", ErrInvalidState, stateRoot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, section := range docstore.Elements(root) {
		switch docstore.Name(section) {
		case stateRepos:
			for _, el := range docstore.Elements(section) {
				s.loadRepo(el)
			}
		case stateAddons:
			for _, el := range docstore.Elements(section) {
				s.loadAddon(el)
			}
		default:
			s.logf(sink.Warning, "state: unknown element <%s> ignored", docstore.Name(section))
		}
	}
	return nil
}

func (s *Service) loadRepo(el *docstore.Node) {
	code, _ := docstore.Attr(el, stateCodeName)
	if docstore.Name(el) != stateRepo || code == "" {
		s.logf(sink.Warning, "state: malformed repository entry discarded")
		return
	}

	ttl, hasTTL := time.Duration(0), false
	if raw, ok := docstore.Attr(el, stateTTL); ok {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || secs < 0 {
			s.logf(sink.Warning, "state: repository %s has invalid ttl %q", code, raw)
		} else {
			ttl, hasTTL = time.Duration(secs)*time.Second, true
		}
	}
	enabled := true
	if raw, ok := docstore.Attr(el, stateEnabled); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			enabled = v
		}
	}

	if r := s.repository(code); r != nil {
		if hasTTL {
			r.TTL = ttl
		}
		r.Enabled = enabled
		return
	}

	url, _ := docstore.Attr(el, stateURL)
	name, _ := docstore.Attr(el, stateName)
	if err := s.addRepository(RepositorySpec{CodeName: code, DisplayName: name, BaseURL: url, TTL: ttl}); err != nil {
		s.logf(sink.Warning, "state: repository %s discarded: %v", code, err)
		return
	}
	s.repository(code).Enabled = enabled
}

func (s *Service) loadAddon(el *docstore.Node) {
	var ref AddonRef
	ref.Addon, _ = docstore.Attr(el, stateCodeName)
	ref.Repository, _ = docstore.Attr(el, stateRepoRef)
	ref.List, _ = docstore.Attr(el, stateList)
	ref.Category, _ = docstore.Attr(el, stateCategory)
	if docstore.Name(el) != stateAddon || ref.Addon == "" || ref.Repository == "" || ref.List == "" {
		s.logf(sink.Warning, "state: malformed addon entry discarded")
		return
	}
	if s.repository(ref.Repository) == nil {
		s.logf(sink.Warning, "state: addon %s belongs to unknown repository %q, discarded", ref.Addon, ref.Repository)
		return
	}

	version := 0
	if raw, ok := docstore.Attr(el, stateVersion); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.logf(sink.Warning, "state: addon %s has invalid version %q", ref, raw)
		} else {
			version = v
		}
	}
	marker, _ := docstore.Attr(el, stateMarker)
	for _, ia := range s.installed {
		if ia.Ref == ref {
			return
		}
	}
	s.installed = append(s.installed, &InstalledAddon{Ref: ref, InstalledVersion: version, Marker: marker})
}

// SaveFile writes the state document to path atomically.
func (s *Service) SaveFile(path string) error {
	if err := docstore.SaveFile(path, s.Save()); err != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrStateWrite, path, err)
	}
	return nil
}

// LoadFile merges the state document at path. A missing file is not an error.
func (s *Service) LoadFile(path string) error {
	doc, err := docstore.LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrStateRead, path, err)
	}
	return s.Load(doc)
}
