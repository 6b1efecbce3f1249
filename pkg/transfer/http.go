package transfer

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-version"

	"github.com/glorpus-work/addonctl/pkg/archive"
	"github.com/glorpus-work/addonctl/pkg/docstore"
	"github.com/glorpus-work/addonctl/pkg/download"
	"github.com/glorpus-work/addonctl/pkg/errors"
	"github.com/glorpus-work/addonctl/pkg/fsutil"
	"github.com/glorpus-work/addonctl/pkg/sink"
)

// VersionMarker is the file, inside an installed add-on's directory, that
// records the installed release version.
const VersionMarker = ".addonctl-version"

// ReleaseDocument is the release descriptor name under <remote>/<channel>/.
// It looks like:
//
//	<release version="42" archive="package.tar.gz" size="10240" sha256="..."/>
const ReleaseDocument = "release.xml"

const defaultArchiveName = "package.tar.gz"

// HTTPAgent serves add-ons published as archives over HTTP.
type HTTPAgent struct {
	fetcher   docstore.Fetcher
	downloads download.Manager
	archives  *archive.Manager
	cacheDir  string
}

// NewHTTPAgent creates an agent that reads release descriptors through
// fetcher and caches downloaded archives under cacheDir.
func NewHTTPAgent(fetcher docstore.Fetcher, downloads download.Manager, cacheDir string) *HTTPAgent {
	return &HTTPAgent{
		fetcher:   fetcher,
		downloads: downloads,
		archives:  archive.NewManager(),
		cacheDir:  cacheDir,
	}
}

// Create returns a session for one add-on. Nothing is fetched until the
// session is used.
func (a *HTTPAgent) Create(codeName, remoteURL, destDir, channel string) (Session, error) {
	if err := validateArgs(codeName, remoteURL, destDir); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimSuffix(remoteURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &httpSession{
		events:   events{name: codeName},
		agent:    a,
		codeName: codeName,
		base:     base,
		destDir:  destDir,
		channel:  channel,
	}, nil
}

type release struct {
	Version string
	Archive string
	Size    int64
	SHA256  string
}

type httpSession struct {
	events
	agent    *HTTPAgent
	codeName string
	base     *url.URL
	destDir  string
	channel  string

	mu     sync.Mutex
	remote *release
}

func (s *httpSession) Name() string { return s.codeName }

func (s *httpSession) installDir() string { return filepath.Join(s.destDir, s.codeName) }

func (s *httpSession) releaseURL() *url.URL {
	return s.base.ResolveReference(&url.URL{Path: path.Join(s.channel, ReleaseDocument)})
}

func (s *httpSession) LoadRemoteVersion(ctx context.Context) error {
	relURL := s.releaseURL()
	doc, err := s.agent.fetcher.Fetch(ctx, relURL.String())
	if err != nil {
		return errors.Wrapf(err, "load release of %s", s.codeName)
	}
	rel, err := parseRelease(doc)
	if err != nil {
		return errors.Wrapf(err, "%s", relURL)
	}

	s.mu.Lock()
	s.remote = rel
	s.mu.Unlock()
	s.emit(sink.Info, "remote version of %s is %s", s.codeName, rel.Version)
	return nil
}

func parseRelease(doc *docstore.Node) (*release, error) {
	root := docstore.Root(doc)
	if root == nil || docstore.Name(root) != "release" {
		return nil, fmt.Errorf("%w: missing <release>", ErrInvalidRelease)
	}
	rel := &release{Archive: defaultArchiveName}
	v, ok := docstore.Attr(root, "version")
	if !ok || strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidRelease)
	}
	rel.Version = strings.TrimSpace(v)
	if a, ok := docstore.Attr(root, "archive"); ok && a != "" {
		rel.Archive = a
	}
	if raw, ok := docstore.Attr(root, "size"); ok && raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w: bad size %q", ErrInvalidRelease, raw)
		}
		rel.Size = size
	}
	rel.SHA256, _ = docstore.Attr(root, "sha256")
	return rel, nil
}

func (s *httpSession) loaded() *release {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remote
}

func (s *httpSession) InstalledVersion() string {
	data, err := os.ReadFile(filepath.Join(s.installDir(), VersionMarker))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *httpSession) IsCurrent() bool {
	rel := s.loaded()
	local := s.InstalledVersion()
	if rel == nil || local == "" {
		return false
	}
	return atLeast(local, rel.Version)
}

// atLeast compares semantic versions when both parse and falls back to
// string equality otherwise.
func atLeast(local, remote string) bool {
	lv, lerr := version.NewVersion(local)
	rv, rerr := version.NewVersion(remote)
	if lerr != nil || rerr != nil {
		return local == remote
	}
	return !lv.LessThan(rv)
}

func (s *httpSession) EstimatedSize() int64 {
	if rel := s.loaded(); rel != nil {
		return rel.Size
	}
	return 0
}

func (s *httpSession) UpdateSync(ctx context.Context, force bool) error {
	if s.loaded() == nil {
		if err := s.LoadRemoteVersion(ctx); err != nil {
			s.emit(sink.Error, "%v", err)
			return err
		}
	}
	rel := s.loaded()
	if !force && s.IsCurrent() {
		s.emit(sink.Info, "%s is already at %s", s.codeName, rel.Version)
		return nil
	}

	if err := s.transfer(ctx, rel); err != nil {
		s.emit(sink.Error, "transfer of %s failed: %v", s.codeName, err)
		return err
	}
	s.emit(sink.Info, "%s updated to %s", s.codeName, rel.Version)
	return nil
}

func (s *httpSession) transfer(ctx context.Context, rel *release) error {
	ref, err := url.Parse(rel.Archive)
	if err != nil {
		return fmt.Errorf("%w: bad archive reference %q", ErrInvalidRelease, rel.Archive)
	}
	archiveURL := s.releaseURL().ResolveReference(ref)
	item := download.Item{
		ID:       s.codeName,
		URL:      archiveURL,
		Checksum: rel.SHA256,
		Filename: fmt.Sprintf("%s-%s-%s", s.codeName, rel.Version, path.Base(rel.Archive)),
	}
	archivePath, err := s.agent.downloads.Fetch(ctx, item, download.Options{Dir: s.agent.cacheDir})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.destDir, fsutil.DirModeDefault); err != nil {
		return errors.Wrap(err, "create destination")
	}
	staging, err := os.MkdirTemp(s.destDir, ".staging-"+s.codeName+"-")
	if err != nil {
		return errors.Wrap(err, "create staging directory")
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := s.agent.archives.ExtractAll(ctx, archivePath, staging); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, VersionMarker), []byte(rel.Version+"\n"), fsutil.FileModeDefault); err != nil {
		return errors.Wrap(err, "write version marker")
	}

	target := s.installDir()
	if err := os.RemoveAll(target); err != nil {
		return errors.Wrapf(err, "remove previous copy of %s", s.codeName)
	}
	return fsutil.Move(staging, target)
}
