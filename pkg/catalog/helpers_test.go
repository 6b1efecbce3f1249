package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/addonctl/pkg/docstore"
	"github.com/glorpus-work/addonctl/pkg/sink"
	"github.com/glorpus-work/addonctl/pkg/transfer/mocks"
)

const repoURL = "https://one.test/repository.xml"

// fakeFetcher serves documents from memory and records every request.
type fakeFetcher struct {
	mu   sync.Mutex
	docs map[string]string
	hits []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*docstore.Node, error) {
	f.mu.Lock()
	f.hits = append(f.hits, url)
	body, ok := f.docs[url]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("GET %s: 404", url)
	}
	return docstore.ParseString(body)
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits)
}

func oneRepoDocs() map[string]string {
	return map[string]string{
		repoURL: `<?xml version="1.0"?>
<repository>
  <name>Repository One</name>
  <codename>one</codename>
  <description>Test repository</description>
  <ttl>600</ttl>
  <!-- lists -->
  <list name="Themes" url="https://one.test/themes/{path}" description="Looks">
    <category codename="dark" name="Dark" description="Dark themes"/>
  </list>
  <list name="Extensions" url="https://one.test/ext/{path}"/>
  <list name="Apps" url="https://one.test/apps/{path}"/>
  <list name="Widgets" url="https://one.test/widgets/{path}"/>
</repository>`,
		"https://one.test/themes/index": `<packages>
  <package url="midnight" category="dark"/>
  <package url="plain"/>
</packages>`,
		"https://one.test/themes/midnight/info": `<package><name>Midnight</name><codename>midnight</codename><description>Very dark</description></package>`,
		"https://one.test/themes/plain/info":    `<package><name>Plain</name><codename>plain</codename></package>`,
		"https://one.test/ext/index":            `<packages><package url="clock" restricted="true"/></packages>`,
		"https://one.test/ext/clock/info":       `<package><name>Clock</name><codename>clock</codename></package>`,
		"https://one.test/apps/index":           `<packages><package url="notes"/></packages>`,
		"https://one.test/apps/notes/info":      `<package><name>Notes</name><codename>notes</codename></package>`,
		"https://one.test/widgets/index":        `<packages><package url="spinner"/></packages>`,
		"https://one.test/widgets/spinner/info": `<package><name>Spinner</name><codename>spinner</codename></package>`,
	}
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

var testRoots = Destinations{
	Themes:     "/data/themes",
	Apps:       "/data/apps",
	Extensions: "/data/extensions",
	ExpPacks:   "/data/exppacks",
	Languages:  "/data/languages",
}

type harness struct {
	svc     *Service
	fetcher *fakeFetcher
	log     *sink.Recorder
	clock   *testClock
}

func newHarness(t *testing.T, mutate func(*Options)) *harness {
	t.Helper()
	h := &harness{
		fetcher: &fakeFetcher{docs: oneRepoDocs()},
		log:     &sink.Recorder{},
		clock:   &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	opts := Options{
		Fetcher: h.fetcher,
		Sink:    h.log,
		Roots:   testRoots,
		Channel: "stable",
		Clock:   h.clock.now,
		DefaultRepository: &RepositorySpec{
			CodeName: "one",
			BaseURL:  repoURL,
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	h.svc = New(opts)
	return h
}

func (h *harness) refreshed(t *testing.T) *harness {
	t.Helper()
	report := h.svc.RefreshAll(context.Background(), true)
	require.Contains(t, report.Refreshed, "one")
	return h
}

func newSession(ctrl *gomock.Controller, name string) *mocks.MockSession {
	s := mocks.NewMockSession(ctrl)
	s.EXPECT().Name().Return(name).AnyTimes()
	s.EXPECT().OnLogEvent(gomock.Any()).AnyTimes()
	s.EXPECT().InstalledVersion().Return("1").AnyTimes()
	s.EXPECT().EstimatedSize().Return(int64(2048)).AnyTimes()
	return s
}

func ref(list, addon string) AddonRef {
	return AddonRef{Repository: "one", List: list, Addon: addon}
}
