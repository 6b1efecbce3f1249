package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/addonctl/pkg/async"
	"github.com/glorpus-work/addonctl/pkg/sink"
)

func TestRefreshAll_BuildsCatalog(t *testing.T) {
	var events []Progress
	h := newHarness(t, func(o *Options) {
		o.Hooks.OnProgress = func(p Progress) { events = append(events, p) }
	}).refreshed(t)

	repos := h.svc.Repositories()
	require.Len(t, repos, 1)
	repo := repos[0]
	assert.Equal(t, "Repository One", repo.DisplayName)
	assert.Equal(t, "Test repository", repo.Description)
	assert.Equal(t, 600*time.Second, repo.TTL)
	assert.Equal(t, h.clock.t, repo.LastRefreshedAt)
	require.Len(t, repo.Lists, 4)

	themes := repo.List("Themes")
	require.NotNil(t, themes)
	assert.Equal(t, "Looks", themes.Description)
	require.Len(t, themes.Categories, 2)
	assert.Equal(t, UncategorisedCodeName, themes.Categories[0].CodeName)
	assert.Equal(t, "dark", themes.Categories[1].CodeName)

	dark := themes.Category("dark")
	require.Len(t, dark.Addons, 1)
	assert.Equal(t, "Midnight", dark.Addons[0].DisplayName)
	assert.Equal(t, "midnight", dark.Addons[0].RelativeURL)
	assert.Equal(t, NotInstalled, dark.Addons[0].InstalledVersion)
	assert.False(t, dark.Addons[0].IsInstalled)
	require.Len(t, themes.Category(UncategorisedCodeName).Addons, 1)

	clock := repo.List("Extensions").Category(UncategorisedCodeName).Addon("CLOCK")
	require.NotNil(t, clock)
	assert.True(t, clock.IsRestrictedContent)

	assert.Equal(t, []Progress{
		{Repository: "one", TotalUnits: 100, ReceivedUnits: 0},
		{Repository: "one", TotalUnits: 100, ReceivedUnits: 100},
	}, events)
	assert.Zero(t, h.log.Count(sink.Error))
	assert.Zero(t, h.log.Count(sink.Warning))
}

func TestRefreshAll_MergeIsIdempotentButAppendsAddons(t *testing.T) {
	h := newHarness(t, nil).refreshed(t).refreshed(t)

	repo := h.svc.Repositories()[0]
	require.Len(t, repo.Lists, 4)
	themes := repo.List("Themes")
	require.Len(t, themes.Categories, 2)

	// Refresh does not de-duplicate: every pass appends the packages again.
	dark := themes.Category("dark")
	require.Len(t, dark.Addons, 2)
	assert.Equal(t, dark.Addons[0].CodeName, dark.Addons[1].CodeName)
}

func TestRefreshAll_UpdatesCategoriesInPlace(t *testing.T) {
	h := newHarness(t, nil).refreshed(t)
	h.fetcher.docs[repoURL] = strings.Replace(h.fetcher.docs[repoURL],
		`<category codename="dark" name="Dark" description="Dark themes"/>`,
		`<category codename="dark" name="Night"/><category codename="light" name="Light"/>`, 1)
	h.refreshed(t)

	themes := h.svc.Repositories()[0].List("Themes")
	require.Len(t, themes.Categories, 3)
	assert.Equal(t, "Night", themes.Category("dark").DisplayName)
	assert.Equal(t, "Dark themes", themes.Category("dark").Description)
	assert.Equal(t, "Light", themes.Category("light").DisplayName)
}

func TestRefreshAll_TTLGate(t *testing.T) {
	h := newHarness(t, nil).refreshed(t)
	fetched := h.fetcher.count()
	require.NotZero(t, fetched)

	report := h.svc.RefreshAll(context.Background(), false)
	assert.Equal(t, []string{"one"}, report.Skipped)
	assert.Equal(t, fetched, h.fetcher.count(), "fresh repository must not be fetched")

	report = h.svc.RefreshAll(context.Background(), true)
	assert.Equal(t, []string{"one"}, report.Refreshed)
	assert.Equal(t, 2*fetched, h.fetcher.count())

	h.clock.t = h.clock.t.Add(599 * time.Second)
	h.svc.RefreshAll(context.Background(), false)
	assert.Equal(t, 2*fetched, h.fetcher.count())

	h.clock.t = h.clock.t.Add(time.Second)
	h.svc.RefreshAll(context.Background(), false)
	assert.Equal(t, 3*fetched, h.fetcher.count())
}

func TestRefreshAll_SkipsDisabledRepositories(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.svc.SetEnabled("one", false))

	report := h.svc.RefreshAll(context.Background(), true)
	assert.Equal(t, []string{"one"}, report.Skipped)
	assert.Zero(t, h.fetcher.count())
}

func TestRefreshAll_FirstScalarWins(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.docs[repoURL] = `<repository>
  <name>First</name>
  <name>Second</name>
  <ttl>120</ttl>
</repository>`
	h.refreshed(t)

	repo := h.svc.Repositories()[0]
	assert.Equal(t, "First", repo.DisplayName)
	assert.Equal(t, 120*time.Second, repo.TTL)
	require.Equal(t, 1, h.log.Count(sink.Warning))
	assert.Contains(t, h.log.Entries()[0].Message, "duplicate <name>")
}

func TestRefreshAll_DiscardsMalformedNodes(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.docs[repoURL] = `<repository>
  <list url="https://one.test/themes/{path}"/>
  <list name="Themes" url="https://one.test/themes/{path}">
    <category name="No code"/>
  </list>
  <mirror/>
</repository>`
	h.fetcher.docs["https://one.test/themes/index"] = `<packages/>`
	h.refreshed(t)

	repo := h.svc.Repositories()[0]
	require.Len(t, repo.Lists, 1)
	assert.Len(t, repo.Lists[0].Categories, 1)
	assert.Equal(t, 3, h.log.Count(sink.Warning))
}

func TestRefreshAll_IsolatesRepositoryFailures(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.svc.AddRepository(RepositorySpec{
		CodeName: "broken",
		BaseURL:  "https://broken.test/repository.xml",
	}))

	report := h.svc.RefreshAll(context.Background(), true)
	assert.Equal(t, []string{"one"}, report.Refreshed)
	assert.Equal(t, []string{"broken"}, report.Failed)
	assert.Equal(t, 1, h.log.Count(sink.Error))

	repos := h.svc.Repositories()
	assert.False(t, repos[0].LastRefreshedAt.IsZero())
	assert.True(t, repos[1].LastRefreshedAt.IsZero())
	assert.Empty(t, repos[1].Lists)
}

func TestRefreshAll_WrongRootFailsRepository(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.docs[repoURL] = `<packages/>`

	report := h.svc.RefreshAll(context.Background(), true)
	assert.Equal(t, []string{"one"}, report.Failed)
	assert.Equal(t, 1, h.log.Count(sink.Error))
}

func TestRefreshAll_ContinuesAfterPackageFailure(t *testing.T) {
	h := newHarness(t, nil)
	delete(h.fetcher.docs, "https://one.test/themes/midnight/info")
	delete(h.fetcher.docs, "https://one.test/apps/index")
	h.refreshed(t)

	repo := h.svc.Repositories()[0]
	themes := repo.List("Themes")
	assert.Empty(t, themes.Category("dark").Addons)
	assert.Len(t, themes.Category(UncategorisedCodeName).Addons, 1)
	assert.Empty(t, repo.List("Apps").Category(UncategorisedCodeName).Addons)
	assert.Equal(t, 2, h.log.Count(sink.Error))
	assert.False(t, repo.LastRefreshedAt.IsZero())
}

func TestRefreshAll_UnknownCategoryFallsBack(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.docs["https://one.test/apps/index"] = `<packages><package url="notes" category="office"/></packages>`
	h.refreshed(t)

	apps := h.svc.Repositories()[0].List("Apps")
	assert.Len(t, apps.Category(UncategorisedCodeName).Addons, 1)
	assert.Equal(t, 1, h.log.Count(sink.Warning))
}

func TestRefreshAll_SkipsPackagesWithoutNames(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.docs["https://one.test/apps/notes/info"] = `<package><name>Notes</name></package>`
	h.refreshed(t)

	assert.Empty(t, h.svc.Repositories()[0].List("Apps").Category(UncategorisedCodeName).Addons)
}

func TestRefreshAll_SkipsPackagesWithUnsafeCodeNames(t *testing.T) {
	for _, code := range []string{"../victim", "notes/../../victim", "..", "/etc"} {
		t.Run(code, func(t *testing.T) {
			h := newHarness(t, nil)
			h.fetcher.docs["https://one.test/apps/notes/info"] =
				`<package><name>Notes</name><codename>` + code + `</codename></package>`
			h.refreshed(t)

			repo := h.svc.Repositories()[0]
			assert.Empty(t, repo.List("Apps").Category(UncategorisedCodeName).Addons)
			assert.Len(t, repo.List("Extensions").Category(UncategorisedCodeName).Addons, 1)
			require.Equal(t, 1, h.log.Count(sink.Warning))
			for _, e := range h.log.Entries() {
				if e.Level == sink.Warning {
					assert.True(t, strings.Contains(e.Message, "package notes skipped"), e.Message)
				}
			}
		})
	}
}

func TestRefreshAll_KeepsLocalCodeName(t *testing.T) {
	h := newHarness(t, nil)
	h.fetcher.docs[repoURL] = `<repository><codename>other</codename></repository>`
	h.refreshed(t)

	assert.Equal(t, "one", h.svc.Repositories()[0].CodeName)
	assert.Equal(t, 1, h.log.Count(sink.Warning))
}

func TestRefreshAllAsync(t *testing.T) {
	h := newHarness(t, nil)
	report, err := async.Wait(context.Background(), h.svc.RefreshAllAsync(context.Background(), true))
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, report.Refreshed)
}

func TestRepositories_ReturnsCopies(t *testing.T) {
	h := newHarness(t, nil).refreshed(t)

	snapshot := h.svc.Repositories()
	snapshot[0].DisplayName = "changed"
	snapshot[0].Lists[0].Categories[0].Addons = nil

	fresh := h.svc.Repositories()
	assert.Equal(t, "Repository One", fresh[0].DisplayName)
	assert.NotEmpty(t, fresh[0].Lists[0].Categories[0].Addons)
}
