package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddonRef(t *testing.T) {
	tests := []struct {
		in      string
		want    AddonRef
		wantErr bool
	}{
		{in: "one/Themes/midnight", want: AddonRef{Repository: "one", List: "Themes", Addon: "midnight"}},
		{in: "one/Themes/dark/midnight", want: AddonRef{Repository: "one", List: "Themes", Category: "dark", Addon: "midnight"}},
		{in: "one/Themes", wantErr: true},
		{in: "one//midnight", wantErr: true},
		{in: "a/b/c/d/e", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAddonRef(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestDestinationsFor(t *testing.T) {
	root, err := testRoots.For(ListExpPacks)
	require.NoError(t, err)
	assert.Equal(t, "/data/exppacks", root)

	_, err = testRoots.For("themes")
	assert.ErrorIs(t, err, ErrUnknownListKind)

	_, err = Destinations{Apps: "/apps"}.For(ListLanguages)
	assert.ErrorIs(t, err, ErrNoDestination)
}

func TestRepositoryDue(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &Repository{TTL: time.Minute}
	assert.True(t, r.Due(now))

	r.LastRefreshedAt = now
	assert.False(t, r.Due(now.Add(59*time.Second)))
	assert.True(t, r.Due(now.Add(time.Minute)))
}

func TestNewAddonListSeedsUncategorised(t *testing.T) {
	l := newAddonList("Themes", "https://x.test/{path}", "")
	require.Len(t, l.Categories, 1)
	assert.Equal(t, UncategorisedName, l.Categories[0].DisplayName)
	assert.Equal(t, "https://x.test/index", l.ResolveURL(listIndexPath))
}

func TestCategoryAddonIgnoresCase(t *testing.T) {
	c := &Category{Addons: []*Addon{{CodeName: "Midnight"}, {CodeName: "midnight"}}}
	assert.Same(t, c.Addons[0], c.Addon("MIDNIGHT"))
	assert.Nil(t, c.Addon("noon"))
}

func TestServiceRepositoryManagement(t *testing.T) {
	h := newHarness(t, nil)

	err := h.svc.AddRepository(RepositorySpec{CodeName: "one", BaseURL: "https://dup.test"})
	assert.ErrorIs(t, err, ErrDuplicateRepository)
	assert.Error(t, h.svc.AddRepository(RepositorySpec{CodeName: "a/b", BaseURL: "https://x.test"}))
	assert.Error(t, h.svc.AddRepository(RepositorySpec{CodeName: "nourl"}))

	assert.ErrorIs(t, h.svc.SetEnabled("ghost", true), ErrRepositoryNotFound)
	assert.ErrorIs(t, h.svc.RemoveRepository("ghost"), ErrRepositoryNotFound)
	require.NoError(t, h.svc.RemoveRepository("one"))
	assert.Empty(t, h.svc.Repositories())
}
