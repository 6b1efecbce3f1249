package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/addonctl/pkg/async"
	"github.com/glorpus-work/addonctl/pkg/sink"
	"github.com/glorpus-work/addonctl/pkg/transfer/mocks"
)

// installAll binds one session per add-on through Install.
func installAll(t *testing.T, h *harness, sessions map[AddonRef]*mocks.MockSession) {
	t.Helper()
	for r := range sessions {
		_, err := h.svc.Install(context.Background(), r, false)
		require.NoError(t, err)
	}
}

func TestGetUpgradeList_IsolatesProbeFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := mocks.NewMockAgent(ctrl)

	failing := newSession(ctrl, "clock")
	panicking := newSession(ctrl, "notes")
	stale := newSession(ctrl, "midnight")
	current := newSession(ctrl, "plain")
	for _, s := range []*mocks.MockSession{failing, panicking, stale, current} {
		s.EXPECT().UpdateSync(gomock.Any(), true).Return(nil)
	}
	agent.EXPECT().Create("clock", gomock.Any(), gomock.Any(), gomock.Any()).Return(failing, nil)
	agent.EXPECT().Create("notes", gomock.Any(), gomock.Any(), gomock.Any()).Return(panicking, nil)
	agent.EXPECT().Create("midnight", gomock.Any(), gomock.Any(), gomock.Any()).Return(stale, nil)
	agent.EXPECT().Create("plain", gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)

	failing.EXPECT().LoadRemoteVersion(gomock.Any()).Return(errors.New("unreachable"))
	panicking.EXPECT().LoadRemoteVersion(gomock.Any()).DoAndReturn(func(context.Context) error {
		panic("corrupt release document")
	})
	stale.EXPECT().LoadRemoteVersion(gomock.Any()).Return(nil)
	stale.EXPECT().IsCurrent().Return(false)
	current.EXPECT().LoadRemoteVersion(gomock.Any()).Return(nil)
	current.EXPECT().IsCurrent().Return(true)

	h := newHarness(t, func(o *Options) { o.Agent = agent }).refreshed(t)
	installAll(t, h, map[AddonRef]*mocks.MockSession{
		ref("Extensions", "clock"): failing,
		ref("Apps", "notes"):       panicking,
		ref("Themes", "midnight"):  stale,
		ref("Themes", "plain"):     current,
	})

	items := h.svc.GetUpgradeList(context.Background(), false)
	require.Len(t, items, 1)
	assert.Equal(t, "midnight", items[0].CodeName)
	assert.Equal(t, int64(2048), items[0].EstimatedSize)
	require.NotNil(t, items[0].Addon)
	assert.Equal(t, AddonRef{Repository: "one", List: "Themes", Category: "dark", Addon: "midnight"}, *items[0].Addon)
	assert.Equal(t, 2, h.log.Count(sink.Error))
}

func TestGetUpgradeList_RefreshesFirst(t *testing.T) {
	h := newHarness(t, nil)
	items := h.svc.GetUpgradeList(context.Background(), false)
	assert.Empty(t, items)
	assert.NotZero(t, h.fetcher.count())
}

func TestGetUpgradeList_UnresolvableAddon(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := mocks.NewMockAgent(ctrl)
	sess := newSession(ctrl, "notes")
	sess.EXPECT().UpdateSync(gomock.Any(), true).Return(nil)
	sess.EXPECT().LoadRemoteVersion(gomock.Any()).Return(nil)
	sess.EXPECT().IsCurrent().Return(false)
	agent.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(sess, nil)

	h := newHarness(t, func(o *Options) { o.Agent = agent }).refreshed(t)
	_, err := h.svc.Install(context.Background(), ref("Apps", "notes"), false)
	require.NoError(t, err)
	require.NoError(t, h.svc.RemoveRepository("one"))

	items := h.svc.GetUpgradeList(context.Background(), false)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].Addon)
}

func TestUpdate_ReinstallsStaleAddons(t *testing.T) {
	ctrl := gomock.NewController(t)
	agent := mocks.NewMockAgent(ctrl)
	stale := newSession(ctrl, "midnight")
	current := newSession(ctrl, "clock")
	stale.EXPECT().UpdateSync(gomock.Any(), true).Return(nil).Times(2)
	stale.EXPECT().UpdateSync(gomock.Any(), true).Return(errors.New("mirror down"))
	current.EXPECT().UpdateSync(gomock.Any(), true).Return(nil).Times(1)
	stale.EXPECT().LoadRemoteVersion(gomock.Any()).Return(nil).Times(2)
	stale.EXPECT().IsCurrent().Return(false).Times(2)
	current.EXPECT().LoadRemoteVersion(gomock.Any()).Return(nil).Times(2)
	current.EXPECT().IsCurrent().Return(true).Times(2)
	agent.EXPECT().Create("midnight", gomock.Any(), gomock.Any(), gomock.Any()).Return(stale, nil)
	agent.EXPECT().Create("clock", gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)

	h := newHarness(t, func(o *Options) { o.Agent = agent }).refreshed(t)
	installAll(t, h, map[AddonRef]*mocks.MockSession{
		ref("Themes", "midnight"):  stale,
		ref("Extensions", "clock"): current,
	})

	results, err := h.svc.Update(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "midnight", results[0].Ref.Addon)
	assert.Len(t, h.svc.Installed(), 2)

	// The session still reports stale; this time the transfer fails.
	results, err = async.Wait(context.Background(), h.svc.UpdateAsync(context.Background(), false))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransfer)
	assert.Empty(t, results)
}
