package transfer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/addonctl/pkg/sink"
)

func TestValidName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "midnight"},
		{name: "dark-mode_2.1"},
		{name: "..hidden"},
		{name: "", wantErr: true},
		{name: ".", wantErr: true},
		{name: "..", wantErr: true},
		{name: "../victim", wantErr: true},
		{name: "a/../b", wantErr: true},
		{name: "themes/midnight", wantErr: true},
		{name: `..\victim`, wantErr: true},
		{name: "/etc", wantErr: true},
		{name: "midnight/", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateRejectsEscapingCodeName(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "themes")
	victim := filepath.Join(root, "victim")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.MkdirAll(victim, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(victim, "keep.txt"), []byte("keep"), 0o644))

	rs := newReleaseServer(t, "1.0.0", map[string]string{"theme.css": "v1"})
	agents := map[string]Agent{
		"http": newTestHTTPAgent(t),
		"git":  NewGitAgent(),
	}
	for name, agent := range agents {
		t.Run(name, func(t *testing.T) {
			s, err := agent.Create("../victim", rs.URL+"/midnight", dest, "stable")
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, s)
		})
	}
	assert.FileExists(t, filepath.Join(victim, "keep.txt"))
}

func TestLogEventsCarryUniqueIDs(t *testing.T) {
	e := &events{name: "midnight"}
	var got []LogEvent
	e.OnLogEvent(func(ev LogEvent) { got = append(got, ev) })
	e.OnLogEvent(nil)

	e.emit(sink.Info, "step %d", 1)
	e.emit(sink.Warning, "step %d", 2)

	require.Len(t, got, 2)
	assert.Equal(t, "midnight", got[0].Session)
	assert.Equal(t, "step 1", got[0].Message)
	assert.Equal(t, sink.Warning, got[1].Level)
	assert.NotEqual(t, got[0].ID, got[1].ID)
	assert.NotZero(t, got[0].ID)
}
