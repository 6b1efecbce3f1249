package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/addonctl/pkg/cache"
)

func TestNewManager(t *testing.T) {
	_, err := cache.NewManager("")
	assert.ErrorIs(t, err, cache.ErrCacheDirectory)

	dir := t.TempDir()
	mgr, err := cache.NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, mgr.Directory())
	assert.Equal(t, filepath.Join(dir, cache.ArchivesDir), mgr.ArchivesPath())
}

func TestInfoAndClean(t *testing.T) {
	mgr, err := cache.NewManager(t.TempDir())
	require.NoError(t, err)

	info, err := mgr.Info()
	require.NoError(t, err)
	assert.Zero(t, info.Files)

	require.NoError(t, os.MkdirAll(mgr.ArchivesPath(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(mgr.ArchivesPath(), "a.tar.gz"), make([]byte, 100), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(mgr.ArchivesPath(), "b.tar.gz"), make([]byte, 50), 0o644))

	info, err = mgr.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Files)
	assert.Equal(t, int64(150), info.Size)

	freed, err := mgr.Clean()
	require.NoError(t, err)
	assert.Equal(t, int64(150), freed)
	assert.DirExists(t, mgr.ArchivesPath())

	info, err = mgr.Info()
	require.NoError(t, err)
	assert.Zero(t, info.Files)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cache.FormatBytes(tt.in))
	}
}
