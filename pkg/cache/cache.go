// Package cache inspects and cleans the directory downloaded add-on
// archives are kept in.
package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/addonctl/pkg/errors"
	"github.com/glorpus-work/addonctl/pkg/fsutil"
)

// ArchivesDir is the cache subdirectory holding downloaded release archives.
const ArchivesDir = "archives"

// ErrCacheDirectory is returned for an empty cache directory.
var ErrCacheDirectory = fmt.Errorf("invalid cache directory")

// Info describes the archive cache.
type Info struct {
	Directory string
	Size      int64
	Files     int
}

// Manager operates on one cache directory.
type Manager struct {
	directory string
}

// NewManager creates a cache manager rooted at directory.
func NewManager(directory string) (*Manager, error) {
	if directory == "" {
		return nil, ErrCacheDirectory
	}
	return &Manager{directory: directory}, nil
}

// ArchivesPath is where the download manager keeps archives.
func (m *Manager) ArchivesPath() string {
	return filepath.Join(m.directory, ArchivesDir)
}

// Directory returns the cache root.
func (m *Manager) Directory() string { return m.directory }

// Info reports size and file count of the archive cache.
func (m *Manager) Info() (*Info, error) {
	size, files, err := dirUsage(m.ArchivesPath())
	if err != nil {
		return nil, err
	}
	return &Info{Directory: m.ArchivesPath(), Size: size, Files: files}, nil
}

// Clean empties the archive cache and returns the bytes freed.
func (m *Manager) Clean() (int64, error) {
	dir := m.ArchivesPath()
	size, _, err := dirUsage(dir)
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}
	if err := os.MkdirAll(dir, fsutil.DirModeSecure); err != nil {
		return size, errors.Wrapf(err, "failed to recreate directory %s", dir)
	}
	return size, nil
}

func dirUsage(dir string) (size int64, count int, err error) {
	err = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		count++
		return nil
	})
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, nil
}

// FormatBytes renders a byte count for humans.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
}
