// Package cache stores generated audio files on local disk, partitioned
// by audio type. Filenames are opaque (uuid + extension); the subdirectory
// names are part of the on-disk contract and must not change, or previously
// stored paths stop resolving.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/franz/voice-vault/internal/util"
)

// AudioType is the category of a generated audio artifact.
// The value doubles as the cache subdirectory name.
type AudioType string

const (
	TTS   AudioType = "tts"
	SFX   AudioType = "sfx"
	Music AudioType = "music"
)

// AllAudioTypes returns the fixed, closed set of categories
func AllAudioTypes() []AudioType {
	return []AudioType{TTS, SFX, Music}
}

// Valid reports whether t is a known category
func (t AudioType) Valid() bool {
	switch t {
	case TTS, SFX, Music:
		return true
	}
	return false
}

// ParseAudioType converts a user-supplied string into an AudioType
func ParseAudioType(s string) (AudioType, error) {
	t := AudioType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (want tts, sfx or music)", util.ErrInvalidAudioType, s)
	}
	return t, nil
}

// Cache is a category-partitioned store of opaque audio blobs under a
// single root directory.
type Cache struct {
	root string
}

// New creates a cache rooted at the given directory, creating it if needed
func New(root string) (*Cache, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: cache root cannot be empty", util.ErrInvalidConfig)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{root: root}, nil
}

// Root returns the cache root directory
func (c *Cache) Root() string {
	return c.root
}

func (c *Cache) dirFor(t AudioType) string {
	return filepath.Join(c.root, string(t))
}

// Save writes audio data into the category directory under a fresh
// unique name and returns the absolute path. The data is written to a
// temp file and renamed into place so a crash never leaves a partial
// file under the final name.
func (c *Cache) Save(t AudioType, data []byte, extension string) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", util.ErrInvalidAudioType, t)
	}

	dir := c.dirFor(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create category directory: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", uuid.NewString(), extension)
	path := filepath.Join(dir, filename)

	err := util.Retry(nil, func() error {
		tmp, err := os.CreateTemp(dir, ".vv-*")
		if err != nil {
			return err
		}
		tmpName := tmp.Name()

		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmpName)
			return err
		}
		if err := os.Rename(tmpName, path); err != nil {
			os.Remove(tmpName)
			return err
		}
		return nil
	}, fmt.Sprintf("save(%s)", filename))
	if err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	util.DebugLog("Cache: saved %d bytes to %s", len(data), path)

	return path, nil
}

// Delete removes a cached file. A file that is already gone is success.
func (c *Cache) Delete(path string) error {
	err := util.Retry(nil, func() error {
		err := os.Remove(path)
		if err != nil && os.IsNotExist(err) {
			return nil
		}
		return err
	}, fmt.Sprintf("delete(%s)", filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("failed to delete audio file: %w", err)
	}
	return nil
}

// List returns the paths of all regular files directly under the
// category directory. A missing directory yields an empty list.
func (c *Cache) List(t AudioType) ([]string, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidAudioType, t)
	}

	dir := c.dirFor(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read category directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Clear deletes every file in the category and returns how many were
// present before the call. Per-file delete failures are logged and
// skipped rather than aborting the sweep.
func (c *Cache) Clear(t AudioType) (int, error) {
	files, err := c.List(t)
	if err != nil {
		return 0, err
	}

	count := len(files)
	for _, file := range files {
		if err := c.Delete(file); err != nil {
			util.WarnLog("Cache: failed to delete %s: %v", file, err)
		}
	}

	return count, nil
}

// TotalSize sums file sizes across all categories. Files that vanish
// between listing and stat contribute nothing.
func (c *Cache) TotalSize() (int64, error) {
	var total int64

	for _, t := range AllAudioTypes() {
		files, err := c.List(t)
		if err != nil {
			return 0, err
		}
		for _, file := range files {
			info, err := os.Stat(file)
			if err != nil {
				continue
			}
			total += info.Size()
		}
	}

	return total, nil
}
