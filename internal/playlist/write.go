package playlist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write persists the playlist atomically: the content is written to a
// temporary file next to the destination and renamed into place, so a
// failed run never leaves a truncated playlist behind.
func Write(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".playlist-*.m3u")
	if err != nil {
		return fmt.Errorf("creating temporary playlist: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing playlist: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing playlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing playlist: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting playlist permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
