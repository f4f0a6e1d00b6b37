package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// DefaultDownloadsSubdir is created under the user's Downloads directory
// when no destination is configured.
const DefaultDownloadsSubdir = "tubefetch"

// CreateDirectoryIfNotExists creates dir and any missing parents. It is a
// no-op when the directory already exists.
func CreateDirectoryIfNotExists(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory path is empty")
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("path exists but is not a directory: %s", dir)
		}
		return nil
	}

	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// DefaultDownloadDir returns the fallback destination directory used when
// neither configuration nor prompts supply one.
func DefaultDownloadDir() string {
	if downloads, err := GetHomeDownloadsDir(); err == nil {
		return filepath.Join(downloads, DefaultDownloadsSubdir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultDownloadsSubdir
	}
	return filepath.Join(cwd, DefaultDownloadsSubdir)
}

// FileWithIDExists reports whether dir already holds a file whose name
// carries the given video ID. Partial download artifacts are ignored.
func FileWithIDExists(dir, videoID string) bool {
	if videoID == "" {
		return false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == ".part" || ext == ".ytdl" {
			continue
		}
		if strings.Contains(name, "["+videoID+"]") {
			return true
		}
	}
	return false
}
