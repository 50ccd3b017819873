package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStorageDirectories creates the base storage layout used by the
// application (database files, exported media).
func EnsureStorageDirectories(baseDir string) error {
	dirs := []string{
		baseDir,
		filepath.Join(baseDir, "media"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}
	return nil
}

// MediaExportPath returns the directory where generated media for a
// cache key is exported, creating it if needed.
func MediaExportPath(baseDir, cacheKey string) string {
	path := filepath.Join(baseDir, "media", cacheKey)
	_ = os.MkdirAll(path, 0755)
	return path
}
