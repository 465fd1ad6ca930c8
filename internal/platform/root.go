package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned by FindRoot when no vault marker exists above the start directory.
var ErrRootNotFound = errors.New("vault root not found")

// RootMarkers identify a vault directory, checked in this order.
var RootMarkers = []string{".wiki", ConfigFilename, ".git"}

// FindRoot walks from start up to the filesystem root and returns the first
// directory holding one of RootMarkers. start may be a file, in which case
// the walk begins at its directory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		if rootMarker(dir) != "" {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w above %s", ErrRootNotFound, start)
		}
		dir = parent
	}
}

// rootMarker returns the first marker present in dir, or "".
func rootMarker(dir string) string {
	for _, m := range RootMarkers {
		if hasFile(dir, m) {
			return m
		}
	}
	return ""
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
