// Package project finds the root directory plugins and configuration are
// resolved against.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMarker is the file whose presence marks a project root.
const DefaultMarker = "package.json"

// Locator walks up the directory tree looking for marker files.
type Locator struct {
	Markers []string
	// Stat defaults to os.Stat.
	Stat func(name string) (fs.FileInfo, error)
}

// Locate returns the nearest ancestor of startDir (inclusive) containing one of
// markers, or startDir when none does. Without markers DefaultMarker is used.
func Locate(startDir string, markers ...string) (string, error) {
	return Locator{Markers: markers}.Locate(startDir)
}

// Locate implements the upward search. Stat failures other than a missing file
// abort the search.
func (l Locator) Locate(startDir string) (string, error) {
	markers := l.Markers
	if len(markers) == 0 {
		markers = []string{DefaultMarker}
	}
	stat := l.Stat
	if stat == nil {
		stat = os.Stat
	}

	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("invalid start directory: %w", err)
	}

	dir := start
	for {
		for _, marker := range markers {
			info, err := stat(filepath.Join(dir, marker))
			if err == nil {
				if !info.IsDir() {
					return dir, nil
				}
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", fmt.Errorf("locating project root at %s: %w", dir, err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}
