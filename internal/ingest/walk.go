package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/letterscan/constants"
)

// WalkSources walks root and describes every file with an allowed
// extension, skipping hidden entries if requested. Per-file failures are
// recorded on the Source and counted; they do not stop the walk.
func WalkSources(root string, skipHidden bool) ([]Source, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []Source
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Source{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		src, err := Describe(path)
		if err != nil {
			results = append(results, Source{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, src)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}

// AllowedExt reports whether ext (with or without the dot, any case) is a
// source format the OCR collaborator accepts.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden reports whether the last element of path is a dot-file or
// dot-directory. "." and ".." are not hidden.
func IsHidden(path string) bool {
	name := filepath.Base(path)
	return len(name) > 1 && name[0] == '.' && name != ".."
}
