// Package filter narrows the changed-file set with include and
// exclude glob patterns before clang-tidy runs.
package filter

import (
	"path/filepath"
)

// Files returns the changed paths matching any include pattern and no
// exclude pattern. Patterns use filepath.Match syntax and are applied
// in order: includes accumulate, excludes then remove.
func Files(changed, include, exclude []string) []string {
	var files []string
	for _, pattern := range include {
		for _, path := range changed {
			if matches(pattern, path) {
				files = append(files, path)
			}
		}
	}

	for _, pattern := range exclude {
		kept := files[:0]
		for _, path := range files {
			if !matches(pattern, path) {
				kept = append(kept, path)
			}
		}
		files = kept
	}

	return files
}

// matches tests the pattern against both the full path and its base
// name, so "*.cxx" matches files in subdirectories the way shell
// globbing users expect.
func matches(pattern, path string) bool {
	if ok, err := filepath.Match(pattern, path); err == nil && ok {
		return true
	}
	ok, err := filepath.Match(pattern, filepath.Base(path))
	return err == nil && ok
}
