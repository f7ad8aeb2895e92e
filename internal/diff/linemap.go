package diff

import (
	"github.com/bkyoung/tidy-review/internal/domain"
)

// HeaderLineLength is the number of header lines preceding the first
// hunk body line in a per-file unified diff (diff --git, index, ---,
// +++, @@).
const HeaderLineLength = 5

// LineMap maps, per target file path, a new-side line number to its
// position within that file's own diff block. Removed lines are
// excluded: they have no new-side line number.
type LineMap map[string]map[int]int

// BuildLineMap scans every hunk of every file in the diff once and
// records target line -> diff-relative position for each context or
// added line. It is built once per review run.
func BuildLineMap(d domain.Diff) LineMap {
	lookup := make(LineMap, len(d.Files))
	for _, file := range d.Files {
		parsed, err := Parse(file.Patch)
		if err != nil {
			// Unparseable patches simply contribute no visible lines.
			continue
		}

		fileLookup := make(map[int]int)
		for _, hunk := range parsed.Hunks {
			for _, line := range hunk.Lines {
				if line.Type == LineDeletion || line.NewLine == nil {
					continue
				}
				fileLookup[*line.NewLine] = line.DiffLine - HeaderLineLength
			}
		}
		lookup[file.Path] = fileLookup
	}
	return lookup
}

// Position reports the diff-relative position of a target-file line,
// or false when the line is not visible in the diff.
func (m LineMap) Position(path string, line int) (int, bool) {
	fileLookup, ok := m[path]
	if !ok {
		return 0, false
	}
	pos, ok := fileLookup[line]
	return pos, ok
}

// HasFile reports whether the diff touches the given path at all.
func (m LineMap) HasFile(path string) bool {
	_, ok := m[path]
	return ok
}
