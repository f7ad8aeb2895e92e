package tidy

import (
	"encoding/json"
	"fmt"

	"github.com/bkyoung/tidy-review/internal/diff"
	"github.com/bkyoung/tidy-review/internal/domain"
)

type lineFilterEntry struct {
	Name  string   `json:"name"`
	Lines [][2]int `json:"lines"`
}

// LineFilter renders clang-tidy's -line-filter argument from the
// diff: per file, the inclusive ranges of added lines. Files with no
// added lines are omitted; an empty diff yields "[]", which callers
// treat as nothing to analyze.
func LineFilter(d domain.Diff, files []string) (string, error) {
	wanted := make(map[string]bool, len(files))
	for _, f := range files {
		wanted[f] = true
	}

	var entries []lineFilterEntry
	for _, file := range d.Files {
		if !wanted[file.Path] {
			continue
		}

		parsed, err := diff.Parse(file.Patch)
		if err != nil {
			return "", fmt.Errorf("parse patch for %s: %w", file.Path, err)
		}

		var added []int
		for _, hunk := range parsed.Hunks {
			for _, line := range hunk.Lines {
				if line.Type == diff.LineAddition && line.NewLine != nil {
					added = append(added, *line.NewLine)
				}
			}
		}

		ranges := groupConsecutive(added)
		if len(ranges) > 0 {
			entries = append(entries, lineFilterEntry{Name: file.Path, Lines: ranges})
		}
	}

	if len(entries) == 0 {
		return "[]", nil
	}

	out, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode line filter: %w", err)
	}
	return string(out), nil
}

// groupConsecutive collapses a sorted list of line numbers into
// inclusive [start, end] ranges.
func groupConsecutive(lines []int) [][2]int {
	var ranges [][2]int
	for _, line := range lines {
		if n := len(ranges); n > 0 && ranges[n-1][1] == line-1 {
			ranges[n-1][1] = line
			continue
		}
		ranges = append(ranges, [2]int{line, line})
	}
	return ranges
}
