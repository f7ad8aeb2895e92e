// Package review turns clang-tidy diagnostics into a postable pull
// request review: it collates fix-it replacements into line groups,
// renders comment bodies, assembles the review payload, and culls
// duplicates against already-posted comments.
package review

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/index"
)

// ErrOverlappingReplacements is returned when two replacements in the
// same group cover overlapping byte ranges. clang-tidy is not
// supposed to emit these; splicing them would corrupt the suggestion,
// so the group is rejected instead.
var ErrOverlappingReplacements = errors.New("overlapping replacements in one group")

// Resolved couples a replacement with the line numbers derived from
// the offset index. Resolution returns fresh records; input
// replacements are never mutated.
type Resolved struct {
	domain.Replacement
	Line    int // 0-indexed line the replacement starts on
	EndLine int // 0-indexed line the replacement ends on
}

// Resolve computes start and end line numbers for every replacement.
// File paths are made absolute first; a replacement may target a file
// the index has not seen yet, in which case its table is built on
// demand.
func Resolve(replacements []domain.Replacement, offsets *index.Offsets) ([]Resolved, error) {
	resolved := make([]Resolved, 0, len(replacements))
	for _, rep := range replacements {
		abs, err := filepath.Abs(rep.FilePath)
		if err != nil {
			return nil, fmt.Errorf("resolve replacement path %s: %w", rep.FilePath, err)
		}
		rep.FilePath = abs

		line, err := offsets.LineOf(abs, rep.Offset)
		if err != nil {
			return nil, err
		}
		endLine, err := offsets.LineOf(abs, rep.Offset+rep.Length)
		if err != nil {
			return nil, err
		}

		resolved = append(resolved, Resolved{Replacement: rep, Line: line, EndLine: endLine})
	}
	return resolved, nil
}

// Collate groups replacements that land on the same or adjacent
// lines, keyed by each group's first line. Grouping walks the
// replacements in their given order and checks adjacency against the
// last member of the current group, so reordering the input can
// change the result. That order sensitivity mirrors the upstream
// tool's contract and is intentional.
func Collate(resolved []Resolved) map[int][]Resolved {
	var groups [][]Resolved
	for i, rep := range resolved {
		if i == 0 {
			groups = append(groups, []Resolved{rep})
			continue
		}
		last := groups[len(groups)-1]
		lastLine := last[len(last)-1].Line
		if rep.Line == lastLine || rep.Line-1 == lastLine {
			groups[len(groups)-1] = append(last, rep)
		} else {
			groups = append(groups, []Resolved{rep})
		}
	}

	keyed := make(map[int][]Resolved, len(groups))
	for _, group := range groups {
		keyed[group[0].Line] = group
	}
	return keyed
}

// SortedKeys returns the group keys in ascending order so rendering
// is deterministic.
func SortedKeys(groups map[int][]Resolved) []int {
	keys := make([]int, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

// ApplyGroup reconstructs the source span covered by a group and
// splices every replacement in, returning the original and edited
// text of the merged span. Replacement offsets are taken relative to
// the start of lineNum. Each needed source line is read exactly once
// even when several replacements touch it.
func ApplyGroup(group []Resolved, lineNum int, offsets *index.Offsets) (original, edited string, err error) {
	if len(group) == 0 {
		return "", "", errors.New("empty replacement group")
	}

	filename := group[0].FilePath
	lineOffset, err := offsets.LineStart(filename, lineNum)
	if err != nil {
		return "", "", err
	}

	// Spans to cut out of the merged source text, as [start, end)
	// offsets relative to lineOffset.
	type span struct{ start, end int }
	spans := make([]span, 0, len(group))
	sourceLines := make(map[int]string)

	for _, rep := range group {
		start := rep.Offset - lineOffset
		spans = append(spans, span{start: start, end: start + rep.Length})

		for ln := rep.Line; ln <= rep.EndLine; ln++ {
			if _, seen := sourceLines[ln]; seen {
				continue
			}
			start, err := offsets.LineStart(filename, ln)
			if err != nil {
				return "", "", err
			}
			text, err := index.ReadLine(filename, start)
			if err != nil {
				return "", "", err
			}
			sourceLines[ln] = text + "\n"
		}
	}

	// Replacements might cross lines, so squash the span into one
	// logical line.
	lineNums := make([]int, 0, len(sourceLines))
	for ln := range sourceLines {
		lineNums = append(lineNums, ln)
	}
	sort.Ints(lineNums)

	var joined strings.Builder
	for _, ln := range lineNums {
		joined.WriteString(sourceLines[ln])
	}
	source := strings.TrimSuffix(joined.String(), "\n")

	var out strings.Builder
	prevEnd := 0
	for i, sp := range spans {
		if sp.start < prevEnd {
			return "", "", fmt.Errorf("%w: %s line %d", ErrOverlappingReplacements, filename, lineNum)
		}
		out.WriteString(sliceClamped(source, prevEnd, sp.start))
		out.WriteString(group[i].ReplacementText)
		prevEnd = sp.end
	}
	out.WriteString(sliceClamped(source, prevEnd, len(source)))

	return source, out.String(), nil
}

// sliceClamped slices s with indexes clamped into range; a
// replacement that consumes the final newline of its span would
// otherwise index past the trimmed text.
func sliceClamped(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if start > len(s) {
		start = len(s)
	}
	if end > len(s) {
		end = len(s)
	}
	if end < start {
		end = start
	}
	return s[start:end]
}
