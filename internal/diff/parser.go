package diff

import (
	"strconv"
	"strings"
)

// LineType represents the type of a line in a diff.
type LineType int

const (
	// LineContext represents an unchanged context line (starts with ' ').
	LineContext LineType = iota
	// LineAddition represents an added line (starts with '+').
	LineAddition
	// LineDeletion represents a deleted line (starts with '-').
	LineDeletion
)

// Line represents a single line in a diff hunk.
type Line struct {
	Type     LineType // The type of change
	Content  string   // The line content (without the prefix)
	NewLine  *int     // Line number in new file (nil for deletions)
	DiffLine int      // 1-indexed position in the file's diff text, headers included
}

// Hunk represents a single @@ hunk in a unified diff.
type Hunk struct {
	OldStart int    // Starting line in old file
	OldLines int    // Number of lines from old file
	NewStart int    // Starting line in new file
	NewLines int    // Number of lines in new file
	Lines    []Line // The lines in this hunk
}

// ParsedDiff represents a parsed unified diff for a single file.
type ParsedDiff struct {
	Hunks []Hunk
}

// Parse parses one file's unified diff text into a ParsedDiff.
// The input may carry the standard per-file preamble (diff --git,
// index, ---, +++); preamble and @@ lines are not emitted as hunk
// lines but still advance the DiffLine counter, so DiffLine matches
// the line's 1-indexed position in the raw diff text.
func Parse(patch string) (ParsedDiff, error) {
	if patch == "" {
		return ParsedDiff{}, nil
	}

	lines := strings.Split(patch, "\n")
	// Drop the empty element a trailing newline produces; blank lines
	// inside a hunk are real context lines and must survive.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	result := ParsedDiff{}

	var currentHunk *Hunk
	currentNewLine := 0

	for i, line := range lines {
		diffLineNo := i + 1

		// File headers before the first hunk
		if strings.HasPrefix(line, "diff --git") ||
			strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") ||
			strings.HasPrefix(line, "new file mode") ||
			strings.HasPrefix(line, "deleted file mode") ||
			strings.HasPrefix(line, "old mode") ||
			strings.HasPrefix(line, "new mode") ||
			strings.HasPrefix(line, "similarity index") ||
			strings.HasPrefix(line, "rename from") ||
			strings.HasPrefix(line, "rename to") {
			continue
		}

		// "\ No newline at end of file" markers
		if strings.HasPrefix(line, "\\ ") {
			continue
		}

		if strings.HasPrefix(line, "@@") {
			if currentHunk != nil {
				result.Hunks = append(result.Hunks, *currentHunk)
			}

			hunk, err := parseHunkHeader(line)
			if err != nil {
				continue
			}

			currentHunk = &hunk
			currentNewLine = hunk.NewStart
			continue
		}

		if currentHunk == nil {
			continue
		}

		diffLine := Line{DiffLine: diffLineNo}

		var marker byte = ' '
		if len(line) > 0 {
			marker = line[0]
		}
		switch marker {
		case '+':
			diffLine.Type = LineAddition
			diffLine.Content = line[1:]
			diffLine.NewLine = IntPtr(currentNewLine)
			currentNewLine++
		case '-':
			diffLine.Type = LineDeletion
			diffLine.Content = line[1:]
			// Deletions don't have new-side line numbers
			diffLine.NewLine = nil
		default:
			// Context. Git may emit a blank context line with no
			// leading space at all.
			diffLine.Type = LineContext
			if len(line) > 0 && line[0] == ' ' {
				diffLine.Content = line[1:]
			} else {
				diffLine.Content = line
			}
			diffLine.NewLine = IntPtr(currentNewLine)
			currentNewLine++
		}

		currentHunk.Lines = append(currentHunk.Lines, diffLine)
	}

	if currentHunk != nil {
		result.Hunks = append(result.Hunks, *currentHunk)
	}

	return result, nil
}

// parseHunkHeader parses a hunk header line like "@@ -10,7 +10,8 @@ optional context".
func parseHunkHeader(line string) (Hunk, error) {
	hunk := Hunk{}

	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return hunk, nil
	}

	rangeInfo := strings.TrimSpace(parts[1])
	for _, part := range strings.Fields(rangeInfo) {
		if strings.HasPrefix(part, "-") {
			hunk.OldStart, hunk.OldLines = parseRange(strings.TrimPrefix(part, "-"))
		} else if strings.HasPrefix(part, "+") {
			hunk.NewStart, hunk.NewLines = parseRange(strings.TrimPrefix(part, "+"))
		}
	}

	return hunk, nil
}

// parseRange parses "start,count" or "start" format.
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
	} else {
		start, _ = strconv.Atoi(s)
		count = 1
	}
	return
}

// IntPtr returns a pointer to the given int value.
// Exported for use in tests across packages.
func IntPtr(n int) *int {
	return &n
}
