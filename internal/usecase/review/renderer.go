package review

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/index"
)

// ErrOffsetPastEOF marks a diagnostic whose byte offset lies beyond
// the end of its source file, which happens when the analyzed file
// differs from the checked-out one. Callers skip such diagnostics.
var ErrOffsetPastEOF = errors.New("diagnostic offset past end of file")

// Renderer formats one diagnostic (plus its notes) into a review
// comment body.
type Renderer struct {
	offsets *index.Offsets
	workDir string
}

// NewRenderer constructs a renderer. workDir is the directory file
// paths are made relative to in rendered labels, normally the
// repository root.
func NewRenderer(offsets *index.Offsets, workDir string) *Renderer {
	return &Renderer{offsets: offsets, workDir: workDir}
}

// Render produces the comment body and the 0-indexed line the comment
// closes on. For fix-it-less diagnostics the body points at the
// problem with a caret; for diagnostics with replacements each group
// renders as an inline suggestion (same line as the diagnostic) or a
// contextual diff block (different line). Notes are appended in a
// collapsible section.
func (r *Renderer) Render(diag domain.Diagnostic) (body string, endLine int, err error) {
	lineNum, err := r.offsets.LineOf(diag.FilePath, diag.FileOffset)
	if err != nil {
		return "", 0, err
	}
	if lineNum < 0 {
		return "", 0, fmt.Errorf("%s offset %d: %w", diag.FilePath, diag.FileOffset, ErrOffsetPastEOF)
	}
	lineStart, err := r.offsets.LineStart(diag.FilePath, lineNum)
	if err != nil {
		return "", 0, err
	}
	sourceLine, err := index.ReadLine(diag.FilePath, lineStart)
	if err != nil {
		return "", 0, err
	}

	endLine = lineNum

	var codeBlocks string
	if len(diag.Replacements) > 0 {
		codeBlocks, endLine, err = r.renderReplacements(diag, lineNum)
		if err != nil {
			return "", 0, err
		}
	} else {
		// No fixit, so just point at the problem.
		codeBlocks = formatPointer(sourceLine, diag.FileOffset-lineStart)
	}

	notes, noteMessage, err := r.renderNotes(diag.Notes)
	if err != nil {
		return "", 0, err
	}
	if noteMessage != "" {
		// A note without a file path cannot be located; fall back to
		// its bare message as the whole comment.
		return noteMessage, endLine, nil
	}
	codeBlocks += notes

	body = fmt.Sprintf("warning: %s [%s]\n%s", diag.Message, diag.Name, codeBlocks)
	return body, endLine, nil
}

// renderReplacements renders every replacement group of the
// diagnostic, in ascending key order. Groups on the diagnostic's own
// line become suggestion blocks and move the comment's end line to
// the group's last EndLine; groups elsewhere become labeled diff
// blocks and leave the anchor alone.
func (r *Renderer) renderReplacements(diag domain.Diagnostic, lineNum int) (string, int, error) {
	resolved, err := Resolve(diag.Replacements, r.offsets)
	if err != nil {
		return "", 0, err
	}
	groups := Collate(resolved)

	endLine := lineNum
	var blocks strings.Builder

	for _, key := range SortedKeys(groups) {
		group := groups[key]
		oldLine, newLine, err := ApplyGroup(group, key, r.offsets)
		if err != nil {
			return "", 0, err
		}

		if key == lineNum {
			blocks.WriteString("\n```suggestion\n")
			blocks.WriteString(newLine)
			blocks.WriteString("\n```\n")
			endLine = group[len(group)-1].EndLine
		} else {
			blocks.WriteString(r.formatDiffBlock(group[0].FilePath, key, oldLine, newLine))
		}
	}

	return blocks.String(), endLine, nil
}

// formatDiffBlock renders an edit that lands away from the comment's
// anchor line as a path-labeled diff fence.
func (r *Renderer) formatDiffBlock(path string, line int, oldLine, newLine string) string {
	var block strings.Builder
	block.WriteString(fmt.Sprintf("\n%s:%d:\n```diff\n", r.tryRelative(path), line))
	for _, l := range strings.Split(oldLine, "\n") {
		block.WriteString("- ")
		block.WriteString(l)
		block.WriteString("\n")
	}
	for _, l := range strings.Split(newLine, "\n") {
		block.WriteString("+ ")
		block.WriteString(l)
		block.WriteString("\n")
	}
	block.WriteString("```\n")
	return block.String()
}

// renderNotes formats secondary locations. When a note carries no
// file path the whole comment short-circuits to that note's message,
// returned as fallback.
func (r *Renderer) renderNotes(notes []domain.Note) (blocks, fallback string, err error) {
	if len(notes) == 0 {
		return "", "", nil
	}

	var section strings.Builder
	for _, note := range notes {
		if note.FilePath == "" {
			return "", note.Message, nil
		}

		abs, err := filepath.Abs(note.FilePath)
		if err != nil {
			return "", "", fmt.Errorf("resolve note path %s: %w", note.FilePath, err)
		}
		lineNum, err := r.offsets.LineOf(abs, note.FileOffset)
		if err != nil {
			return "", "", err
		}
		lineStart, err := r.offsets.LineStart(abs, lineNum)
		if err != nil {
			return "", "", err
		}
		sourceLine, err := index.ReadLine(abs, lineStart)
		if err != nil {
			return "", "", err
		}

		section.WriteString(fmt.Sprintf("**%s:%d:** %s\n", r.tryRelative(abs), lineNum, note.Message))
		section.WriteString(formatPointer(sourceLine, note.FileOffset-lineStart))
	}

	return fmt.Sprintf("<details>\n<summary>Additional context</summary>\n\n%s\n</details>\n", section.String()), "", nil
}

// formatPointer renders a single source line with a caret marking the
// diagnostic's byte offset within it.
func formatPointer(sourceLine string, column int) string {
	if column < 0 {
		column = 0
	}
	return fmt.Sprintf("```cpp\n%s\n%s^\n```\n", sourceLine, strings.Repeat(" ", column))
}

// tryRelative makes path relative to the renderer's working directory
// when it lies inside it, matching how paths appear in the diff;
// anything outside stays absolute.
func (r *Renderer) tryRelative(path string) string {
	rel, err := filepath.Rel(r.workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
