// Package markdown renders a review into a human-readable report, for
// runs that cannot or should not post to GitHub.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/tidy-review/internal/domain"
)

type clock func() string

// Writer renders reviews into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Artifact describes one report to write.
type Artifact struct {
	OutputDir  string
	Repository string
	PRNumber   int
	Review     domain.Review
}

// Write persists a Markdown report to disk.
func (w *Writer) Write(ctx context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_pr%d_%s.md",
		sanitise(artifact.Repository),
		artifact.PRNumber,
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	content := buildContent(artifact)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(artifact Artifact) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Clang-Tidy Review Report\n\n")
	if artifact.Repository != "" {
		builder.WriteString(fmt.Sprintf("- Repository: %s\n", artifact.Repository))
	}
	if artifact.PRNumber > 0 {
		builder.WriteString(fmt.Sprintf("- Pull request: #%d\n", artifact.PRNumber))
	}
	builder.WriteString(fmt.Sprintf("- Comments: %d\n\n", len(artifact.Review.Comments)))

	if len(artifact.Review.Comments) == 0 {
		builder.WriteString("No warnings reported.\n")
		return builder.String()
	}

	for _, path := range sortedPaths(artifact.Review.Comments) {
		builder.WriteString(fmt.Sprintf("## %s\n\n", fileHeading(caser, path)))
		for _, comment := range artifact.Review.Comments {
			if comment.Path != path {
				continue
			}
			builder.WriteString(fmt.Sprintf("### %s:%d\n\n", comment.Path, comment.Line))
			builder.WriteString(comment.Body)
			builder.WriteString("\n\n")
		}
	}

	return builder.String()
}

// fileHeading title-cases the filename stem, leaving the extension as
// written.
func fileHeading(caser cases.Caser, path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return base
	}
	return caser.String(stem) + ext
}

func sortedPaths(comments []domain.ReviewComment) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, c := range comments {
		if !seen[c.Path] {
			seen[c.Path] = true
			paths = append(paths, c.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
