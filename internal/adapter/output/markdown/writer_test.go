package markdown

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/tidy-review/internal/domain"
)

func fixedClock() string { return "20260830T143000Z" }

func writeReport(t *testing.T, review domain.Review) (string, string) {
	t.Helper()
	dir := t.TempDir()

	path, err := NewWriter(fixedClock).Write(context.Background(), Artifact{
		OutputDir:  dir,
		Repository: "acme/widgets",
		PRNumber:   7,
		Review:     review,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return path, string(data)
}

func TestWriteFilenameFromRepositoryAndClock(t *testing.T) {
	path, _ := writeReport(t, domain.Review{})

	assert.Equal(t, "acme-widgets_pr7_20260830T143000Z.md", filepath.Base(path))
}

func TestWriteEmptyReview(t *testing.T) {
	_, content := writeReport(t, domain.Review{})

	assert.Contains(t, content, "# Clang-Tidy Review Report")
	assert.Contains(t, content, "- Repository: acme/widgets")
	assert.Contains(t, content, "- Pull request: #7")
	assert.Contains(t, content, "- Comments: 0")
	assert.Contains(t, content, "No warnings reported.")
}

func TestWriteGroupsCommentsByFile(t *testing.T) {
	review := domain.Review{Comments: []domain.ReviewComment{
		{Path: "src/hello.cpp", Line: 3, Body: "warning: use const [misc-const]"},
		{Path: "src/goodbye.cpp", Line: 9, Body: "warning: unused [misc-unused]"},
		{Path: "src/hello.cpp", Line: 12, Body: "warning: shadow [bugprone-shadow]"},
	}}

	_, content := writeReport(t, review)

	assert.Contains(t, content, "## Hello.cpp")
	assert.Contains(t, content, "## Goodbye.cpp")
	assert.Contains(t, content, "### src/hello.cpp:3")
	assert.Contains(t, content, "### src/hello.cpp:12")
	assert.Contains(t, content, "### src/goodbye.cpp:9")
	assert.Contains(t, content, "warning: use const [misc-const]")
	// Files are ordered by path, so goodbye comes first.
	goodbye := strings.Index(content, "## Goodbye.cpp")
	hello := strings.Index(content, "## Hello.cpp")
	require.GreaterOrEqual(t, goodbye, 0)
	require.GreaterOrEqual(t, hello, 0)
	assert.Less(t, goodbye, hello)
}

func TestFileHeading(t *testing.T) {
	caser := cases.Title(language.English)

	assert.Equal(t, "Hello.cpp", fileHeading(caser, "src/hello.cpp"))
	assert.Equal(t, "My_widget.hpp", fileHeading(caser, "my_widget.hpp"))
	assert.Equal(t, ".clang-tidy", fileHeading(caser, ".clang-tidy"))
	assert.Equal(t, "Makefile", fileHeading(caser, "Makefile"))
}

func TestSanitise(t *testing.T) {
	assert.Equal(t, "acme-widgets", sanitise("acme/widgets"))
	assert.Equal(t, "my-repo", sanitise("My Repo"))
	assert.Equal(t, "unknown", sanitise(""))
}
