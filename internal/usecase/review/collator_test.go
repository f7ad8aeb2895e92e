package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/index"
)

const helloSource = `#include <string>

std::string hello(std::string name) {
  return "Hello, " + name + "!";
}
`

func writeHello(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hello.cpp")
	require.NoError(t, os.WriteFile(path, []byte(helloSource), 0o644))
	return path
}

func lineStart(t *testing.T, offsets *index.Offsets, path string, line int) int {
	t.Helper()
	start, err := offsets.LineStart(path, line)
	require.NoError(t, err)
	return start
}

func TestResolveComputesLines(t *testing.T) {
	path := writeHello(t)
	offsets := index.NewOffsets()
	start := lineStart(t, offsets, path, 2)

	resolved, err := Resolve([]domain.Replacement{
		{FilePath: path, Offset: start, Length: 0, ReplacementText: "const "},
		{FilePath: path, Offset: start + 18, Length: 16, ReplacementText: "const std::string& name"},
	}, offsets)
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, 2, resolved[0].Line)
	assert.Equal(t, 2, resolved[0].EndLine)
	assert.Equal(t, 2, resolved[1].Line)
	assert.Equal(t, 2, resolved[1].EndLine)
}

func TestCollateGroupsAdjacentLines(t *testing.T) {
	resolved := []Resolved{
		{Line: 4}, {Line: 4}, {Line: 5}, {Line: 7},
	}

	groups := Collate(resolved)
	require.Len(t, groups, 2)

	assert.Len(t, groups[4], 3)
	assert.Len(t, groups[7], 1)
}

func TestCollateIsOrderSensitive(t *testing.T) {
	// In ascending order lines 4 and 5 land in one group.
	ascending := Collate([]Resolved{{Line: 4}, {Line: 5}})
	require.Len(t, ascending, 1)
	assert.Len(t, ascending[4], 2)

	// Walked in the opposite order they do not, since adjacency is
	// checked against the last member of the current group.
	descending := Collate([]Resolved{{Line: 5}, {Line: 4}})
	require.Len(t, descending, 2)
	assert.Len(t, descending[5], 1)
	assert.Len(t, descending[4], 1)
}

func TestCollateEmpty(t *testing.T) {
	assert.Empty(t, Collate(nil))
}

func TestSortedKeys(t *testing.T) {
	groups := map[int][]Resolved{9: nil, 2: nil, 5: nil}
	assert.Equal(t, []int{2, 5, 9}, SortedKeys(groups))
}

func TestApplyGroupSingleLine(t *testing.T) {
	path := writeHello(t)
	offsets := index.NewOffsets()
	start := lineStart(t, offsets, path, 2)

	resolved, err := Resolve([]domain.Replacement{
		{FilePath: path, Offset: start, Length: 0, ReplacementText: "const "},
		{FilePath: path, Offset: start + 18, Length: 16, ReplacementText: "const std::string& name"},
	}, offsets)
	require.NoError(t, err)

	original, edited, err := ApplyGroup(resolved, 2, offsets)
	require.NoError(t, err)

	assert.Equal(t, "std::string hello(std::string name) {", original)
	assert.Equal(t, "const std::string hello(const std::string& name) {", edited)
}

func TestApplyGroupAcrossLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pair.cpp")
	require.NoError(t, os.WriteFile(path, []byte("int a = 1;\nint b = 2;\n"), 0o644))

	offsets := index.NewOffsets()
	start := lineStart(t, offsets, path, 0)

	resolved, err := Resolve([]domain.Replacement{
		{FilePath: path, Offset: start + 8, Length: 1, ReplacementText: "10"},
		{FilePath: path, Offset: start + 19, Length: 1, ReplacementText: "20"},
	}, offsets)
	require.NoError(t, err)

	original, edited, err := ApplyGroup(resolved, 0, offsets)
	require.NoError(t, err)

	assert.Equal(t, "int a = 1;\nint b = 2;", original)
	assert.Equal(t, "int a = 10;\nint b = 20;", edited)
}

func TestApplyGroupIdentityRoundTrip(t *testing.T) {
	path := writeHello(t)
	offsets := index.NewOffsets()
	start := lineStart(t, offsets, path, 2)

	// Replacing a span with its own text must reproduce the source.
	resolved, err := Resolve([]domain.Replacement{
		{FilePath: path, Offset: start, Length: 11, ReplacementText: "std::string"},
	}, offsets)
	require.NoError(t, err)

	original, edited, err := ApplyGroup(resolved, 2, offsets)
	require.NoError(t, err)
	assert.Equal(t, original, edited)
}

func TestApplyGroupRejectsOverlaps(t *testing.T) {
	path := writeHello(t)
	offsets := index.NewOffsets()
	start := lineStart(t, offsets, path, 2)

	resolved, err := Resolve([]domain.Replacement{
		{FilePath: path, Offset: start, Length: 11, ReplacementText: "auto"},
		{FilePath: path, Offset: start + 4, Length: 6, ReplacementText: "x"},
	}, offsets)
	require.NoError(t, err)

	_, _, err = ApplyGroup(resolved, 2, offsets)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverlappingReplacements)
}

func TestApplyGroupEmpty(t *testing.T) {
	offsets := index.NewOffsets()
	_, _, err := ApplyGroup(nil, 0, offsets)
	assert.Error(t, err)
}
