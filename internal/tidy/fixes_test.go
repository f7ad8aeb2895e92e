package tidy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modernFixes = `
MainSourceFile: '/work/src/hello.cpp'
Diagnostics:
  - DiagnosticName: readability-const-return-type
    DiagnosticMessage:
      Message: 'return type should not be const'
      FilePath: '/work/src/hello.cpp'
      FileOffset: 42
      Replacements:
        - FilePath: '/work/src/hello.cpp'
          Offset: 42
          Length: 6
          ReplacementText: ''
    BuildDirectory: '/work/build'
  - DiagnosticName: bugprone-unused-return-value
    DiagnosticMessage:
      Message: 'the value returned by this function should be used'
      FilePath: 'src/other.cpp'
      FileOffset: 7
      Replacements: []
    BuildDirectory: '/work/build'
    Notes:
      - Message: 'cast the expression to void to silence this warning'
        FilePath: 'src/other.cpp'
        FileOffset: 7
`

const legacyFixes = `
MainSourceFile: '/work/src/hello.cpp'
Diagnostics:
  - DiagnosticName: modernize-use-nullptr
    Message: 'use nullptr'
    FilePath: '/work/src/hello.cpp'
    FileOffset: 100
    Replacements:
      - FilePath: '/work/src/hello.cpp'
        Offset: 100
        Length: 4
        ReplacementText: 'nullptr'
`

func writeFixes(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FixesFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFixesModernShape(t *testing.T) {
	path := writeFixes(t, modernFixes)

	fixes, err := LoadFixes(path, "/fallback")
	require.NoError(t, err)

	assert.Equal(t, "/work/src/hello.cpp", fixes.MainSourceFile)
	require.Len(t, fixes.Diagnostics, 2)

	first := fixes.Diagnostics[0]
	assert.Equal(t, "readability-const-return-type", first.Name)
	assert.Equal(t, "return type should not be const", first.Message)
	assert.Equal(t, "/work/src/hello.cpp", first.FilePath)
	assert.Equal(t, 42, first.FileOffset)
	require.Len(t, first.Replacements, 1)
	assert.Equal(t, 6, first.Replacements[0].Length)
	assert.Equal(t, "", first.Replacements[0].ReplacementText)
}

func TestLoadFixesResolvesRelativePaths(t *testing.T) {
	path := writeFixes(t, modernFixes)

	fixes, err := LoadFixes(path, "/fallback")
	require.NoError(t, err)
	require.Len(t, fixes.Diagnostics, 2)

	// Relative paths resolve against the diagnostic's own build
	// directory, not the fallback.
	second := fixes.Diagnostics[1]
	assert.Equal(t, filepath.Join("/work/build", "src/other.cpp"), second.FilePath)
	require.Len(t, second.Notes, 1)
	assert.Equal(t, "cast the expression to void to silence this warning", second.Notes[0].Message)
}

func TestLoadFixesLegacyShape(t *testing.T) {
	path := writeFixes(t, legacyFixes)

	fixes, err := LoadFixes(path, "/work/build")
	require.NoError(t, err)
	require.Len(t, fixes.Diagnostics, 1)

	diag := fixes.Diagnostics[0]
	assert.Equal(t, "modernize-use-nullptr", diag.Name)
	assert.Equal(t, "use nullptr", diag.Message)
	assert.Equal(t, "/work/src/hello.cpp", diag.FilePath)
	assert.Equal(t, 100, diag.FileOffset)
	require.Len(t, diag.Replacements, 1)
	assert.Equal(t, "nullptr", diag.Replacements[0].ReplacementText)
}

func TestLoadFixesMissingFileIsEmpty(t *testing.T) {
	fixes, err := LoadFixes(filepath.Join(t.TempDir(), "absent.yaml"), ".")
	require.NoError(t, err)
	assert.Empty(t, fixes.Diagnostics)
}

func TestLoadFixesMalformedYAML(t *testing.T) {
	path := writeFixes(t, "Diagnostics: [unterminated")
	_, err := LoadFixes(path, ".")
	assert.Error(t, err)
}

func TestLoadFixesEmptyPathStaysEmpty(t *testing.T) {
	path := writeFixes(t, `
Diagnostics:
  - DiagnosticName: clang-diagnostic-error
    DiagnosticMessage:
      Message: 'something internal'
      FilePath: ''
      FileOffset: 0
`)
	fixes, err := LoadFixes(path, "/work/build")
	require.NoError(t, err)
	require.Len(t, fixes.Diagnostics, 1)
	assert.Equal(t, "", fixes.Diagnostics[0].FilePath)
}
