package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}, FileName: "testconfig"})
	require.NoError(t, err)

	assert.Equal(t, "clang-tidy", cfg.ClangTidy.Binary)
	assert.Equal(t, ".", cfg.ClangTidy.BuildDir)
	assert.Equal(t, 25, cfg.Review.MaxComments)
	assert.Equal(t, `clang-tidy review says "All clean, LGTM! :+1:"`, cfg.Review.LGTMComment)
	assert.Equal(t, "clang-tidy-review", cfg.Review.AnnotationsName)
	assert.Contains(t, cfg.Files.Include, "*.cpp")
	assert.Contains(t, cfg.Files.Include, "*.h")
	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, "30s", cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2.0, cfg.HTTP.BackoffMultiplier)
	assert.False(t, cfg.Store.Enabled)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.True(t, cfg.Observability.Logging.Enabled)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "human", cfg.Observability.Logging.Format)
	assert.True(t, cfg.Observability.Logging.RedactTokens)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := `
github:
  repository: acme/widgets
  prNumber: 12
clangTidy:
  binary: clang-tidy-18
  checks: "-*,readability-*"
review:
  maxComments: 5
files:
  exclude:
    - "third_party/*"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testconfig.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}, FileName: "testconfig"})
	require.NoError(t, err)

	assert.Equal(t, "acme/widgets", cfg.GitHub.Repository)
	assert.Equal(t, 12, cfg.GitHub.PRNumber)
	assert.Equal(t, "clang-tidy-18", cfg.ClangTidy.Binary)
	assert.Equal(t, "-*,readability-*", cfg.ClangTidy.Checks)
	assert.Equal(t, 5, cfg.Review.MaxComments)
	assert.Equal(t, []string{"third_party/*"}, cfg.Files.Exclude)
	// Defaults still apply where the file is silent.
	assert.Equal(t, "30s", cfg.HTTP.Timeout)
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testconfig.yaml"), []byte("github: [broken"), 0o644))

	_, err := Load(LoaderOptions{ConfigPaths: []string{dir}, FileName: "testconfig"})
	assert.Error(t, err)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("TIDYREVIEW_CLANGTIDY_BINARY", "clang-tidy-19")
	t.Setenv("TIDYREVIEW_REVIEW_MAXCOMMENTS", "7")

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}, FileName: "testconfig"})
	require.NoError(t, err)

	assert.Equal(t, "clang-tidy-19", cfg.ClangTidy.Binary)
	assert.Equal(t, 7, cfg.Review.MaxComments)
}

func TestExpandEnvString(t *testing.T) {
	t.Setenv("TIDYREVIEW_TEST_TOKEN", "ghp_secret")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "braced variable", input: "${TIDYREVIEW_TEST_TOKEN}", want: "ghp_secret"},
		{name: "bare variable", input: "$TIDYREVIEW_TEST_TOKEN", want: "ghp_secret"},
		{name: "embedded in text", input: "token=${TIDYREVIEW_TEST_TOKEN}!", want: "token=ghp_secret!"},
		{name: "unset keeps original", input: "${TIDYREVIEW_TEST_UNSET_VAR}", want: "${TIDYREVIEW_TEST_UNSET_VAR}"},
		{name: "plain string untouched", input: "no variables here", want: "no variables here"},
		{name: "empty string", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvString(tt.input))
		})
	}
}

func TestLoadExpandsTokenFromFile(t *testing.T) {
	t.Setenv("TIDYREVIEW_TEST_FILE_TOKEN", "from-env")

	dir := t.TempDir()
	content := "github:\n  token: ${TIDYREVIEW_TEST_FILE_TOKEN}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "testconfig.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}, FileName: "testconfig"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GitHub.Token)
}

func TestLocateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testconfig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	assert.Equal(t, path, locateConfigFile("testconfig", []string{dir}))
	assert.Empty(t, locateConfigFile("missing", []string{dir}))
}
