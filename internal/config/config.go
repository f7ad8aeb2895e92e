package config

import (
	"fmt"
	"strings"
)

// Config represents the full application configuration.
type Config struct {
	GitHub        GitHubConfig        `yaml:"github"`
	ClangTidy     ClangTidyConfig     `yaml:"clangTidy"`
	Review        ReviewConfig        `yaml:"review"`
	Files         FilesConfig         `yaml:"files"`
	Git           GitConfig           `yaml:"git"`
	HTTP          HTTPConfig          `yaml:"http"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitHubConfig identifies the pull request to review and how to reach it.
type GitHubConfig struct {
	// Token authenticates API calls. In Actions this is GITHUB_TOKEN.
	Token string `yaml:"token"`

	// Repository is the "owner/name" slug.
	Repository string `yaml:"repository"`

	// PRNumber is the pull request to review.
	PRNumber int `yaml:"prNumber"`

	// APIURL overrides the API base URL for GitHub Enterprise.
	APIURL string `yaml:"apiURL"`
}

// SplitRepository returns the owner and name parts of the slug.
func (g GitHubConfig) SplitRepository() (owner, name string, err error) {
	parts := strings.SplitN(g.Repository, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be owner/name, got %q", g.Repository)
	}
	return parts[0], parts[1], nil
}

// ClangTidyConfig configures the analysis run.
type ClangTidyConfig struct {
	// Binary is the clang-tidy executable to invoke.
	Binary string `yaml:"binary"`

	// BuildDir holds compile_commands.json.
	BuildDir string `yaml:"buildDir"`

	// Checks is the -checks= glob list. Ignored when ConfigFile is set.
	Checks string `yaml:"checks"`

	// ConfigFile is an explicit .clang-tidy file. Empty means discover
	// the one at the repository root, if any.
	ConfigFile string `yaml:"configFile"`

	// FixesFile overrides where the exported fixes are read from.
	FixesFile string `yaml:"fixesFile"`
}

// ReviewConfig configures review assembly and posting.
type ReviewConfig struct {
	// MaxComments caps inline comments per run. Zero means unlimited.
	MaxComments int `yaml:"maxComments"`

	// LGTMComment is posted when there is nothing to say. Empty
	// disables it.
	LGTMComment string `yaml:"lgtmComment"`

	// Annotations additionally publishes comments as check-run
	// annotations.
	Annotations bool `yaml:"annotations"`

	// AnnotationsName is the check run name used with Annotations.
	AnnotationsName string `yaml:"annotationsName"`
}

// FilesConfig restricts which changed files are analyzed.
type FilesConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// GitConfig configures the local diff mode.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
	BaseRef       string `yaml:"baseRef"`
}

// HTTPConfig holds global HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// OutputConfig configures artifact and report writing.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Level        string `yaml:"level"`        // debug, info, error
	Format       string `yaml:"format"`       // json, human
	RedactTokens bool   `yaml:"redactTokens"` // Redact tokens in logs
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.GitHub = chooseGitHub(base.GitHub, overlay.GitHub)
	result.ClangTidy = chooseClangTidy(base.ClangTidy, overlay.ClangTidy)
	result.Review = chooseReview(base.Review, overlay.Review)
	result.Files = chooseFiles(base.Files, overlay.Files)
	result.Git = chooseGit(base.Git, overlay.Git)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseGitHub(base, overlay GitHubConfig) GitHubConfig {
	result := base
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	if overlay.Repository != "" {
		result.Repository = overlay.Repository
	}
	if overlay.PRNumber != 0 {
		result.PRNumber = overlay.PRNumber
	}
	if overlay.APIURL != "" {
		result.APIURL = overlay.APIURL
	}
	return result
}

func chooseClangTidy(base, overlay ClangTidyConfig) ClangTidyConfig {
	result := base
	if overlay.Binary != "" {
		result.Binary = overlay.Binary
	}
	if overlay.BuildDir != "" {
		result.BuildDir = overlay.BuildDir
	}
	if overlay.Checks != "" {
		result.Checks = overlay.Checks
	}
	if overlay.ConfigFile != "" {
		result.ConfigFile = overlay.ConfigFile
	}
	if overlay.FixesFile != "" {
		result.FixesFile = overlay.FixesFile
	}
	return result
}

func chooseReview(base, overlay ReviewConfig) ReviewConfig {
	result := base
	if overlay.MaxComments != 0 {
		result.MaxComments = overlay.MaxComments
	}
	if overlay.LGTMComment != "" {
		result.LGTMComment = overlay.LGTMComment
	}
	if overlay.Annotations {
		result.Annotations = overlay.Annotations
	}
	if overlay.AnnotationsName != "" {
		result.AnnotationsName = overlay.AnnotationsName
	}
	return result
}

func chooseFiles(base, overlay FilesConfig) FilesConfig {
	result := base
	if len(overlay.Include) > 0 {
		result.Include = overlay.Include
	}
	if len(overlay.Exclude) > 0 {
		result.Exclude = overlay.Exclude
	}
	return result
}

func chooseGit(base, overlay GitConfig) GitConfig {
	result := base
	if overlay.RepositoryDir != "" {
		result.RepositoryDir = overlay.RepositoryDir
	}
	if overlay.BaseRef != "" {
		result.BaseRef = overlay.BaseRef
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
