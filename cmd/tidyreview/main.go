package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	apihttp "github.com/bkyoung/tidy-review/internal/adapter/api/http"
	"github.com/bkyoung/tidy-review/internal/adapter/cli"
	"github.com/bkyoung/tidy-review/internal/adapter/observability"
	"github.com/bkyoung/tidy-review/internal/config"
	"github.com/bkyoung/tidy-review/internal/usecase/review"
	"github.com/bkyoung/tidy-review/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact tokens from URLs in error messages before logging
		log.Println(apihttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "tidyreview",
		EnvPrefix:   "TIDYREVIEW",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// GITHUB_TOKEN and the Actions environment are the usual sources
	// when config says nothing.
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.GitHub.Repository == "" {
		cfg.GitHub.Repository = os.Getenv("GITHUB_REPOSITORY")
	}

	obs := buildObservability(cfg.Observability)

	application := &app{
		cfg:          cfg,
		logger:       obs.logger,
		reviewLogger: obs.reviewLogger,
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer:           application,
		Poster:             application,
		DefaultRepo:        cfg.GitHub.Repository,
		DefaultPRNumber:    cfg.GitHub.PRNumber,
		DefaultBaseRef:     cfg.Git.BaseRef,
		DefaultOutput:      cfg.Output.Directory,
		DefaultMaxComments: cfg.Review.MaxComments,
		DefaultLGTM:        cfg.Review.LGTMComment,
		Version:            version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		if errors.Is(err, cli.ErrShouldReview) {
			os.Exit(1)
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tidyreview"))
	}
	return paths
}

// observabilityComponents holds shared observability instances.
type observabilityComponents struct {
	logger       apihttp.Logger
	reviewLogger review.Logger
}

// buildObservability creates observability components based on configuration.
func buildObservability(cfg config.ObservabilityConfig) observabilityComponents {
	if !cfg.Logging.Enabled {
		return observabilityComponents{}
	}

	logLevel := apihttp.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = apihttp.LogLevelDebug
	case "error":
		logLevel = apihttp.LogLevelError
	}

	logFormat := apihttp.LogFormatHuman
	if cfg.Logging.Format == "json" {
		logFormat = apihttp.LogFormatJSON
	}

	return observabilityComponents{
		logger:       apihttp.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactTokens),
		reviewLogger: observability.NewReviewLogger(logLevel, logFormat),
	}
}
