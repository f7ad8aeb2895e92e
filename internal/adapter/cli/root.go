package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/tidy-review/internal/usecase/skip"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// ErrShouldReview is returned by check-skip when no skip trigger is
// found. Use it as a sentinel exit status in workflow steps.
var ErrShouldReview = errors.New("should review")

// ReviewRunner executes the analysis flow: fetch the diff, run
// clang-tidy over the changed files, and assemble the review.
type ReviewRunner interface {
	RunReview(ctx context.Context, req ReviewRequest) error
}

// PostRunner publishes a previously assembled review from artifacts.
type PostRunner interface {
	RunPost(ctx context.Context, req PostRequest) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer ReviewRunner
	Poster   PostRunner
	Args     Arguments

	DefaultRepo        string
	DefaultPRNumber    int
	DefaultBaseRef     string
	DefaultOutput      string
	DefaultMaxComments int
	DefaultLGTM        string
	Version            string
}

// ReviewRequest represents an inbound review command.
type ReviewRequest struct {
	Repository         string
	PRNumber           int
	Local              bool
	BaseRef            string
	IncludeUncommitted bool

	BuildDir   string
	Checks     string
	ConfigFile string

	OutputDir     string
	SplitWorkflow bool
	MaxComments   int
	LGTMComment   string
	Annotations   bool
	SARIF         bool
	Report        bool
	AssumeYes     bool
}

// PostRequest represents an inbound post command.
type PostRequest struct {
	Repository  string
	ArtifactDir string
	MaxComments int
	LGTMComment string
	Annotations bool
	AssumeYes   bool
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "tidyreview",
		Short: "Post clang-tidy warnings as pull request review comments",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps))
	root.AddCommand(postCommand(deps))
	root.AddCommand(checkSkipCommand())

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func reviewCommand(deps Dependencies) *cobra.Command {
	var req ReviewRequest

	cmd := &cobra.Command{
		Use:   "review [pr-number]",
		Short: "Analyze a pull request's changed files with clang-tidy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				var parsed int
				if _, err := fmt.Sscanf(args[0], "%d", &parsed); err != nil || parsed <= 0 {
					return fmt.Errorf("invalid pull request number %q", args[0])
				}
				req.PRNumber = parsed
			}

			if !req.Local {
				if req.Repository == "" {
					return fmt.Errorf("repository not specified; use --repository or set it in config")
				}
				if req.PRNumber <= 0 {
					return fmt.Errorf("pull request number not specified; pass as an argument or use --pr")
				}
			}

			return deps.Reviewer.RunReview(cmd.Context(), req)
		},
	}

	defaultOutput := deps.DefaultOutput
	if defaultOutput == "" {
		defaultOutput = "out"
	}
	defaultBase := deps.DefaultBaseRef
	if defaultBase == "" {
		defaultBase = "main"
	}

	cmd.Flags().StringVar(&req.Repository, "repository", deps.DefaultRepo, "Repository slug (owner/name)")
	cmd.Flags().IntVar(&req.PRNumber, "pr", deps.DefaultPRNumber, "Pull request number (overrides positional)")
	cmd.Flags().BoolVar(&req.Local, "local", false, "Diff the local checkout instead of downloading a PR diff")
	cmd.Flags().StringVar(&req.BaseRef, "base", defaultBase, "Base reference for --local diffs")
	cmd.Flags().BoolVar(&req.IncludeUncommitted, "include-uncommitted", false, "Include uncommitted changes with --local")

	cmd.Flags().StringVar(&req.BuildDir, "build-dir", "", "Directory holding compile_commands.json (overrides config)")
	cmd.Flags().StringVar(&req.Checks, "checks", "", "clang-tidy checks glob list (overrides config)")
	cmd.Flags().StringVar(&req.ConfigFile, "config-file", "", "Explicit .clang-tidy file (overrides config)")

	cmd.Flags().StringVar(&req.OutputDir, "output", defaultOutput, "Directory to write review artifacts")
	cmd.Flags().BoolVar(&req.SplitWorkflow, "split-workflow", false, "Write artifacts only; a later post run publishes them")
	cmd.Flags().IntVar(&req.MaxComments, "max-comments", deps.DefaultMaxComments, "Maximum inline comments per run (0 = unlimited)")
	cmd.Flags().StringVar(&req.LGTMComment, "lgtm-comment", deps.DefaultLGTM, "Comment to post when nothing is wrong (empty disables)")
	cmd.Flags().BoolVar(&req.Annotations, "annotations", false, "Also publish comments as check-run annotations")
	cmd.Flags().BoolVar(&req.SARIF, "sarif", false, "Write findings as a SARIF file")
	cmd.Flags().BoolVar(&req.Report, "report", false, "Write a Markdown report of the review")
	cmd.Flags().BoolVarP(&req.AssumeYes, "yes", "y", false, "Post without interactive confirmation")

	return cmd
}

func postCommand(deps Dependencies) *cobra.Command {
	var req PostRequest

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a review written earlier by review --split-workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Repository == "" {
				return fmt.Errorf("repository not specified; use --repository or set it in config")
			}
			return deps.Poster.RunPost(cmd.Context(), req)
		},
	}

	defaultOutput := deps.DefaultOutput
	if defaultOutput == "" {
		defaultOutput = "out"
	}

	cmd.Flags().StringVar(&req.Repository, "repository", deps.DefaultRepo, "Repository slug (owner/name)")
	cmd.Flags().StringVar(&req.ArtifactDir, "artifact-dir", defaultOutput, "Directory holding the review artifacts")
	cmd.Flags().IntVar(&req.MaxComments, "max-comments", deps.DefaultMaxComments, "Maximum inline comments per run (0 = unlimited)")
	cmd.Flags().StringVar(&req.LGTMComment, "lgtm-comment", deps.DefaultLGTM, "Comment to post when nothing is wrong (empty disables)")
	cmd.Flags().BoolVar(&req.Annotations, "annotations", false, "Also publish comments as check-run annotations")
	cmd.Flags().BoolVarP(&req.AssumeYes, "yes", "y", false, "Post without interactive confirmation")

	return cmd
}

// checkSkipCommand creates the check-skip subcommand, which inspects
// commit messages and PR metadata for skip triggers.
//
// Exit codes:
//   - 0: Skip trigger found, analysis should be skipped
//   - 1: No skip trigger, analysis should proceed
func checkSkipCommand() *cobra.Command {
	var commitMessages []string
	var prTitle string
	var prDescription string

	cmd := &cobra.Command{
		Use:   "check-skip",
		Short: "Check if the analysis should be skipped",
		Long: `Check commit messages and PR metadata for skip triggers.

Supported skip trigger patterns:
  [skip clang-tidy]
  [skip-clang-tidy]

Patterns are case-insensitive and can appear anywhere in the text.

Exit codes:
  0 - Skip trigger found, analysis should be skipped
  1 - No skip trigger, analysis should proceed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := skip.Check(skip.CheckRequest{
				CommitMessages: commitMessages,
				PRTitle:        prTitle,
				PRDescription:  prDescription,
			})

			if result.ShouldSkip {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skip: %s\n", result.Reason)
				return nil // Exit 0
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "review: no skip trigger found")
			return ErrShouldReview // Exit 1
		},
	}

	cmd.Flags().StringArrayVar(&commitMessages, "commit-message", nil, "Commit message(s) to check (can be repeated)")
	cmd.Flags().StringVar(&prTitle, "pr-title", "", "PR title to check")
	cmd.Flags().StringVar(&prDescription, "pr-description", "", "PR description/body to check")

	return cmd
}
