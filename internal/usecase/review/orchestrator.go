package review

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bkyoung/tidy-review/internal/diff"
	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/filter"
	"github.com/bkyoung/tidy-review/internal/index"
	"github.com/bkyoung/tidy-review/internal/tidy"
)

// Analyzer runs clang-tidy over the selected files and exports fixes.
type Analyzer interface {
	Run(ctx context.Context, input tidy.RunInput) error
}

// Redactor scrubs secrets from comment bodies before they leave the
// process. Review comments quote source lines verbatim.
type Redactor interface {
	Redact(input string) (string, error)
}

// OrchestratorDeps wires the orchestrator dependencies.
type OrchestratorDeps struct {
	// Analyzer is optional: when nil, the fixes file is expected to
	// exist already (produced by an earlier step).
	Analyzer Analyzer

	// Redactor is optional secret scrubbing applied to every comment
	// body in the assembled review.
	Redactor Redactor

	// Logger is optional structured logging for warnings and info.
	Logger Logger
}

// Request describes one review run.
type Request struct {
	// Diff is the changeset under review.
	Diff domain.Diff

	// Include and Exclude are file glob patterns.
	Include []string
	Exclude []string

	// WorkDir is the repository checkout root. Diagnostic paths are
	// reported relative to it.
	WorkDir string

	// BuildDir holds compile_commands.json.
	BuildDir string

	// Checks and ConfigFile configure clang-tidy; see tidy.Runner.
	Checks     string
	ConfigFile string

	// FixesPath is where the exported fixes are written and read.
	// Empty uses tidy.FixesFile in WorkDir.
	FixesPath string
}

// Result captures the orchestrator outcome.
type Result struct {
	// Review is the assembled payload, ready for posting.
	Review domain.Review

	// Files are the changed files that were analyzed.
	Files []string

	// Diagnostics is the number of findings loaded from the fixes file.
	Diagnostics int
}

// Orchestrator implements the review flow: select changed files, run
// the analysis, and assemble findings into a postable review.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Review executes one analysis run over the given changeset.
func (o *Orchestrator) Review(ctx context.Context, req Request) (Result, error) {
	if req.WorkDir == "" {
		return Result{}, errors.New("work dir is required")
	}

	fixesPath := req.FixesPath
	if fixesPath == "" {
		fixesPath = filepath.Join(req.WorkDir, tidy.FixesFile)
	}

	files := o.selectFiles(ctx, req)
	if len(files) == 0 && o.deps.Analyzer != nil {
		o.logInfo(ctx, "no changed files match the configured patterns", nil)
		return Result{Review: emptyReview()}, nil
	}

	if o.deps.Analyzer != nil {
		lineFilter, err := tidy.LineFilter(req.Diff, files)
		if err != nil {
			return Result{}, err
		}
		input := tidy.RunInput{
			LineFilter: lineFilter,
			Checks:     req.Checks,
			ConfigFile: req.ConfigFile,
			Files:      files,
			FixesPath:  fixesPath,
		}
		if err := o.deps.Analyzer.Run(ctx, input); err != nil {
			return Result{}, err
		}
	}

	fixes, err := tidy.LoadFixes(fixesPath, req.BuildDir)
	if err != nil {
		return Result{}, err
	}

	lineMap := diff.BuildLineMap(req.Diff)
	offsets := index.NewOffsets()
	renderer := NewRenderer(offsets, req.WorkDir)
	assembler := NewAssembler(offsets, lineMap, renderer, o.deps.Logger)

	review, err := assembler.Assemble(ctx, fixes.Diagnostics)
	if err != nil {
		return Result{}, err
	}

	if err := o.redact(&review); err != nil {
		return Result{}, err
	}

	return Result{
		Review:      review,
		Files:       files,
		Diagnostics: len(fixes.Diagnostics),
	}, nil
}

// selectFiles applies the include/exclude patterns to the non-deleted
// files of the changeset.
func (o *Orchestrator) selectFiles(ctx context.Context, req Request) []string {
	changed := make([]string, 0, len(req.Diff.Files))
	for _, f := range req.Diff.Files {
		if f.Status == domain.FileStatusDeleted {
			continue
		}
		changed = append(changed, f.Path)
	}

	files := filter.Files(changed, req.Include, req.Exclude)
	if len(files) < len(changed) {
		o.logInfo(ctx, "filtered changed files", map[string]interface{}{
			"changed":  len(changed),
			"selected": len(files),
		})
	}
	return files
}

// redact scrubs secrets from every comment body in place.
func (o *Orchestrator) redact(review *domain.Review) error {
	if o.deps.Redactor == nil {
		return nil
	}
	for i := range review.Comments {
		clean, err := o.deps.Redactor.Redact(review.Comments[i].Body)
		if err != nil {
			return fmt.Errorf("failed to redact comment for %s: %w", review.Comments[i].Path, err)
		}
		review.Comments[i].Body = clean
	}
	return nil
}

func emptyReview() domain.Review {
	return domain.Review{
		Body:  ReviewBody,
		Event: domain.EventComment,
	}
}

func (o *Orchestrator) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, msg, fields)
	}
}
