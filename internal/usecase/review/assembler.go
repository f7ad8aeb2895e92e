package review

import (
	"context"
	"errors"

	"github.com/bkyoung/tidy-review/internal/diff"
	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/index"
)

// ReviewBody is the fixed summary line used for every assembled
// review.
const ReviewBody = "clang-tidy made some suggestions"

// Assembler builds one candidate comment per visible diagnostic.
type Assembler struct {
	offsets  *index.Offsets
	lineMap  diff.LineMap
	renderer *Renderer
	logger   Logger
}

// NewAssembler constructs an Assembler. logger may be nil.
func NewAssembler(offsets *index.Offsets, lineMap diff.LineMap, renderer *Renderer, logger Logger) *Assembler {
	return &Assembler{offsets: offsets, lineMap: lineMap, renderer: renderer, logger: logger}
}

// Assemble renders every diagnostic into a review comment and collects
// the full review payload. Diagnostics without a file path are
// tool-internal and skipped. Diagnostics whose anchor line is not
// visible in the diff are skipped with a warning: one stray
// diagnostic must never fail the run. A missing source file does fail
// the run, since its absence invalidates every derived line number.
func (a *Assembler) Assemble(ctx context.Context, diagnostics []domain.Diagnostic) (domain.Review, error) {
	comments := []domain.ReviewComment{}

	for _, diag := range diagnostics {
		if diag.FilePath == "" {
			continue
		}

		body, endLine, err := a.renderer.Render(diag)
		if errors.Is(err, ErrOffsetPastEOF) {
			a.warn(ctx, "skipping diagnostic with offset past end of file", map[string]interface{}{
				"path":   diag.FilePath,
				"offset": diag.FileOffset,
			})
			continue
		}
		if err != nil {
			return domain.Review{}, err
		}
		// Review API lines are 1-indexed.
		anchorLine := endLine + 1

		diagLine, err := a.offsets.LineOf(diag.FilePath, diag.FileOffset)
		if err != nil {
			return domain.Review{}, err
		}
		startLine := diagLine + 1

		relPath := a.renderer.tryRelative(diag.FilePath)
		if _, visible := a.lineMap.Position(relPath, anchorLine); !visible {
			a.warn(ctx, "skipping comment for line not in diff", map[string]interface{}{
				"path": relPath,
				"line": anchorLine,
			})
			continue
		}

		comment := domain.ReviewComment{
			Path: relPath,
			Body: body,
			Side: "RIGHT",
			Line: anchorLine,
		}
		// A multiline suggestion needs the span start as well.
		if anchorLine != startLine {
			comment.StartSide = "RIGHT"
			comment.StartLine = startLine
		}
		comments = append(comments, comment)
	}

	return domain.Review{
		Body:     ReviewBody,
		Event:    domain.EventComment,
		Comments: comments,
	}, nil
}

func (a *Assembler) warn(ctx context.Context, message string, fields map[string]interface{}) {
	if a.logger != nil {
		a.logger.LogWarning(ctx, message, fields)
	}
}
