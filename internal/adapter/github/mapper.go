package github

import (
	"fmt"

	"github.com/bkyoung/tidy-review/internal/domain"
)

// MaxAnnotations is the per-request annotation limit imposed by the
// check-runs API.
const MaxAnnotations = 10

// ToPostedComments converts API review comments to the domain
// representation used for deduplication.
func ToPostedComments(comments []PullRequestComment) []domain.PostedComment {
	posted := make([]domain.PostedComment, 0, len(comments))
	for _, c := range comments {
		posted = append(posted, domain.PostedComment{
			Path: c.Path,
			Line: c.Line,
			Body: c.Body,
		})
	}
	return posted
}

// BuildCheckRun packages review comments into a check run with
// inline annotations, truncated to the API limit.
func BuildCheckRun(name, headSHA string, comments []domain.ReviewComment) CheckRunRequest {
	annotations := make([]Annotation, 0, len(comments))
	for _, c := range comments {
		if len(annotations) >= MaxAnnotations {
			break
		}
		startLine := c.Line
		if c.StartLine != 0 {
			startLine = c.StartLine
		}
		annotations = append(annotations, Annotation{
			Path:            c.Path,
			StartLine:       startLine,
			EndLine:         c.Line,
			AnnotationLevel: "warning",
			Title:           "clang-tidy",
			Message:         c.Body,
		})
	}

	summary := fmt.Sprintf("clang-tidy found %d warnings", len(comments))
	if len(comments) > MaxAnnotations {
		summary = fmt.Sprintf("clang-tidy found %d warnings (showing the first %d as annotations)",
			len(comments), MaxAnnotations)
	}

	// A completed check run must carry a conclusion. Warnings are
	// advisory, so they conclude neutral rather than failure.
	conclusion := "success"
	if len(comments) > 0 {
		conclusion = "neutral"
	}

	return CheckRunRequest{
		Name:       name,
		HeadSHA:    headSHA,
		Status:     "completed",
		Conclusion: conclusion,
		Output: &CheckRunOutput{
			Title:       "clang-tidy review",
			Summary:     summary,
			Annotations: annotations,
		},
	}
}
