package review

import (
	"fmt"

	"github.com/bkyoung/tidy-review/internal/domain"
)

// Cull removes candidate comments that exactly duplicate an
// already-posted comment and truncates the remainder to maxComments,
// keeping assembly order. maxComments of zero or less means no cap. When comments are dropped for size the
// review body gains a note saying how many were shown and that a new
// run will surface more. Culling is idempotent: re-running against a
// fully-posted review yields an empty comment list.
func Cull(review domain.Review, posted []domain.PostedComment, maxComments int) domain.Review {
	seen := make(map[domain.PostedComment]bool, len(posted))
	for _, p := range posted {
		seen[p] = true
	}

	kept := make([]domain.ReviewComment, 0, len(review.Comments))
	for _, comment := range review.Comments {
		key := domain.PostedComment{Path: comment.Path, Line: comment.Line, Body: comment.Body}
		if seen[key] {
			continue
		}
		kept = append(kept, comment)
	}
	review.Comments = kept

	if maxComments > 0 && len(review.Comments) > maxComments {
		review.Body += fmt.Sprintf(
			"\n\nThere were too many comments to post at once. "+
				"Showing the first %d out of %d. "+
				"Check the log or trigger a new build to see more.",
			maxComments, len(review.Comments),
		)
		review.Comments = review.Comments[:maxComments]
	}

	return review
}
