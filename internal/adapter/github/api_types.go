package github

import "github.com/bkyoung/tidy-review/internal/domain"

// GitHub Pull Request Reviews API types.
// See: https://docs.github.com/en/rest/pulls/reviews#create-a-review-for-a-pull-request

// CreateReviewRequest is the request body for POST /repos/{owner}/{repo}/pulls/{pull_number}/reviews.
// The body, event, and comments fields carry the assembled review
// payload verbatim: their names are the wire contract.
type CreateReviewRequest struct {
	// CommitID is the SHA of the commit to review (the head commit of the PR).
	CommitID string `json:"commit_id,omitempty"`

	// Body is the review summary comment.
	Body string `json:"body"`

	// Event is the review action; this tool only ever submits COMMENT.
	Event domain.ReviewEvent `json:"event"`

	// Comments are the inline comments, addressed by new-side line number.
	Comments []domain.ReviewComment `json:"comments,omitempty"`
}

// CreateReviewResponse is the response from creating a review.
type CreateReviewResponse struct {
	ID          int64  `json:"id"`
	NodeID      string `json:"node_id"`
	User        User   `json:"user"`
	Body        string `json:"body"`
	State       string `json:"state"` // PENDING, APPROVED, CHANGES_REQUESTED, COMMENTED, DISMISSED
	HTMLURL     string `json:"html_url"`
	SubmittedAt string `json:"submitted_at"`
}

// PullRequest is the response from GET /repos/{owner}/{repo}/pulls/{pull_number}.
type PullRequest struct {
	Number int    `json:"number"`
	State  string `json:"state"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Head   Ref    `json:"head"`
	Base   Ref    `json:"base"`
}

// Ref is one side of a pull request.
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// PullRequestComment is one element of GET /repos/{owner}/{repo}/pulls/{pull_number}/comments.
type PullRequestComment struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
	User User   `json:"user"`
}

// IssueComment is one element of GET /repos/{owner}/{repo}/issues/{issue_number}/comments.
type IssueComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User User   `json:"user"`
}

// User represents a GitHub user in API responses.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
	Type  string `json:"type"` // "User" or "Bot"
}

// CheckRunRequest is the request body for POST /repos/{owner}/{repo}/check-runs.
type CheckRunRequest struct {
	Name       string          `json:"name"`
	HeadSHA    string          `json:"head_sha"`
	Status     string          `json:"status"`
	Conclusion string          `json:"conclusion,omitempty"`
	Output     *CheckRunOutput `json:"output,omitempty"`
}

// CheckRunOutput carries the check-run summary and annotations.
type CheckRunOutput struct {
	Title       string       `json:"title"`
	Summary     string       `json:"summary"`
	Text        string       `json:"text,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Annotation is one inline check-run annotation.
type Annotation struct {
	Path            string `json:"path"`
	StartLine       int    `json:"start_line"`
	EndLine         int    `json:"end_line"`
	AnnotationLevel string `json:"annotation_level"`
	Title           string `json:"title"`
	Message         string `json:"message"`
}

// ErrorResponse represents an error response from the GitHub API.
type ErrorResponse struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
	Errors           []struct {
		Resource string `json:"resource"`
		Field    string `json:"field"`
		Code     string `json:"code"`
		Message  string `json:"message"`
	} `json:"errors,omitempty"`
}
