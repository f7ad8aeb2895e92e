// Package post provides use cases for publishing assembled reviews to
// GitHub.
package post

import (
	"context"
	"time"

	"github.com/bkyoung/tidy-review/internal/adapter/github"
	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/store"
	"github.com/bkyoung/tidy-review/internal/usecase/review"
)

// ReviewClient defines the interface for interacting with GitHub
// pull requests. This interface allows for mocking in tests.
type ReviewClient interface {
	ListPullRequestComments(ctx context.Context, owner, repo string, pullNumber int) ([]github.PullRequestComment, error)
	CreateReview(ctx context.Context, owner, repo string, pullNumber int, commitSHA string, review domain.Review) (*github.CreateReviewResponse, error)
	ListIssueComments(ctx context.Context, owner, repo string, pullNumber int) ([]github.IssueComment, error)
	CreateIssueComment(ctx context.Context, owner, repo string, pullNumber int, body string) error
	CreateCheckRun(ctx context.Context, owner, repo string, run github.CheckRunRequest) error
}

// History records posted comments across runs so deduplication works
// even when the API listing is truncated. Optional.
type History interface {
	CreateRun(ctx context.Context, run store.Run) error
	SavePostedComments(ctx context.Context, runID string, comments []store.PostedCommentRecord) error
	ListPostedComments(ctx context.Context, repository string, prNumber int) ([]store.PostedCommentRecord, error)
}

// Poster publishes an assembled review: deduplicates against comments
// already on the pull request, enforces the comment budget, and posts
// either the review or an all-clear comment.
type Poster struct {
	client  ReviewClient
	history History
	logger  review.Logger
}

// NewPoster creates a new Poster with the given client. history may be
// nil to disable local run recording.
func NewPoster(client ReviewClient, history History, logger review.Logger) *Poster {
	return &Poster{
		client:  client,
		history: history,
		logger:  logger,
	}
}

// PostRequest contains all data needed to publish a review.
type PostRequest struct {
	// Owner is the GitHub repository owner (user or organization).
	Owner string

	// Repo is the GitHub repository name.
	Repo string

	// PullNumber is the PR number.
	PullNumber int

	// CommitSHA is the head commit SHA of the PR. Optional; GitHub
	// defaults to the current head when empty.
	CommitSHA string

	// Review is the assembled payload, before deduplication.
	Review domain.Review

	// MaxComments caps the number of inline comments per run.
	// Zero or negative means unlimited.
	MaxComments int

	// LGTMComment is posted as a conversation comment when the review
	// has no comments at all. Empty disables the all-clear comment.
	LGTMComment string

	// Annotations additionally publishes the comments as check-run
	// annotations.
	Annotations bool

	// AnnotationsName is the check run name; used when Annotations is set.
	AnnotationsName string
}

// PostResult contains the result of publishing a review.
type PostResult struct {
	// ReviewID is the GitHub review ID, zero when nothing was posted.
	ReviewID int64

	// CommentsPosted is the number of inline comments posted.
	CommentsPosted int

	// CommentsSkipped is the number of comments dropped as duplicates
	// or over the budget.
	CommentsSkipped int

	// LGTM indicates the all-clear path was taken.
	LGTM bool
}

// Post publishes the review described by req.
func (p *Poster) Post(ctx context.Context, req PostRequest) (*PostResult, error) {
	if len(req.Review.Comments) == 0 {
		lgtm, err := p.postLGTM(ctx, req)
		if err != nil {
			return nil, err
		}
		// A clean run still reports its check run, so the PR status
		// shows the analysis passed.
		p.postCheckRun(ctx, req, nil)
		return &PostResult{LGTM: lgtm}, nil
	}

	posted, err := p.gatherPosted(ctx, req)
	if err != nil {
		return nil, err
	}

	total := len(req.Review.Comments)
	culled := review.Cull(req.Review, posted, req.MaxComments)
	skipped := total - len(culled.Comments)

	if len(culled.Comments) == 0 {
		p.logInfo(ctx, "all comments already posted, nothing to do", map[string]interface{}{
			"total": total,
		})
		return &PostResult{CommentsSkipped: skipped}, nil
	}

	resp, err := p.client.CreateReview(ctx, req.Owner, req.Repo, req.PullNumber, req.CommitSHA, culled)
	if err != nil {
		return nil, err
	}

	p.recordRun(ctx, req, culled)

	p.postCheckRun(ctx, req, culled.Comments)

	return &PostResult{
		ReviewID:        resp.ID,
		CommentsPosted:  len(culled.Comments),
		CommentsSkipped: skipped,
	}, nil
}

// postCheckRun publishes the check run when annotations are enabled.
// Best effort: the review or all-clear comment is already posted.
func (p *Poster) postCheckRun(ctx context.Context, req PostRequest, comments []domain.ReviewComment) {
	if !req.Annotations {
		return
	}
	run := github.BuildCheckRun(req.AnnotationsName, req.CommitSHA, comments)
	if err := p.client.CreateCheckRun(ctx, req.Owner, req.Repo, run); err != nil {
		p.logWarning(ctx, "failed to create check run", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// gatherPosted merges the comments currently on the PR with the local
// history, when one is configured.
func (p *Poster) gatherPosted(ctx context.Context, req PostRequest) ([]domain.PostedComment, error) {
	apiComments, err := p.client.ListPullRequestComments(ctx, req.Owner, req.Repo, req.PullNumber)
	if err != nil {
		return nil, err
	}
	posted := github.ToPostedComments(apiComments)

	if p.history == nil {
		return posted, nil
	}

	records, err := p.history.ListPostedComments(ctx, repository(req), req.PullNumber)
	if err != nil {
		p.logWarning(ctx, "failed to read posted-comment history", map[string]interface{}{
			"error": err.Error(),
		})
		return posted, nil
	}

	seen := make(map[domain.PostedComment]bool, len(posted))
	for _, c := range posted {
		seen[c] = true
	}
	for _, r := range records {
		c := domain.PostedComment{Path: r.Path, Line: r.Line, Body: r.Body}
		if !seen[c] {
			seen[c] = true
			posted = append(posted, c)
		}
	}
	return posted, nil
}

// postLGTM posts the all-clear conversation comment, unless an
// identical one is already present.
func (p *Poster) postLGTM(ctx context.Context, req PostRequest) (bool, error) {
	if req.LGTMComment == "" {
		return false, nil
	}

	existing, err := p.client.ListIssueComments(ctx, req.Owner, req.Repo, req.PullNumber)
	if err != nil {
		return false, err
	}
	for _, c := range existing {
		if c.Body == req.LGTMComment {
			p.logInfo(ctx, "all-clear comment already present", nil)
			return true, nil
		}
	}

	if err := p.client.CreateIssueComment(ctx, req.Owner, req.Repo, req.PullNumber, req.LGTMComment); err != nil {
		return false, err
	}
	return true, nil
}

// recordRun saves the run and its comments to the local history.
// Failures are logged, not returned: the review is already posted.
func (p *Poster) recordRun(ctx context.Context, req PostRequest, posted domain.Review) {
	if p.history == nil {
		return
	}

	now := time.Now()
	runID := store.GenerateRunID(now, repository(req), req.PullNumber)

	run := store.Run{
		RunID:      runID,
		Timestamp:  now,
		Repository: repository(req),
		PRNumber:   req.PullNumber,
		CommitSHA:  req.CommitSHA,
		Comments:   len(posted.Comments),
	}
	if err := p.history.CreateRun(ctx, run); err != nil {
		p.logWarning(ctx, "failed to record run", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	records := make([]store.PostedCommentRecord, 0, len(posted.Comments))
	for _, c := range posted.Comments {
		records = append(records, store.PostedCommentRecord{
			Repository: repository(req),
			PRNumber:   req.PullNumber,
			Path:       c.Path,
			Line:       c.Line,
			Body:       c.Body,
			PostedAt:   now,
		})
	}
	if err := p.history.SavePostedComments(ctx, runID, records); err != nil {
		p.logWarning(ctx, "failed to record posted comments", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func repository(req PostRequest) string {
	return req.Owner + "/" + req.Repo
}

func (p *Poster) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.LogInfo(ctx, msg, fields)
	}
}

func (p *Poster) logWarning(ctx context.Context, msg string, fields map[string]interface{}) {
	if p.logger != nil {
		p.logger.LogWarning(ctx, msg, fields)
	}
}
