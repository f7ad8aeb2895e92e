package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for review history.
// The engine records what it posted so that later runs on the same
// pull request can deduplicate even when the API listing is
// unavailable or truncated.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Posted comment history
	SavePostedComments(ctx context.Context, runID string, comments []PostedCommentRecord) error
	ListPostedComments(ctx context.Context, repository string, prNumber int) ([]PostedCommentRecord, error)

	// Utility
	Close() error
}

// Run represents a single review execution against a pull request.
type Run struct {
	RunID      string
	Timestamp  time.Time
	Repository string
	PRNumber   int
	CommitSHA  string
	Comments   int
}

// PostedCommentRecord is one inline comment the engine posted.
type PostedCommentRecord struct {
	Repository string
	PRNumber   int
	Path       string
	Line       int
	Body       string
	PostedAt   time.Time
}
