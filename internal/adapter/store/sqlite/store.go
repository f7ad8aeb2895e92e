package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/tidy-review/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each review run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		pr_number INTEGER NOT NULL,
		commit_sha TEXT NOT NULL,
		comments INTEGER NOT NULL DEFAULT 0
	);

	-- Inline comments the engine posted
	CREATE TABLE IF NOT EXISTS posted_comments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		repository TEXT NOT NULL,
		pr_number INTEGER NOT NULL,
		path TEXT NOT NULL,
		line INTEGER NOT NULL,
		body TEXT NOT NULL,
		posted_at INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_posted_pr ON posted_comments(repository, pr_number);
	CREATE INDEX IF NOT EXISTS idx_posted_run ON posted_comments(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new review run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, repository, pr_number, commit_sha, comments)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.Repository,
		run.PRNumber,
		run.CommitSHA,
		run.Comments,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, repository, pr_number, commit_sha, comments
		FROM runs
		WHERE run_id = ?
	`

	var run store.Run
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.Repository,
		&run.PRNumber,
		&run.CommitSHA,
		&run.Comments,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run not found: %s", runID)
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, timestamp, repository, pr_number, commit_sha, comments
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var timestamp int64

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.Repository,
			&run.PRNumber,
			&run.CommitSHA,
			&run.Comments,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SavePostedComments stores the comments posted by a run in a single
// transaction.
func (s *Store) SavePostedComments(ctx context.Context, runID string, comments []store.PostedCommentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posted_comments (run_id, repository, pr_number, path, line, body, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, comment := range comments {
		if _, err := stmt.ExecContext(ctx,
			runID,
			comment.Repository,
			comment.PRNumber,
			comment.Path,
			comment.Line,
			comment.Body,
			comment.PostedAt.Unix(),
		); err != nil {
			return fmt.Errorf("failed to insert posted comment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPostedComments retrieves every comment previously posted on the
// given pull request.
func (s *Store) ListPostedComments(ctx context.Context, repository string, prNumber int) ([]store.PostedCommentRecord, error) {
	query := `
		SELECT repository, pr_number, path, line, body, posted_at
		FROM posted_comments
		WHERE repository = ? AND pr_number = ?
		ORDER BY posted_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, repository, prNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to list posted comments: %w", err)
	}
	defer rows.Close()

	var comments []store.PostedCommentRecord
	for rows.Next() {
		var comment store.PostedCommentRecord
		var postedAt int64

		if err := rows.Scan(
			&comment.Repository,
			&comment.PRNumber,
			&comment.Path,
			&comment.Line,
			&comment.Body,
			&postedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan posted comment: %w", err)
		}

		comment.PostedAt = time.Unix(postedAt, 0)
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted comments: %w", err)
	}

	return comments, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
