package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewer struct {
	called bool
	req    ReviewRequest
	err    error
}

func (f *fakeReviewer) RunReview(ctx context.Context, req ReviewRequest) error {
	f.called = true
	f.req = req
	return f.err
}

type fakePoster struct {
	called bool
	req    PostRequest
	err    error
}

func (f *fakePoster) RunPost(ctx context.Context, req PostRequest) error {
	f.called = true
	f.req = req
	return f.err
}

func execute(t *testing.T, deps Dependencies, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	if deps.Args.OutWriter == nil {
		deps.Args.OutWriter = &out
	}
	if deps.Args.ErrWriter == nil {
		deps.Args.ErrWriter = &out
	}

	root := NewRootCommand(deps)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, Dependencies{Version: "v1.2.3"}, "--version")

	assert.ErrorIs(t, err, ErrVersionRequested)
	assert.Contains(t, out, "v1.2.3")
}

func TestVersionFlagDefault(t *testing.T) {
	out, err := execute(t, Dependencies{}, "-v")

	assert.ErrorIs(t, err, ErrVersionRequested)
	assert.Contains(t, out, "v0.0.0")
}

func TestReviewRequiresRepository(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{Reviewer: reviewer}, "review", "7")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository not specified")
	assert.False(t, reviewer.called)
}

func TestReviewRequiresPRNumber(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{Reviewer: reviewer}, "review", "--repository", "acme/widgets")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pull request number not specified")
	assert.False(t, reviewer.called)
}

func TestReviewPositionalPRNumber(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{Reviewer: reviewer},
		"review", "42", "--repository", "acme/widgets")

	require.NoError(t, err)
	require.True(t, reviewer.called)
	assert.Equal(t, "acme/widgets", reviewer.req.Repository)
	assert.Equal(t, 42, reviewer.req.PRNumber)
}

func TestReviewInvalidPRNumber(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{Reviewer: reviewer},
		"review", "abc", "--repository", "acme/widgets")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pull request number")
}

func TestReviewFlagPlumbing(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{Reviewer: reviewer},
		"review", "7",
		"--repository", "acme/widgets",
		"--build-dir", "build",
		"--checks", "-*,readability-*",
		"--output", "artifacts",
		"--split-workflow",
		"--max-comments", "5",
		"--lgtm-comment", "looks good",
		"--annotations",
		"--sarif",
		"--report",
		"--yes",
	)

	require.NoError(t, err)
	req := reviewer.req
	assert.Equal(t, "build", req.BuildDir)
	assert.Equal(t, "-*,readability-*", req.Checks)
	assert.Equal(t, "artifacts", req.OutputDir)
	assert.True(t, req.SplitWorkflow)
	assert.Equal(t, 5, req.MaxComments)
	assert.Equal(t, "looks good", req.LGTMComment)
	assert.True(t, req.Annotations)
	assert.True(t, req.SARIF)
	assert.True(t, req.Report)
	assert.True(t, req.AssumeYes)
}

func TestReviewLocalSkipsRemoteValidation(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{Reviewer: reviewer},
		"review", "--local", "--base", "develop", "--include-uncommitted")

	require.NoError(t, err)
	require.True(t, reviewer.called)
	assert.True(t, reviewer.req.Local)
	assert.Equal(t, "develop", reviewer.req.BaseRef)
	assert.True(t, reviewer.req.IncludeUncommitted)
}

func TestReviewDefaultsFromDependencies(t *testing.T) {
	reviewer := &fakeReviewer{}

	_, err := execute(t, Dependencies{
		Reviewer:           reviewer,
		DefaultRepo:        "acme/widgets",
		DefaultPRNumber:    9,
		DefaultMaxComments: 25,
		DefaultLGTM:        "all clean",
	}, "review")

	require.NoError(t, err)
	assert.Equal(t, "acme/widgets", reviewer.req.Repository)
	assert.Equal(t, 9, reviewer.req.PRNumber)
	assert.Equal(t, "main", reviewer.req.BaseRef)
	assert.Equal(t, "out", reviewer.req.OutputDir)
	assert.Equal(t, 25, reviewer.req.MaxComments)
	assert.Equal(t, "all clean", reviewer.req.LGTMComment)
}

func TestPostFlagPlumbing(t *testing.T) {
	poster := &fakePoster{}

	_, err := execute(t, Dependencies{Poster: poster},
		"post",
		"--repository", "acme/widgets",
		"--artifact-dir", "artifacts",
		"--max-comments", "3",
		"--annotations",
		"--yes",
	)

	require.NoError(t, err)
	req := poster.req
	assert.Equal(t, "acme/widgets", req.Repository)
	assert.Equal(t, "artifacts", req.ArtifactDir)
	assert.Equal(t, 3, req.MaxComments)
	assert.True(t, req.Annotations)
	assert.True(t, req.AssumeYes)
}

func TestPostRequiresRepository(t *testing.T) {
	poster := &fakePoster{}

	_, err := execute(t, Dependencies{Poster: poster}, "post")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "repository not specified")
	assert.False(t, poster.called)
}

func TestCheckSkipTriggerFound(t *testing.T) {
	out, err := execute(t, Dependencies{},
		"check-skip", "--commit-message", "wip [skip clang-tidy]")

	require.NoError(t, err)
	assert.Contains(t, out, "skip: commit message")
}

func TestCheckSkipPRTitle(t *testing.T) {
	out, err := execute(t, Dependencies{},
		"check-skip", "--pr-title", "[skip-clang-tidy] refactor")

	require.NoError(t, err)
	assert.Contains(t, out, "skip: PR title")
}

func TestCheckSkipNoTrigger(t *testing.T) {
	out, err := execute(t, Dependencies{},
		"check-skip", "--commit-message", "fix warning handling")

	assert.ErrorIs(t, err, ErrShouldReview)
	assert.Contains(t, out, "review: no skip trigger found")
}

func TestRunnerErrorPropagates(t *testing.T) {
	reviewer := &fakeReviewer{err: assert.AnError}

	_, err := execute(t, Dependencies{Reviewer: reviewer},
		"review", "7", "--repository", "acme/widgets")

	assert.ErrorIs(t, err, assert.AnError)
}
