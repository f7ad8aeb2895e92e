package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apihttp "github.com/bkyoung/tidy-review/internal/adapter/api/http"
	"github.com/bkyoung/tidy-review/internal/adapter/cli"
	"github.com/bkyoung/tidy-review/internal/adapter/git"
	githubadapter "github.com/bkyoung/tidy-review/internal/adapter/github"
	outputjson "github.com/bkyoung/tidy-review/internal/adapter/output/json"
	"github.com/bkyoung/tidy-review/internal/adapter/output/markdown"
	"github.com/bkyoung/tidy-review/internal/adapter/output/sarif"
	"github.com/bkyoung/tidy-review/internal/adapter/store/sqlite"
	"github.com/bkyoung/tidy-review/internal/config"
	"github.com/bkyoung/tidy-review/internal/diff"
	"github.com/bkyoung/tidy-review/internal/domain"
	"github.com/bkyoung/tidy-review/internal/redaction"
	"github.com/bkyoung/tidy-review/internal/tidy"
	"github.com/bkyoung/tidy-review/internal/usecase/post"
	"github.com/bkyoung/tidy-review/internal/usecase/review"
)

// app wires the adapters behind the CLI commands.
type app struct {
	cfg          config.Config
	logger       apihttp.Logger
	reviewLogger review.Logger
}

var _ cli.ReviewRunner = (*app)(nil)
var _ cli.PostRunner = (*app)(nil)
var _ review.Redactor = (*redaction.Engine)(nil)

// RunReview implements cli.ReviewRunner.
func (a *app) RunReview(ctx context.Context, req cli.ReviewRequest) error {
	workDir := a.cfg.Git.RepositoryDir
	if workDir == "" {
		workDir = "."
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("resolve work dir: %w", err)
	}

	changeset, err := a.changeset(ctx, req, workDir)
	if err != nil {
		return err
	}

	buildDir := firstNonEmpty(req.BuildDir, a.cfg.ClangTidy.BuildDir, ".")
	runner := tidy.NewRunner(firstNonEmpty(a.cfg.ClangTidy.Binary, "clang-tidy"), buildDir)

	orchestrator := review.NewOrchestrator(review.OrchestratorDeps{
		Analyzer: runner,
		Redactor: redaction.NewEngine(),
		Logger:   a.reviewLogger,
	})

	result, err := orchestrator.Review(ctx, review.Request{
		Diff:       changeset,
		Include:    a.cfg.Files.Include,
		Exclude:    a.cfg.Files.Exclude,
		WorkDir:    workDir,
		BuildDir:   buildDir,
		Checks:     firstNonEmpty(req.Checks, a.cfg.ClangTidy.Checks),
		ConfigFile: firstNonEmpty(req.ConfigFile, a.cfg.ClangTidy.ConfigFile),
		FixesPath:  a.cfg.ClangTidy.FixesFile,
	})
	if err != nil {
		return err
	}

	if err := a.writeArtifacts(ctx, req, result); err != nil {
		return err
	}

	if req.Local || req.SplitWorkflow {
		fmt.Printf("assembled %d comments from %d diagnostics (not posting)\n",
			len(result.Review.Comments), result.Diagnostics)
		return nil
	}

	return a.publish(ctx, publishParams{
		Repository:  req.Repository,
		PRNumber:    req.PRNumber,
		Review:      result.Review,
		MaxComments: req.MaxComments,
		LGTMComment: req.LGTMComment,
		Annotations: req.Annotations,
		AssumeYes:   req.AssumeYes,
	})
}

// RunPost implements cli.PostRunner.
func (a *app) RunPost(ctx context.Context, req cli.PostRequest) error {
	assembled, err := outputjson.LoadReview(req.ArtifactDir)
	if err != nil {
		return err
	}
	metadata, err := outputjson.LoadMetadata(req.ArtifactDir)
	if err != nil {
		return err
	}

	return a.publish(ctx, publishParams{
		Repository:  req.Repository,
		PRNumber:    metadata.PRNumber,
		Review:      assembled,
		MaxComments: req.MaxComments,
		LGTMComment: req.LGTMComment,
		Annotations: req.Annotations,
		AssumeYes:   req.AssumeYes,
	})
}

// changeset produces the diff under review, either from the GitHub API
// or from the local checkout.
func (a *app) changeset(ctx context.Context, req cli.ReviewRequest, workDir string) (domain.Diff, error) {
	if req.Local {
		engine := git.NewEngine(workDir)
		return engine.Diff(ctx, req.BaseRef, "HEAD", req.IncludeUncommitted)
	}

	owner, name, err := splitRepository(req.Repository)
	if err != nil {
		return domain.Diff{}, err
	}
	raw, err := a.githubClient().GetPullRequestDiff(ctx, owner, name, req.PRNumber)
	if err != nil {
		return domain.Diff{}, err
	}
	return diff.Split(raw), nil
}

func (a *app) writeArtifacts(ctx context.Context, req cli.ReviewRequest, result review.Result) error {
	writer := outputjson.NewWriter()
	if _, err := writer.WriteReview(ctx, req.OutputDir, result.Review); err != nil {
		return err
	}
	if !req.Local {
		if _, err := writer.WriteMetadata(ctx, req.OutputDir, domain.Metadata{PRNumber: req.PRNumber}); err != nil {
			return err
		}
	}

	if req.Report {
		reportWriter := markdown.NewWriter(timestamp)
		path, err := reportWriter.Write(ctx, markdown.Artifact{
			OutputDir:  req.OutputDir,
			Repository: req.Repository,
			PRNumber:   req.PRNumber,
			Review:     result.Review,
		})
		if err != nil {
			return err
		}
		log.Printf("wrote report to %s", path)
	}

	if req.SARIF {
		sarifWriter := sarif.NewWriter()
		path, err := sarifWriter.Write(ctx, sarif.Artifact{
			OutputDir: req.OutputDir,
			Findings:  sarifFindings(result.Review),
		})
		if err != nil {
			return err
		}
		log.Printf("wrote SARIF to %s", path)
	}

	return nil
}

type publishParams struct {
	Repository  string
	PRNumber    int
	Review      domain.Review
	MaxComments int
	LGTMComment string
	Annotations bool
	AssumeYes   bool
}

func (a *app) publish(ctx context.Context, params publishParams) error {
	owner, name, err := splitRepository(params.Repository)
	if err != nil {
		return err
	}
	if params.PRNumber <= 0 {
		return fmt.Errorf("pull request number is required to post")
	}
	if a.cfg.GitHub.Token == "" {
		return fmt.Errorf("no GitHub token configured; set GITHUB_TOKEN or github.token")
	}

	if !params.AssumeYes && post.IsInteractive() {
		if !confirm(fmt.Sprintf("Post %d comments to %s#%d?", len(params.Review.Comments), params.Repository, params.PRNumber)) {
			fmt.Println("aborted")
			return nil
		}
	}

	client := a.githubClient()

	pr, err := client.GetPullRequest(ctx, owner, name, params.PRNumber)
	if err != nil {
		return err
	}

	var history post.History
	if a.cfg.Store.Enabled {
		if store := a.openStore(); store != nil {
			defer store.Close()
			history = store
		}
	}

	poster := post.NewPoster(client, history, a.reviewLogger)
	result, err := poster.Post(ctx, post.PostRequest{
		Owner:           owner,
		Repo:            name,
		PullNumber:      params.PRNumber,
		CommitSHA:       pr.Head.SHA,
		Review:          params.Review,
		MaxComments:     params.MaxComments,
		LGTMComment:     params.LGTMComment,
		Annotations:     params.Annotations,
		AnnotationsName: a.cfg.Review.AnnotationsName,
	})
	if err != nil {
		return err
	}

	switch {
	case result.LGTM:
		fmt.Println("nothing to report, posted all-clear comment")
	case result.CommentsPosted == 0:
		fmt.Printf("nothing new to post (%d duplicates skipped)\n", result.CommentsSkipped)
	default:
		fmt.Printf("posted review %d with %d comments (%d skipped)\n",
			result.ReviewID, result.CommentsPosted, result.CommentsSkipped)
	}
	return nil
}

func (a *app) githubClient() *githubadapter.Client {
	client := githubadapter.NewClient(a.cfg.GitHub.Token)
	if a.cfg.GitHub.APIURL != "" {
		client.SetBaseURL(a.cfg.GitHub.APIURL)
	}
	if d, err := time.ParseDuration(a.cfg.HTTP.Timeout); err == nil && d > 0 {
		client.SetTimeout(d)
	}
	if a.cfg.HTTP.MaxRetries > 0 {
		client.SetMaxRetries(a.cfg.HTTP.MaxRetries)
	}
	if d, err := time.ParseDuration(a.cfg.HTTP.InitialBackoff); err == nil && d > 0 {
		client.SetInitialBackoff(d)
	}
	if a.logger != nil {
		client.SetLogger(a.logger)
	}
	return client
}

func (a *app) openStore() *sqlite.Store {
	storeDir := filepath.Dir(a.cfg.Store.Path)
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		log.Printf("warning: failed to create store directory: %v", err)
		return nil
	}
	store, err := sqlite.NewStore(a.cfg.Store.Path)
	if err != nil {
		log.Printf("warning: failed to initialize store: %v", err)
		return nil
	}
	return store
}

// commentHeader matches the first line of an assembled comment body:
// "warning: <message> [<check>]".
var commentHeader = regexp.MustCompile(`^warning: (.*) \[([^\[\]]+)\]`)

// sarifFindings converts review comments back into rule-addressed
// findings for SARIF export.
func sarifFindings(assembled domain.Review) []sarif.Finding {
	findings := make([]sarif.Finding, 0, len(assembled.Comments))
	for _, comment := range assembled.Comments {
		finding := sarif.Finding{
			File:      comment.Path,
			StartLine: comment.Line,
			EndLine:   comment.Line,
			Message:   comment.Body,
		}
		if comment.StartLine != 0 {
			finding.StartLine = comment.StartLine
		}
		firstLine, _, _ := strings.Cut(comment.Body, "\n")
		if m := commentHeader.FindStringSubmatch(firstLine); m != nil {
			finding.Message = m[1]
			finding.RuleID = m[2]
		}
		findings = append(findings, finding)
	}
	return findings
}

func splitRepository(slug string) (owner, name string, err error) {
	return config.GitHubConfig{Repository: slug}.SplitRepository()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func timestamp() string {
	return time.Now().UTC().Format("20060102T150405Z")
}
