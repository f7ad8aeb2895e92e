package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apihttp "github.com/bkyoung/tidy-review/internal/adapter/api/http"
	"github.com/bkyoung/tidy-review/internal/domain"
)

const (
	defaultBaseURL        = "https://api.github.com"
	defaultTimeout        = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second

	acceptJSON = "application/vnd.github+json"
	acceptDiff = "application/vnd.github.v3.diff"

	perPage = 100
)

// Client is an HTTP client for the GitHub pull request API.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  apihttp.RetryConfig
	logger     apihttp.Logger
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a personal access token or GITHUB_TOKEN from Actions.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf: apihttp.RetryConfig{
			MaxRetries:     defaultMaxRetries,
			InitialBackoff: defaultInitialBackoff,
			MaxBackoff:     32 * time.Second,
			Multiplier:     2.0,
		},
	}
}

// SetBaseURL sets a custom base URL (for GitHub Enterprise or testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetMaxRetries sets the maximum number of retry attempts.
func (c *Client) SetMaxRetries(maxRetries int) {
	c.retryConf.MaxRetries = maxRetries
}

// SetInitialBackoff sets the initial backoff duration for retries.
func (c *Client) SetInitialBackoff(backoff time.Duration) {
	c.retryConf.InitialBackoff = backoff
}

// SetLogger installs a structured logger for API calls.
func (c *Client) SetLogger(logger apihttp.Logger) {
	c.logger = logger
}

// GetPullRequest fetches the pull request metadata, including the
// head commit SHA reviews are attached to.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, pullNumber int) (*PullRequest, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, pullNumber)

	body, err := c.do(ctx, http.MethodGet, path, acceptJSON, nil)
	if err != nil {
		return nil, err
	}

	var pr PullRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("parse pull request: %w", err)
	}
	return &pr, nil
}

// GetPullRequestDiff downloads the PR's unified diff.
func (c *Client) GetPullRequestDiff(ctx context.Context, owner, repo string, pullNumber int) (string, error) {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, pullNumber)

	body, err := c.do(ctx, http.MethodGet, path, acceptDiff, nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ListPullRequestComments fetches every inline review comment on the
// pull request, following pagination.
func (c *Client) ListPullRequestComments(ctx context.Context, owner, repo string, pullNumber int) ([]PullRequestComment, error) {
	var all []PullRequestComment
	for page := 1; ; page++ {
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/comments?per_page=%d&page=%d",
			owner, repo, pullNumber, perPage, page)

		body, err := c.do(ctx, http.MethodGet, path, acceptJSON, nil)
		if err != nil {
			return nil, err
		}

		var comments []PullRequestComment
		if err := json.Unmarshal(body, &comments); err != nil {
			return nil, fmt.Errorf("parse comments page %d: %w", page, err)
		}
		all = append(all, comments...)
		if len(comments) < perPage {
			return all, nil
		}
	}
}

// CreateReview posts a pull request review with inline comments.
// The review payload is submitted as assembled; the culler has
// already removed duplicates and enforced the comment budget.
func (c *Client) CreateReview(ctx context.Context, owner, repo string, pullNumber int, commitSHA string, review domain.Review) (*CreateReviewResponse, error) {
	reqBody := CreateReviewRequest{
		CommitID: commitSHA,
		Body:     review.Body,
		Event:    review.Event,
		Comments: review.Comments,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal review: %w", err)
	}

	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", owner, repo, pullNumber)
	body, err := c.do(ctx, http.MethodPost, path, acceptJSON, jsonData)
	if err != nil {
		return nil, err
	}

	var reviewResp CreateReviewResponse
	if err := json.Unmarshal(body, &reviewResp); err != nil {
		return nil, fmt.Errorf("parse review response: %w", err)
	}
	return &reviewResp, nil
}

// ListIssueComments fetches the PR's conversation comments, following
// pagination. Used to avoid re-posting the LGTM comment.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, pullNumber int) ([]IssueComment, error) {
	var all []IssueComment
	for page := 1; ; page++ {
		path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments?per_page=%d&page=%d",
			owner, repo, pullNumber, perPage, page)

		body, err := c.do(ctx, http.MethodGet, path, acceptJSON, nil)
		if err != nil {
			return nil, err
		}

		var comments []IssueComment
		if err := json.Unmarshal(body, &comments); err != nil {
			return nil, fmt.Errorf("parse issue comments page %d: %w", page, err)
		}
		all = append(all, comments...)
		if len(comments) < perPage {
			return all, nil
		}
	}
}

// CreateIssueComment posts a plain conversation comment on the PR.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, pullNumber int, commentBody string) error {
	jsonData, err := json.Marshal(map[string]string{"body": commentBody})
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, pullNumber)
	_, err = c.do(ctx, http.MethodPost, path, acceptJSON, jsonData)
	return err
}

// CreateCheckRun posts a check run, used for inline annotations.
func (c *Client) CreateCheckRun(ctx context.Context, owner, repo string, run CheckRunRequest) error {
	jsonData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal check run: %w", err)
	}

	path := fmt.Sprintf("/repos/%s/%s/check-runs", owner, repo)
	_, err = c.do(ctx, http.MethodPost, path, acceptJSON, jsonData)
	return err
}

// do executes one API call with retry, reads the full response body,
// and maps error statuses to typed errors.
func (c *Client) do(ctx context.Context, method, path, accept string, reqBody []byte) ([]byte, error) {
	url := c.baseURL + path

	var respBody []byte
	err := apihttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if reqBody != nil {
			reader = bytes.NewReader(reqBody)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, url, reader)
		if reqErr != nil {
			return &apihttp.Error{
				Type:      apihttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Service:   serviceName,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", accept)
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		c.logRequest(ctx, method, path, len(reqBody))
		start := time.Now()

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			// Could be timeout or network error
			apiErr := &apihttp.Error{
				Type:      apihttp.ErrTypeTimeout,
				Message:   apihttp.RedactURLSecrets(callErr.Error()),
				Retryable: true,
				Service:   serviceName,
			}
			c.logError(ctx, method, path, time.Since(start), apiErr)
			return apiErr
		}
		defer resp.Body.Close()

		bodyBytes, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &apihttp.Error{
				Type:       apihttp.ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
				StatusCode: resp.StatusCode,
				Retryable:  resp.StatusCode >= 500,
				Service:    serviceName,
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := MapHTTPError(resp.StatusCode, bodyBytes)
			c.logError(ctx, method, path, time.Since(start), apiErr)
			return apiErr
		}

		c.logResponse(ctx, method, path, time.Since(start), resp.StatusCode)
		respBody = bodyBytes
		return nil
	}, c.retryConf)

	if err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *Client) logRequest(ctx context.Context, method, path string, bodyBytes int) {
	if c.logger == nil {
		return
	}
	c.logger.LogRequest(ctx, apihttp.RequestLog{
		Service:   serviceName,
		Method:    method,
		Path:      path,
		Timestamp: time.Now(),
		BodyBytes: bodyBytes,
		Token:     c.token,
	})
}

func (c *Client) logResponse(ctx context.Context, method, path string, duration time.Duration, status int) {
	if c.logger == nil {
		return
	}
	c.logger.LogResponse(ctx, apihttp.ResponseLog{
		Service:    serviceName,
		Method:     method,
		Path:       path,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: status,
	})
}

func (c *Client) logError(ctx context.Context, method, path string, duration time.Duration, apiErr *apihttp.Error) {
	if c.logger == nil {
		return
	}
	c.logger.LogError(ctx, apihttp.ErrorLog{
		Service:    serviceName,
		Method:     method,
		Path:       path,
		Timestamp:  time.Now(),
		Duration:   duration,
		Error:      apiErr,
		ErrorType:  apiErr.Type,
		StatusCode: apiErr.StatusCode,
		Retryable:  apiErr.Retryable,
	})
}
