// Package githubapi is the rate-limited fetcher for the upstream content
// API. All requests share one retry policy for connection-level failures and
// one in-place wait strategy for short quota resets; long resets fail fast
// with RateLimitError instead of pinning the caller.
package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/firstpr/firstpr/analysis"
)

const (
	defaultBaseURL = "https://api.github.com"

	// maxContentSize caps decoded file fetches; oversized files come back
	// empty rather than erroring.
	maxContentSize = 1_000_000

	// defaultMaxResetWait bounds how long a quota reset may be waited out
	// in place.
	defaultMaxResetWait = 60 * time.Second

	// maxQuotaWaits bounds how many quota resets one call will wait out
	// before surfacing RateLimitError.
	maxQuotaWaits = 2

	errorBodyPreview = 500
)

// Last-observed quota gauges, overwritten on every response. Read for
// observability and backpressure; never accumulated.
var (
	lastRemaining atomic.Int64
	lastResetUnix atomic.Int64
)

func init() { lastRemaining.Store(-1) }

// RateRemaining returns the last-observed remaining-quota value, or -1 if
// no response has been seen yet.
func RateRemaining() int64 { return lastRemaining.Load() }

// RateResetAt returns the last-observed quota reset time; zero if unseen.
func RateResetAt() time.Time {
	unix := lastResetUnix.Load()
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// Client talks to the GitHub REST API. The zero value plus a BaseURL is
// usable; NewClient fills in production defaults.
type Client struct {
	BaseURL      string
	Token        string // process-wide default credential
	HTTPClient   *http.Client
	Retry        RetryPolicy
	MaxResetWait time.Duration

	// sleepFn is swapped in tests so rate-limit waits don't wall-clock.
	sleepFn func(context.Context, time.Duration) error
}

// NewClient builds a client with the default retry policy. token may be
// empty for unauthenticated access.
func NewClient(token string) *Client {
	return &Client{
		BaseURL:      defaultBaseURL,
		Token:        token,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
		Retry:        DefaultRetryPolicy(),
		MaxResetWait: defaultMaxResetWait,
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return defaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) maxResetWait() time.Duration {
	if c.MaxResetWait > 0 {
		return c.MaxResetWait
	}
	return defaultMaxResetWait
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.sleepFn != nil {
		return c.sleepFn(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) retry() RetryPolicy {
	if c.Retry.MaxAttempts > 0 {
		return c.Retry
	}
	return DefaultRetryPolicy()
}

// do issues one API call. token overrides the client default credential;
// both empty means unauthenticated. Connection failures run through the
// retry policy; a zero-remaining 403/429 with a near future reset is waited
// out in place (not counted against the retry budget) and the request
// reissued, at most maxQuotaWaits times per call.
func (c *Client) do(ctx context.Context, method, apiPath, token string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL() + apiPath
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	quotaWaits := 0
	for {
		var resp *http.Response
		err := c.retry().Do(ctx, c.sleep, func() error {
			req, reqErr := http.NewRequestWithContext(ctx, method, endpoint, nil)
			if reqErr != nil {
				return reqErr
			}
			req.Header.Set("Accept", "application/vnd.github.v3+json")
			req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
			req.Header.Set("User-Agent", "FirstPR-Analyzer/1.0")
			if effective := firstNonEmpty(token, c.Token); effective != "" {
				req.Header.Set("Authorization", "Bearer "+effective)
			}
			r, doErr := c.httpClient().Do(req)
			if doErr != nil {
				return doErr
			}
			resp = r
			return nil
		})
		if err != nil {
			return nil, err
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		updateGauges(resp.Header)

		if isRateLimited(resp) {
			resetAt := resetTime(resp.Header)
			// An absent or already-past reset header cannot be waited out;
			// retrying in place would spin against the limiter.
			if resetAt.IsZero() || !resetAt.After(time.Now()) || quotaWaits >= maxQuotaWaits {
				return nil, &RateLimitError{ResetAt: resetAt}
			}
			wait := time.Until(resetAt) + time.Second
			if wait > c.maxResetWait() {
				return nil, &RateLimitError{ResetAt: resetAt}
			}
			quotaWaits++
			log.Printf("githubapi: quota exhausted, waiting %s for reset (%s %s)", wait.Round(time.Second), method, apiPath)
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			continue
		}

		if resp.StatusCode >= 400 {
			return nil, &UpstreamError{Status: resp.StatusCode, Body: truncate(string(body), errorBodyPreview)}
		}
		if readErr != nil {
			return nil, fmt.Errorf("githubapi: read response body: %w", readErr)
		}
		return body, nil
	}
}

func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return false
	}
	return resp.Header.Get("X-RateLimit-Remaining") == "0"
}

func resetTime(h http.Header) time.Time {
	unix, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

func updateGauges(h http.Header) {
	if remaining, err := strconv.ParseInt(h.Get("X-RateLimit-Remaining"), 10, 64); err == nil {
		lastRemaining.Store(remaining)
	}
	if unix, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		lastResetUnix.Store(unix)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func (c *Client) getJSON(ctx context.Context, apiPath, token string, params url.Values, v any) error {
	body, err := c.do(ctx, http.MethodGet, apiPath, token, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("githubapi: unmarshal %s: %w", apiPath, err)
	}
	return nil
}

// RepoMetadata fetches the repository record.
func (c *Client) RepoMetadata(ctx context.Context, owner, repo, token string) (analysis.RepoMetadata, error) {
	var meta analysis.RepoMetadata
	err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s", owner, repo), token, nil, &meta)
	return meta, err
}

// Tree fetches the recursive file tree at ref. A truncated tree is logged
// and returned as-is; partial analysis beats none.
func (c *Client) Tree(ctx context.Context, owner, repo, ref, token string) ([]analysis.FileRef, error) {
	var payload struct {
		Tree      []analysis.FileRef `json:"tree"`
		Truncated bool               `json:"truncated"`
	}
	params := url.Values{"recursive": {"1"}}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/%s", owner, repo, ref), token, params, &payload); err != nil {
		return nil, err
	}
	if payload.Truncated {
		log.Printf("githubapi: tree for %s/%s@%s is truncated, proceeding with partial tree", owner, repo, ref)
	}
	return payload.Tree, nil
}

// FileContent fetches one file's decoded content. Best-effort semantics:
// a 404, a directory, an oversized file, or undecodable content all come
// back as empty content with no error.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, token string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path), token, nil)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		// Directory listing, not a file.
		return "", nil
	}

	var payload struct {
		Size    int64  `json:"size"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("githubapi: unmarshal contents of %s: %w", path, err)
	}
	if payload.Size > maxContentSize {
		log.Printf("githubapi: file %s too large (%d bytes), skipping content", path, payload.Size)
		return "", nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		log.Printf("githubapi: undecodable content for %s: %v", path, err)
		return "", nil
	}
	return string(decoded), nil
}

// Languages fetches the byte counts per language.
func (c *Client) Languages(ctx context.Context, owner, repo, token string) (map[string]int, error) {
	langs := map[string]int{}
	err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/languages", owner, repo), token, nil, &langs)
	return langs, err
}

// Issues fetches recently updated open issues. Pull requests masquerading
// as issues are flagged, not dropped; ranking decides what to do with them.
func (c *Client) Issues(ctx context.Context, owner, repo, token string) ([]analysis.Issue, error) {
	var payload []struct {
		analysis.Issue
		PullRequest *struct{} `json:"pull_request"`
	}
	params := url.Values{"state": {"open"}, "per_page": {"20"}, "sort": {"updated"}}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/issues", owner, repo), token, params, &payload); err != nil {
		return nil, err
	}
	issues := make([]analysis.Issue, 0, len(payload))
	for _, it := range payload {
		issue := it.Issue
		issue.IsPullRequest = it.PullRequest != nil
		issues = append(issues, issue)
	}
	return issues, nil
}

// PullRequests fetches the most recent PRs in any state.
func (c *Client) PullRequests(ctx context.Context, owner, repo, token string) ([]analysis.PullRequest, error) {
	var prs []analysis.PullRequest
	params := url.Values{"state": {"all"}, "sort": {"created"}, "direction": {"desc"}, "per_page": {"10"}}
	err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/pulls", owner, repo), token, params, &prs)
	return prs, err
}

// Commits fetches the most recent commits on the default branch.
func (c *Client) Commits(ctx context.Context, owner, repo, token string) ([]analysis.Commit, error) {
	var payload []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Author struct {
				Date string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Author *analysis.Actor `json:"author"`
	}
	params := url.Values{"per_page": {"50"}}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/commits", owner, repo), token, params, &payload); err != nil {
		return nil, err
	}
	commits := make([]analysis.Commit, 0, len(payload))
	for _, it := range payload {
		commit := analysis.Commit{SHA: it.SHA, AuthoredAt: it.Commit.Author.Date}
		if it.Author != nil {
			commit.Author = *it.Author
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// Workflows fetches the CI workflow listing.
func (c *Client) Workflows(ctx context.Context, owner, repo, token string) ([]analysis.WorkflowRef, error) {
	var payload struct {
		Workflows []analysis.WorkflowRef `json:"workflows"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/repos/%s/%s/actions/workflows", owner, repo), token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Workflows, nil
}

// RateLimitStatus fetches the core quota remaining/reset pair.
func (c *Client) RateLimitStatus(ctx context.Context, token string) (remaining int64, resetAt time.Time, err error) {
	var payload struct {
		Resources struct {
			Core struct {
				Remaining int64 `json:"remaining"`
				Reset     int64 `json:"reset"`
			} `json:"core"`
		} `json:"resources"`
	}
	if err := c.getJSON(ctx, "/rate_limit", token, nil, &payload); err != nil {
		return 0, time.Time{}, err
	}
	return payload.Resources.Core.Remaining, time.Unix(payload.Resources.Core.Reset, 0), nil
}
