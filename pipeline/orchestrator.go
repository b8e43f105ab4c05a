package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/firstpr/firstpr/analysis"
	"github.com/firstpr/firstpr/compute"
	"github.com/firstpr/firstpr/githubapi"
	"github.com/firstpr/firstpr/jobs"
	"github.com/firstpr/firstpr/llm"
	"github.com/firstpr/firstpr/token"
)

// DefaultTokenCeiling bounds the chunk content handed to generation.
const DefaultTokenCeiling = 100_000

// Fetcher is the upstream repository surface the orchestrator needs.
// *githubapi.Client satisfies it.
type Fetcher interface {
	RepoMetadata(ctx context.Context, owner, repo, token string) (analysis.RepoMetadata, error)
	Tree(ctx context.Context, owner, repo, ref, token string) ([]analysis.FileRef, error)
	FileContent(ctx context.Context, owner, repo, path, token string) (string, error)
	Languages(ctx context.Context, owner, repo, token string) (map[string]int, error)
	Issues(ctx context.Context, owner, repo, token string) ([]analysis.Issue, error)
	PullRequests(ctx context.Context, owner, repo, token string) ([]analysis.PullRequest, error)
	Commits(ctx context.Context, owner, repo, token string) ([]analysis.Commit, error)
	Workflows(ctx context.Context, owner, repo, token string) ([]analysis.WorkflowRef, error)
	RateLimitStatus(ctx context.Context, token string) (remaining int64, resetAt time.Time, err error)
}

// Generator is the two-stage generation collaborator. *llm.Client
// satisfies it.
type Generator interface {
	Compose(ctx context.Context, manifest []analysis.ManifestEntry, meta analysis.RepoMetadata) (llm.PromptSpec, error)
	Generate(ctx context.Context, spec llm.PromptSpec, chunks []analysis.Chunk, meta analysis.RepoMetadata) (analysis.Report, error)
}

// Orchestrator drives one analysis job end to end. Zero-value optional
// fields fall back to defaults; Fetch, Gen, and Store are required.
type Orchestrator struct {
	Fetch Fetcher
	Gen   Generator
	Store jobs.Store

	Offload      compute.Offloader
	Estimator    token.Estimator
	Weights      *analysis.Weights
	Concurrency  int
	TokenCeiling int
	MaxFiles     int

	// ArtifactDir, when set, receives the completed report as pretty JSON.
	ArtifactDir string
}

// Request identifies one repository to analyze.
type Request struct {
	Repo  string `json:"repo"`
	Ref   string `json:"ref,omitempty"`
	Token string `json:"-"`
}

// Submit registers a pending job and starts processing in the background.
// It returns as soon as the job record exists; progress is observed
// through the store.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (jobs.Job, error) {
	if o.Fetch == nil || o.Gen == nil || o.Store == nil {
		return jobs.Job{}, errors.New("Submit: orchestrator is missing a collaborator")
	}

	job := jobs.Job{
		ID:        uuid.NewString(),
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := o.Store.Create(ctx, job); err != nil {
		return jobs.Job{}, fmt.Errorf("Submit: %w", err)
	}

	go o.process(context.Background(), job.ID, req)
	return job, nil
}

// ParseRepo accepts "owner/repo" or a full repository URL and returns the
// owner and name. The trailing ".git" suffix is stripped.
func ParseRepo(input string) (owner, repo string, err error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", "", errors.New("ParseRepo: empty repository")
	}

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		u, perr := url.Parse(input)
		if perr != nil {
			return "", "", fmt.Errorf("ParseRepo: %w", perr)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
			return "", "", fmt.Errorf("ParseRepo: invalid repository URL %q", input)
		}
		owner, repo = parts[len(parts)-2], parts[len(parts)-1]
	} else {
		parts := strings.Split(input, "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return "", "", fmt.Errorf("ParseRepo: expected owner/repo, got %q", input)
		}
		owner, repo = parts[0], parts[1]
	}
	return owner, strings.TrimSuffix(repo, ".git"), nil
}

func (o *Orchestrator) process(ctx context.Context, jobID string, req Request) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: job %s panicked: %v", jobID, r)
			if err := o.Store.Fail(ctx, jobID, fmt.Sprintf("internal error: %v", r)); err != nil {
				log.Printf("pipeline: job %s: record failure: %v", jobID, err)
			}
		}
	}()

	if err := o.Store.SetProcessing(ctx, jobID); err != nil {
		log.Printf("pipeline: job %s: set processing: %v", jobID, err)
		return
	}

	report, err := o.analyze(ctx, req)
	if err != nil {
		log.Printf("pipeline: job %s failed: %v", jobID, err)
		if serr := o.Store.Fail(ctx, jobID, err.Error()); serr != nil {
			log.Printf("pipeline: job %s: record failure: %v", jobID, serr)
		}
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		if serr := o.Store.Fail(ctx, jobID, fmt.Sprintf("encode result: %v", err)); serr != nil {
			log.Printf("pipeline: job %s: record failure: %v", jobID, serr)
		}
		return
	}
	if err := o.Store.Complete(ctx, jobID, payload); err != nil {
		log.Printf("pipeline: job %s: record completion: %v", jobID, err)
		return
	}

	if o.ArtifactDir != "" {
		if err := writeArtifact(o.ArtifactDir, jobID, report); err != nil {
			log.Printf("pipeline: job %s: persist artifact: %v", jobID, err)
		}
	}
}

func (o *Orchestrator) analyze(ctx context.Context, req Request) (analysis.Report, error) {
	owner, repo, err := ParseRepo(req.Repo)
	if err != nil {
		return analysis.Report{}, err
	}

	meta, err := o.Fetch.RepoMetadata(ctx, owner, repo, req.Token)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("repository metadata: %w", err)
	}

	ref := req.Ref
	if ref == "" || (ref == "main" && meta.DefaultBranch != "" && meta.DefaultBranch != "main") {
		ref = meta.DefaultBranch
	}

	tree, err := o.Fetch.Tree(ctx, owner, repo, ref, req.Token)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("repository tree: %w", err)
	}

	paths := analysis.SelectFiles(tree, o.maxFiles())
	results := RunBounded(ctx, o.concurrency(), paths,
		func(ctx context.Context, p string) (string, error) {
			return o.Fetch.FileContent(ctx, owner, repo, p, req.Token)
		},
		o.chunkOffloaded,
	)

	var chunks []analysis.Chunk
	contents := make(map[string]string, len(results))
	for _, r := range results {
		chunks = append(chunks, r.Chunks...)
		if r.Content != "" {
			contents[r.Path] = r.Content
		}
	}

	budget := analysis.Budget(chunks, o.tokenCeiling(), o.Estimator)

	weights := o.weights()
	report := analysis.Report{
		Repo:     req.Repo,
		Metadata: meta,
	}

	issues, err := o.Fetch.Issues(ctx, owner, repo, req.Token)
	if err != nil {
		log.Printf("pipeline: %s/%s: issues: %v", owner, repo, err)
	} else {
		report.RankedIssues = analysis.RankIssues(issues, weights)
	}
	prs, err := o.Fetch.PullRequests(ctx, owner, repo, req.Token)
	if err != nil {
		log.Printf("pipeline: %s/%s: pull requests: %v", owner, repo, err)
	} else {
		report.PRMetrics = analysis.AnalyzePRs(prs, weights)
	}
	if commits, err := o.Fetch.Commits(ctx, owner, repo, req.Token); err != nil {
		log.Printf("pipeline: %s/%s: commits: %v", owner, repo, err)
	} else {
		report.Activity = analysis.CalculateActivity(commits, prs, weights, time.Now().UTC())
	}
	report.Rules = analysis.DetectRules(tree, o.workflowSources(ctx, owner, repo, req.Token, contents), prs, issues)

	languages, err := o.Fetch.Languages(ctx, owner, repo, req.Token)
	if err != nil {
		log.Printf("pipeline: %s/%s: languages: %v", owner, repo, err)
	}

	spec, err := o.Gen.Compose(ctx, analysis.BuildManifest(budget.Selected), meta)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("compose prompt: %w", err)
	}

	generated, err := o.Gen.Generate(ctx, spec, budget.Selected, meta)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("generate report: %w", err)
	}

	generated.Repo = report.Repo
	generated.Metadata = report.Metadata
	generated.RankedIssues = report.RankedIssues
	generated.PRMetrics = report.PRMetrics
	generated.Activity = report.Activity
	generated.Rules = report.Rules
	if len(generated.TechStackDetected.Languages) == 0 && len(generated.TechStackDetected.Frameworks) == 0 {
		generated.TechStackDetected = analysis.DetectTechStack(tree, contents, languages)
	}
	generated.RateRemaining = githubapi.RateRemaining()
	if reset := githubapi.RateResetAt(); !reset.IsZero() {
		generated.RateResetAt = reset.UTC().Format(time.RFC3339)
	}
	return generated, nil
}

// workflowSources returns workflow file contents keyed by path, preferring
// already-fetched content and fetching the rest individually.
func (o *Orchestrator) workflowSources(ctx context.Context, owner, repo, token string, contents map[string]string) map[string]string {
	refs, err := o.Fetch.Workflows(ctx, owner, repo, token)
	if err != nil {
		log.Printf("pipeline: %s/%s: workflows: %v", owner, repo, err)
		return nil
	}

	sources := make(map[string]string, len(refs))
	for _, ref := range refs {
		if c, ok := contents[ref.Path]; ok {
			sources[ref.Path] = c
			continue
		}
		c, err := o.Fetch.FileContent(ctx, owner, repo, ref.Path, token)
		if err != nil {
			log.Printf("pipeline: %s/%s: workflow %s: %v", owner, repo, path.Base(ref.Path), err)
			continue
		}
		sources[ref.Path] = c
	}
	return sources
}

func (o *Orchestrator) chunkOffloaded(ctx context.Context, p, content string) []analysis.Chunk {
	var out []analysis.Chunk
	run := func() { out = analysis.ChunkFile(content, p) }
	if err := o.offloader().Run(ctx, run); err != nil {
		run()
	}
	return out
}

func (o *Orchestrator) offloader() compute.Offloader {
	if o.Offload == nil {
		return compute.Inline{}
	}
	return o.Offload
}

func (o *Orchestrator) weights() analysis.Weights {
	if o.Weights == nil {
		return analysis.DefaultWeights()
	}
	return *o.Weights
}

func (o *Orchestrator) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

func (o *Orchestrator) tokenCeiling() int {
	if o.TokenCeiling <= 0 {
		return DefaultTokenCeiling
	}
	return o.TokenCeiling
}

func (o *Orchestrator) maxFiles() int {
	if o.MaxFiles <= 0 {
		return analysis.DefaultMaxFiles
	}
	return o.MaxFiles
}
