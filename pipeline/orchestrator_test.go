package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/firstpr/firstpr/analysis"
	"github.com/firstpr/firstpr/jobs"
	"github.com/firstpr/firstpr/llm"
)

type fakeFetcher struct {
	meta      analysis.RepoMetadata
	tree      []analysis.FileRef
	contents  map[string]string
	languages map[string]int
	treeErr   error

	gotTreeRef string
}

func (f *fakeFetcher) RepoMetadata(context.Context, string, string, string) (analysis.RepoMetadata, error) {
	return f.meta, nil
}

func (f *fakeFetcher) Tree(_ context.Context, _, _, ref, _ string) ([]analysis.FileRef, error) {
	f.gotTreeRef = ref
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	return f.tree, nil
}

func (f *fakeFetcher) FileContent(_ context.Context, _, _, path, _ string) (string, error) {
	return f.contents[path], nil
}

func (f *fakeFetcher) Issues(context.Context, string, string, string) ([]analysis.Issue, error) {
	return []analysis.Issue{{Number: 1, Title: "starter", Labels: []analysis.Label{{Name: "good first issue"}}}}, nil
}

func (f *fakeFetcher) PullRequests(context.Context, string, string, string) ([]analysis.PullRequest, error) {
	return nil, nil
}

func (f *fakeFetcher) Commits(context.Context, string, string, string) ([]analysis.Commit, error) {
	return nil, nil
}

func (f *fakeFetcher) Workflows(context.Context, string, string, string) ([]analysis.WorkflowRef, error) {
	return nil, nil
}

func (f *fakeFetcher) Languages(context.Context, string, string, string) (map[string]int, error) {
	return f.languages, nil
}

func (f *fakeFetcher) RateLimitStatus(context.Context, string) (int64, time.Time, error) {
	return 4999, time.Now().Add(time.Hour), nil
}

type fakeGenerator struct {
	composeErr error
}

func (g *fakeGenerator) Compose(_ context.Context, manifest []analysis.ManifestEntry, _ analysis.RepoMetadata) (llm.PromptSpec, error) {
	if g.composeErr != nil {
		return llm.PromptSpec{}, g.composeErr
	}
	var verbatim []string
	for _, e := range manifest {
		verbatim = append(verbatim, e.ID)
	}
	return llm.PromptSpec{SystemPrompt: "explain", VerbatimIDs: verbatim}, nil
}

func (g *fakeGenerator) Generate(context.Context, llm.PromptSpec, []analysis.Chunk, analysis.RepoMetadata) (analysis.Report, error) {
	return analysis.Report{
		ProjectSummary: analysis.ProjectSummary{OneLiner: "a tool", Maturity: "beta"},
	}, nil
}

func newTestOrchestrator(fetch Fetcher, gen Generator) (*Orchestrator, *jobs.Memory) {
	store := jobs.NewMemory()
	return &Orchestrator{
		Fetch:        fetch,
		Gen:          gen,
		Store:        store,
		Concurrency:  2,
		TokenCeiling: 10_000,
	}, store
}

func waitTerminal(t *testing.T, store jobs.Store, id string) jobs.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if job.Terminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return jobs.Job{}
}

func TestSubmit_ReturnsPendingImmediately(t *testing.T) {
	t.Parallel()

	fetch := &fakeFetcher{
		meta:     analysis.RepoMetadata{FullName: "octo/tool", DefaultBranch: "main"},
		tree:     []analysis.FileRef{{Path: "README.md", Kind: "blob"}},
		contents: map[string]string{"README.md": "# Tool\nA thing.\n"},
	}
	orch, store := newTestOrchestrator(fetch, &fakeGenerator{})

	job, err := orch.Submit(context.Background(), Request{Repo: "octo/tool"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.ID == "" {
		t.Fatalf("job id is empty")
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("Status=%s, want pending at submission", job.Status)
	}

	final := waitTerminal(t, store, job.ID)
	if final.Status != jobs.StatusCompleted {
		t.Fatalf("final status=%s (error=%q), want completed", final.Status, final.Error)
	}

	result, err := store.Result(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	var report analysis.Report
	if err := json.Unmarshal(result, &report); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if report.ProjectSummary.OneLiner != "a tool" {
		t.Fatalf("OneLiner=%q, want generated summary", report.ProjectSummary.OneLiner)
	}
	if report.Repo != "octo/tool" {
		t.Fatalf("Repo=%q, want octo/tool", report.Repo)
	}
	if len(report.RankedIssues) != 1 {
		t.Fatalf("RankedIssues=%d, want the heuristic section attached", len(report.RankedIssues))
	}
}

func TestSubmit_DefaultBranchWinsOverMain(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		requestedRef  string
		defaultBranch string
		wantRef       string
	}{
		{"empty ref uses default", "", "master", "master"},
		{"main falls back to the real default", "main", "master", "master"},
		{"main stays main when it is the default", "main", "main", "main"},
		{"explicit feature ref is honored", "wip/parser", "master", "wip/parser"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fetch := &fakeFetcher{
				meta:     analysis.RepoMetadata{FullName: "octo/tool", DefaultBranch: tc.defaultBranch},
				tree:     []analysis.FileRef{{Path: "README.md", Kind: "blob"}},
				contents: map[string]string{"README.md": "# Tool\n"},
			}
			orch, store := newTestOrchestrator(fetch, &fakeGenerator{})

			job, err := orch.Submit(context.Background(), Request{Repo: "octo/tool", Ref: tc.requestedRef})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if final := waitTerminal(t, store, job.ID); final.Status != jobs.StatusCompleted {
				t.Fatalf("final status=%s (error=%q), want completed", final.Status, final.Error)
			}
			if fetch.gotTreeRef != tc.wantRef {
				t.Fatalf("tree fetched at ref %q, want %q", fetch.gotTreeRef, tc.wantRef)
			}
		})
	}
}

func TestSubmit_UpstreamLanguagesReachTechStack(t *testing.T) {
	t.Parallel()

	fetch := &fakeFetcher{
		meta:      analysis.RepoMetadata{FullName: "octo/tool", DefaultBranch: "main"},
		tree:      []analysis.FileRef{{Path: "README.md", Kind: "blob"}},
		contents:  map[string]string{"README.md": "# Tool\n"},
		languages: map[string]int{"Zig": 9000},
	}
	orch, store := newTestOrchestrator(fetch, &fakeGenerator{})

	job, err := orch.Submit(context.Background(), Request{Repo: "octo/tool"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if final := waitTerminal(t, store, job.ID); final.Status != jobs.StatusCompleted {
		t.Fatalf("final status=%s (error=%q), want completed", final.Status, final.Error)
	}

	result, err := store.Result(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	var report analysis.Report
	if err := json.Unmarshal(result, &report); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	found := false
	for _, l := range report.TechStackDetected.Languages {
		if l == "Zig" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Languages=%v, want the upstream byte counts reflected", report.TechStackDetected.Languages)
	}
}

func TestSubmit_FetchFailureFailsJob(t *testing.T) {
	t.Parallel()

	fetch := &fakeFetcher{
		meta:    analysis.RepoMetadata{FullName: "octo/tool", DefaultBranch: "main"},
		treeErr: errors.New("upstream exploded"),
	}
	orch, store := newTestOrchestrator(fetch, &fakeGenerator{})

	job, err := orch.Submit(context.Background(), Request{Repo: "octo/tool"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	final := waitTerminal(t, store, job.ID)
	if final.Status != jobs.StatusFailed {
		t.Fatalf("final status=%s, want failed", final.Status)
	}
	if !strings.Contains(final.Error, "upstream exploded") {
		t.Fatalf("Error=%q, want the underlying cause", final.Error)
	}

	if _, err := store.Result(context.Background(), job.ID); !errors.Is(err, jobs.ErrNotReady) {
		t.Fatalf("Result(failed)=%v, want ErrNotReady", err)
	}
}

func TestSubmit_InvalidRepoFailsJob(t *testing.T) {
	t.Parallel()

	orch, store := newTestOrchestrator(&fakeFetcher{}, &fakeGenerator{})
	job, err := orch.Submit(context.Background(), Request{Repo: "not-a-repo"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	final := waitTerminal(t, store, job.ID)
	if final.Status != jobs.StatusFailed {
		t.Fatalf("final status=%s, want failed", final.Status)
	}
}

func TestSubmit_ComposeFailureFailsJob(t *testing.T) {
	t.Parallel()

	fetch := &fakeFetcher{
		meta:     analysis.RepoMetadata{FullName: "octo/tool", DefaultBranch: "main"},
		tree:     []analysis.FileRef{{Path: "README.md", Kind: "blob"}},
		contents: map[string]string{"README.md": "# Tool\n"},
	}
	orch, store := newTestOrchestrator(fetch, &fakeGenerator{composeErr: errors.New("model unavailable")})

	job, err := orch.Submit(context.Background(), Request{Repo: "octo/tool"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	final := waitTerminal(t, store, job.ID)
	if final.Status != jobs.StatusFailed {
		t.Fatalf("final status=%s, want failed", final.Status)
	}
	if !strings.Contains(final.Error, "compose prompt") {
		t.Fatalf("Error=%q, want compose stage named", final.Error)
	}
}

func TestParseRepo(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in        string
		owner     string
		repo      string
		expectErr bool
	}{
		{"octo/tool", "octo", "tool", false},
		{"https://github.com/octo/tool", "octo", "tool", false},
		{"https://github.com/octo/tool.git", "octo", "tool", false},
		{"http://github.com/some/path/octo/tool", "octo", "tool", false},
		{"just-a-name", "", "", true},
		{"https://github.com/onlyowner", "", "", true},
		{"", "", "", true},
		{"a/b/c", "", "", true},
	}
	for _, tc := range cases {
		owner, repo, err := ParseRepo(tc.in)
		if tc.expectErr {
			if err == nil {
				t.Fatalf("ParseRepo(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRepo(%q): %v", tc.in, err)
		}
		if owner != tc.owner || repo != tc.repo {
			t.Fatalf("ParseRepo(%q)=%s/%s, want %s/%s", tc.in, owner, repo, tc.owner, tc.repo)
		}
	}
}
