package analysis

import (
	"testing"
	"time"
)

func TestCalculateActivity_ActiveProject(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	var commits []Commit
	for i := 0; i < 25; i++ {
		commits = append(commits, Commit{
			SHA:        "sha",
			AuthoredAt: now.AddDate(0, 0, -(i + 1)).Format(time.RFC3339),
			Author:     Actor{Login: []string{"ana", "bo", "cy", "dee", "ed", "fay"}[i%6]},
		})
	}
	prs := []PullRequest{
		{CreatedAt: now.AddDate(0, 0, -5).Format(time.RFC3339), MergedAt: now.AddDate(0, 0, -3).Format(time.RFC3339)},
		{CreatedAt: now.AddDate(0, 0, -10).Format(time.RFC3339), MergedAt: now.AddDate(0, 0, -8).Format(time.RFC3339)},
	}

	report := CalculateActivity(commits, prs, DefaultWeights(), now)
	if report.Status != "Active" {
		t.Fatalf("Status=%q, want Active", report.Status)
	}
	if report.Metrics.DaysSinceLastCommit != 1 {
		t.Fatalf("DaysSinceLastCommit=%d, want 1", report.Metrics.DaysSinceLastCommit)
	}
	if report.Metrics.CommitFrequency90d != 25 {
		t.Fatalf("CommitFrequency90d=%d, want 25", report.Metrics.CommitFrequency90d)
	}
	if report.Metrics.ActiveContributors != 6 {
		t.Fatalf("ActiveContributors=%d, want 6", report.Metrics.ActiveContributors)
	}
	if report.Metrics.PRMergeCount30d != 2 {
		t.Fatalf("PRMergeCount30d=%d, want 2", report.Metrics.PRMergeCount30d)
	}
}

func TestCalculateActivity_NoCommits(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	report := CalculateActivity(nil, nil, DefaultWeights(), now)

	if report.Status != "Low Activity / Possibly Abandoned" {
		t.Fatalf("Status=%q, want Low Activity / Possibly Abandoned", report.Status)
	}
	if report.Metrics.DaysSinceLastCommit != 999 {
		t.Fatalf("DaysSinceLastCommit=%d, want 999 sentinel", report.Metrics.DaysSinceLastCommit)
	}
}

func TestCalculateActivity_StaleRepo(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	commits := []Commit{
		{SHA: "old", AuthoredAt: now.AddDate(0, 0, -200).Format(time.RFC3339), Author: Actor{Login: "ana"}},
	}

	report := CalculateActivity(commits, nil, DefaultWeights(), now)
	if report.Status != "Low Activity / Possibly Abandoned" {
		t.Fatalf("Status=%q, want Low Activity / Possibly Abandoned", report.Status)
	}
	if report.Metrics.CommitFrequency90d != 0 {
		t.Fatalf("CommitFrequency90d=%d, want 0", report.Metrics.CommitFrequency90d)
	}
}

func TestCalculateActivity_IgnoresUnparseableTimestamps(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	commits := []Commit{
		{SHA: "bad", AuthoredAt: "not-a-date"},
		{SHA: "good", AuthoredAt: now.AddDate(0, 0, -2).Format(time.RFC3339), Author: Actor{Login: "ana"}},
	}

	report := CalculateActivity(commits, nil, DefaultWeights(), now)
	if report.Metrics.DaysSinceLastCommit != 999 {
		t.Fatalf("DaysSinceLastCommit=%d, want 999 when newest timestamp is unparseable", report.Metrics.DaysSinceLastCommit)
	}
	if report.Metrics.CommitFrequency90d != 1 {
		t.Fatalf("CommitFrequency90d=%d, want 1", report.Metrics.CommitFrequency90d)
	}
}
