package analysis

import (
	"fmt"
	"strings"
	"time"
)

// ActivityReport grades how alive a repository is, with the metrics that
// fed the grade so callers can show their work.
type ActivityReport struct {
	Status      string          `json:"activity_status"`
	Confidence  string          `json:"confidence_level"`
	Explanation string          `json:"explanation"`
	Metrics     ActivityMetrics `json:"metrics"`
}

type ActivityMetrics struct {
	DaysSinceLastCommit int `json:"days_since_last_commit"`
	CommitFrequency90d  int `json:"commit_frequency_90d"`
	ActiveContributors  int `json:"active_contributors_count"`
	PRMergeCount30d     int `json:"pr_merge_count_30d"`
	PRCreated30d        int `json:"pr_created_30d"`
}

// CalculateActivity scores recent commits and PR throughput into an
// Active / Moderately Active / Low Activity grade. now is injectable for
// tests; commits are expected newest first, as the upstream listing
// delivers them.
func CalculateActivity(commits []Commit, prs []PullRequest, w Weights, now time.Time) ActivityReport {
	metrics := ActivityMetrics{DaysSinceLastCommit: 999}
	cutoff90d := now.AddDate(0, 0, -90)
	cutoff30d := now.AddDate(0, 0, -30)

	authors := map[string]bool{}
	if len(commits) > 0 {
		if last, ok := parseTimestamp(commits[0].AuthoredAt); ok {
			metrics.DaysSinceLastCommit = int(now.Sub(last).Hours() / 24)
		}
		for _, c := range commits {
			at, ok := parseTimestamp(c.AuthoredAt)
			if !ok || !at.After(cutoff90d) {
				continue
			}
			metrics.CommitFrequency90d++
			if c.Author.Login != "" {
				authors[c.Author.Login] = true
			}
		}
	}
	metrics.ActiveContributors = len(authors)

	for _, pr := range prs {
		if created, ok := parseTimestamp(pr.CreatedAt); ok && created.After(cutoff30d) {
			metrics.PRCreated30d++
		}
		if merged, ok := parseTimestamp(pr.MergedAt); ok && merged.After(cutoff30d) {
			metrics.PRMergeCount30d++
		}
	}

	score := 0
	var explanation []string

	switch {
	case metrics.DaysSinceLastCommit < w.RecentCommitDays:
		score += 3
		explanation = append(explanation, fmt.Sprintf("Recent commits within %d days.", metrics.DaysSinceLastCommit))
	case metrics.DaysSinceLastCommit < w.StaleCommitDays:
		score++
	default:
		score -= 2
		explanation = append(explanation, fmt.Sprintf("No commits in %d days.", metrics.DaysSinceLastCommit))
	}

	if metrics.CommitFrequency90d > w.HighCommitCount90d {
		score += 2
		explanation = append(explanation, "High commit frequency.")
	} else if metrics.CommitFrequency90d > w.ModerateCommitCount90d {
		score++
	}

	if metrics.ActiveContributors > w.ActiveContributorTeam {
		score += 2
		explanation = append(explanation, fmt.Sprintf("Active team of %d contributors.", metrics.ActiveContributors))
	} else if metrics.ActiveContributors > 1 {
		score++
	}

	if metrics.PRMergeCount30d > w.HighMergeCount30d {
		score += 2
		explanation = append(explanation, fmt.Sprintf("%d PRs merged in last 30 days.", metrics.PRMergeCount30d))
	} else if metrics.PRMergeCount30d > 0 {
		score++
	}

	report := ActivityReport{Metrics: metrics}
	switch {
	case score >= w.ActiveScore:
		report.Status = "Active"
		report.Confidence = "High"
	case score >= w.ModerateScore:
		report.Status = "Moderately Active"
		report.Confidence = "Medium"
		if metrics.CommitFrequency90d > 0 {
			report.Confidence = "High"
		}
	default:
		report.Status = "Low Activity / Possibly Abandoned"
		report.Confidence = "High"
	}

	if len(explanation) == 0 {
		explanation = append(explanation, "Activity levels are consistent with a mature or slow-moving project.")
	}
	report.Explanation = strings.Join(explanation, " ")
	return report
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
