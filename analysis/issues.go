package analysis

import (
	"math"
	"sort"
	"strings"
)

var beginnerLabels = map[string]bool{
	"good first issue": true,
	"good-first-issue": true,
	"help wanted":      true,
	"beginner":         true,
	"documentation":    true,
	"easy":             true,
}

var riskyLabels = map[string]bool{
	"bug":      true,
	"critical": true,
	"security": true,
	"complex":  true,
	"advanced": true,
}

// RankedIssue is an Issue annotated with a beginner-friendliness assessment.
type RankedIssue struct {
	Issue
	Score      int      `json:"score"`
	Difficulty string   `json:"difficulty"`
	Reasons    []string `json:"reasons"`
}

// RankIssues orders issues by beginner-friendliness, highest first. Entries
// that are pull requests in disguise are dropped. The sort is stable so the
// upstream listing order breaks ties.
func RankIssues(issues []Issue, w Weights) []RankedIssue {
	ranked := make([]RankedIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest {
			continue
		}

		score := 0
		difficulty := "Medium"
		var reasons []string

		if hasLabelIn(issue.Labels, beginnerLabels) {
			score += w.BeginnerLabelBonus
			difficulty = "Beginner-Friendly"
			reasons = append(reasons, "Marked for beginners")
		}
		if hasLabelIn(issue.Labels, riskyLabels) {
			score -= w.RiskyLabelPenalty
			difficulty = "Hard"
			reasons = append(reasons, "Marked as complex or critical")
		}

		switch {
		case issue.Comments == 0:
			score += w.NoCommentsBonus
			reasons = append(reasons, "No comments yet")
		case issue.Comments > w.BusyCommentThreshold:
			score -= w.BusyCommentsPenalty
			difficulty = "Hard"
			reasons = append(reasons, "Active/complex discussion")
		}

		if len(issue.Body) > w.DetailedBodyMinChars {
			score += w.DetailedBodyBonus
		}

		ranked = append(ranked, RankedIssue{
			Issue:      issue,
			Score:      score,
			Difficulty: difficulty,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func hasLabelIn(labels []Label, set map[string]bool) bool {
	for _, l := range labels {
		if set[strings.ToLower(l.Name)] {
			return true
		}
	}
	return false
}

// PRMetrics summarizes recent pull-request culture: typical change size and
// how demanding review tends to be.
type PRMetrics struct {
	TotalAnalyzed     int     `json:"total_analyzed"`
	MergedCount       int     `json:"merged_count"`
	OpenCount         int     `json:"open_count"`
	TypicalSize       string  `json:"typical_size"`
	AvgLinesChanged   float64 `json:"avg_lines_changed"`
	AvgReviewComments float64 `json:"avg_review_comments"`
	ReviewStrictness  string  `json:"review_strictness"`
	Expectation       string  `json:"expectation"`
}

// AnalyzePRs infers review culture from the PR listing. Size and strictness
// labels need addition/comment counts, which only detailed PR payloads
// carry; without them those fields stay "Unknown".
func AnalyzePRs(prs []PullRequest, w Weights) PRMetrics {
	m := PRMetrics{
		TotalAnalyzed:    len(prs),
		TypicalSize:      "Unknown",
		ReviewStrictness: "Unknown",
	}
	if len(prs) == 0 {
		return m
	}

	detailed := 0
	var sumAdditions, sumComments float64
	for _, pr := range prs {
		if pr.MergedAt != "" {
			m.MergedCount++
		}
		if pr.Additions > 0 || pr.ReviewComments > 0 || pr.Comments > 0 {
			detailed++
			sumAdditions += float64(pr.Additions)
			sumComments += float64(pr.Comments + pr.ReviewComments)
		}
	}
	m.OpenCount = len(prs) - m.MergedCount
	if detailed == 0 {
		return m
	}

	avgAdditions := sumAdditions / float64(detailed)
	avgComments := sumComments / float64(detailed)
	m.AvgLinesChanged = math.Round(avgAdditions)
	m.AvgReviewComments = math.Round(avgComments*10) / 10

	m.TypicalSize = "Small"
	if avgAdditions > float64(w.LargePRAdditions) {
		m.TypicalSize = "Large"
	} else if avgAdditions > float64(w.MediumPRAdditions) {
		m.TypicalSize = "Medium"
	}

	switch {
	case avgComments > w.VeryStrictComments:
		m.ReviewStrictness = "Very Strict"
		m.Expectation = "Expect deep code reviews and significant feedback."
	case avgComments > w.StrictComments:
		m.ReviewStrictness = "Strict"
		m.Expectation = "Reviews are thorough; expect feedback iteration."
	case avgComments > w.ModerateComments:
		m.ReviewStrictness = "Moderate"
		m.Expectation = "Standard review process."
	default:
		m.ReviewStrictness = "Lenient"
		m.Expectation = "Reviews are generally quick with few comments."
	}
	return m
}
