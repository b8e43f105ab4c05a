package analysis

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Weights holds the point values and cutoffs behind the issue, PR, and
// activity heuristics. The numbers are product policy carried over as-is;
// they are configuration, not derived quantities.
type Weights struct {
	BeginnerLabelBonus   int `toml:"beginner_label_bonus"`
	RiskyLabelPenalty    int `toml:"risky_label_penalty"`
	NoCommentsBonus      int `toml:"no_comments_bonus"`
	BusyCommentsPenalty  int `toml:"busy_comments_penalty"`
	BusyCommentThreshold int `toml:"busy_comment_threshold"`
	DetailedBodyBonus    int `toml:"detailed_body_bonus"`
	DetailedBodyMinChars int `toml:"detailed_body_min_chars"`

	LargePRAdditions   int     `toml:"large_pr_additions"`
	MediumPRAdditions  int     `toml:"medium_pr_additions"`
	VeryStrictComments float64 `toml:"very_strict_comments"`
	StrictComments     float64 `toml:"strict_comments"`
	ModerateComments   float64 `toml:"moderate_comments"`

	RecentCommitDays       int `toml:"recent_commit_days"`
	StaleCommitDays        int `toml:"stale_commit_days"`
	HighCommitCount90d     int `toml:"high_commit_count_90d"`
	ModerateCommitCount90d int `toml:"moderate_commit_count_90d"`
	ActiveContributorTeam  int `toml:"active_contributor_team"`
	HighMergeCount30d      int `toml:"high_merge_count_30d"`
	ActiveScore            int `toml:"active_score"`
	ModerateScore          int `toml:"moderate_score"`
}

// DefaultWeights returns the shipped heuristic policy.
func DefaultWeights() Weights {
	return Weights{
		BeginnerLabelBonus:   5,
		RiskyLabelPenalty:    3,
		NoCommentsBonus:      1,
		BusyCommentsPenalty:  2,
		BusyCommentThreshold: 10,
		DetailedBodyBonus:    1,
		DetailedBodyMinChars: 100,

		LargePRAdditions:   1000,
		MediumPRAdditions:  300,
		VeryStrictComments: 10,
		StrictComments:     5,
		ModerateComments:   2,

		RecentCommitDays:       14,
		StaleCommitDays:        60,
		HighCommitCount90d:     20,
		ModerateCommitCount90d: 5,
		ActiveContributorTeam:  5,
		HighMergeCount30d:      5,
		ActiveScore:            6,
		ModerateScore:          2,
	}
}

// LoadWeights overlays TOML overrides from path on top of the defaults.
func LoadWeights(path string) (Weights, error) {
	w := DefaultWeights()
	if path == "" {
		return w, nil
	}
	if _, err := toml.DecodeFile(path, &w); err != nil {
		return Weights{}, fmt.Errorf("LoadWeights: decode %s: %w", path, err)
	}
	return w, nil
}
