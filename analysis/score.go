package analysis

import (
	"sort"
	"strings"

	"github.com/firstpr/firstpr/token"
)

// Score rates a chunk's importance for the generation stage. Signals are
// independent and additive; no signal suppresses another.
func Score(c Chunk) float64 {
	score := 0.0
	path := c.Path
	upper := strings.ToUpper(path)

	if strings.Contains(upper, "README") {
		score += 100
	}
	if strings.Contains(upper, "CONTRIBUTING") {
		score += 90
	}
	if strings.HasPrefix(path, "docs/") {
		score += 80
	}
	if strings.HasSuffix(path, ".md") {
		score += 60
	}
	if hasAnySuffix(path, codeSuffixes) {
		score += 50
	}
	if IsEntryPoint(path) {
		score += 40
	}
	if underSourceDir(path) {
		score += 30
	}
	if hasAnySuffix(path, []string{".json", ".toml", ".yaml", ".yml"}) {
		score += 45
	}

	switch n := len(c.Content); {
	case n < 2000:
		score += 10
	case n > 8000:
		score -= 20
	}

	switch c.HeadingLevel {
	case 1:
		score += 15
	case 2:
		score += 10
	}

	return score
}

func underSourceDir(path string) bool {
	for _, dir := range []string{"src/", "lib/", "pkg/"} {
		if strings.HasPrefix(path, dir) || strings.Contains(path, "/"+dir) {
			return true
		}
	}
	return false
}

// Prioritize returns chunks ordered by descending score. The sort is stable,
// so equal scores keep their discovery order.
func Prioritize(chunks []Chunk) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, ScoredChunk{Chunk: c, Score: Score(c)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Budget greedily accepts chunks in score order until one would exceed the
// ceiling; that chunk and everything after it in score order goes to
// overflow. No backtracking: a smaller low-priority chunk never preempts a
// larger high-priority one. A nil estimator falls back to the chars/4
// heuristic.
func Budget(chunks []Chunk, ceiling int, est token.Estimator) BudgetResult {
	if est == nil {
		est = token.Heuristic{}
	}

	result := BudgetResult{
		Selected: make([]Chunk, 0, len(chunks)),
		Overflow: []Chunk{},
	}
	exceeded := false
	for _, sc := range Prioritize(chunks) {
		cost := est.Estimate(sc.Content)
		if exceeded || result.TokensUsed+cost > ceiling {
			exceeded = true
			result.Overflow = append(result.Overflow, sc.Chunk)
			continue
		}
		result.Selected = append(result.Selected, sc.Chunk)
		result.TokensUsed += cost
	}
	return result
}
