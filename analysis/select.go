package analysis

import (
	"path"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultMaxFiles caps how many files one analysis will fetch.
const DefaultMaxFiles = 60

var manifestNames = map[string]bool{
	"package.json":     true,
	"requirements.txt": true,
	"pyproject.toml":   true,
	"go.mod":           true,
	"Cargo.toml":       true,
	"Gemfile":          true,
	"pom.xml":          true,
}

// defaultIgnoreLines excludes vendored, generated, and binary-heavy paths
// from content fetching. Gitignore syntax, matched with go-gitignore.
var defaultIgnoreLines = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"dist/",
	"build/",
	"target/",
	"__pycache__/",
	"*.min.js",
	"*.lock",
	"package-lock.json",
	"yarn.lock",
	"*.png",
	"*.jpg",
	"*.gif",
	"*.ico",
	"*.svg",
	"*.pdf",
	"*.woff",
	"*.woff2",
}

// SelectFiles picks the subset of tree blobs worth fetching, in priority
// order: readme/contributing, manifests, CI workflows, docs, entry points,
// then remaining source files, capped at max (DefaultMaxFiles when max<=0).
// Ignored paths never appear regardless of category.
func SelectFiles(tree []FileRef, max int) []string {
	if max <= 0 {
		max = DefaultMaxFiles
	}
	matcher := ignore.CompileIgnoreLines(defaultIgnoreLines...)

	var primary, manifests, workflows, docs, entries, source []string
	for _, ref := range tree {
		if ref.Kind != "blob" || matcher.MatchesPath(ref.Path) {
			continue
		}
		lower := strings.ToLower(ref.Path)
		base := path.Base(ref.Path)
		switch {
		case strings.Contains(strings.ToUpper(base), "README") || strings.Contains(strings.ToUpper(base), "CONTRIBUTING"):
			primary = append(primary, ref.Path)
		case manifestNames[base]:
			manifests = append(manifests, ref.Path)
		case IsWorkflowPath(ref.Path):
			workflows = append(workflows, ref.Path)
		case strings.HasSuffix(lower, ".md"):
			docs = append(docs, ref.Path)
		case IsEntryPoint(ref.Path):
			entries = append(entries, ref.Path)
		case hasAnySuffix(lower, codeSuffixes):
			source = append(source, ref.Path)
		}
	}

	selected := make([]string, 0, max)
	for _, bucket := range [][]string{primary, manifests, workflows, docs, entries, source} {
		for _, p := range bucket {
			if len(selected) >= max {
				return selected
			}
			selected = append(selected, p)
		}
	}
	return selected
}

// IsWorkflowPath reports whether the path is a GitHub Actions workflow file.
func IsWorkflowPath(p string) bool {
	if !strings.HasPrefix(p, ".github/workflows/") {
		return false
	}
	return strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".yaml")
}
