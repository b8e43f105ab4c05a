package analysis

import (
	"fmt"
	"strings"
)

var entryPointFiles = []string{
	"main.py", "app.py", "__main__.py", "wsgi.py", "manage.py",
	"index.js", "server.js", "app.js", "main.js",
	"src/index.tsx", "src/main.ts", "src/App.tsx",
	"cmd/main.go", "main.go",
}

var manifestSuffixes = []string{".yml", ".yaml", ".json", ".toml", ".ini", ".conf"}

var testMarkers = []string{"_test.py", "_test.go", ".test.js", ".test.ts", ".spec.js"}

// ClassifyPath buckets a file path into readme, docs, config, test, code, or
// other. Used for the compose-stage manifest, not for chunk routing.
func ClassifyPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "readme"):
		return "readme"
	case strings.HasPrefix(lower, "docs/") || strings.HasSuffix(lower, ".md"):
		return "docs"
	case hasAnySuffix(lower, manifestSuffixes):
		return "config"
	case strings.Contains(lower, "test") || hasAnySuffix(lower, testMarkers):
		return "test"
	case hasAnySuffix(lower, codeSuffixes):
		return "code"
	default:
		return "other"
	}
}

// IsEntryPoint reports whether the path is a conventional program entry file.
func IsEntryPoint(path string) bool {
	for _, ep := range entryPointFiles {
		if strings.HasSuffix(path, ep) {
			return true
		}
	}
	return false
}

// QuickSummary produces a one-line human-readable description of a chunk
// for manifest entries and summarized prompt sections.
func QuickSummary(c Chunk) string {
	kind := ClassifyPath(c.Path)
	title := strings.ToUpper(kind[:1]) + kind[1:]
	if c.Heading != "" {
		return fmt.Sprintf("%s section: %s (%d chars)", title, c.Heading, len(c.Content))
	}
	return fmt.Sprintf("%s from %s (%d chars)", title, c.Path, len(c.Content))
}

// BuildManifest converts chunks into the compact descriptors the compose
// stage sees.
func BuildManifest(chunks []Chunk) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(chunks))
	for _, c := range chunks {
		entries = append(entries, ManifestEntry{
			ID:      c.ID,
			Path:    c.Path,
			Type:    ClassifyPath(c.Path),
			Size:    len(c.Content),
			Summary: QuickSummary(c),
		})
	}
	return entries
}
