// Package pipeline turns a repository identifier into a completed analysis
// job: file selection, bounded fetching and chunking, budgeting, heuristic
// analysis, and the two-stage generation handoff.
package pipeline

import (
	"context"
	"log"
	"sync"

	"github.com/firstpr/firstpr/analysis"
)

// DefaultConcurrency caps simultaneous file fetches.
const DefaultConcurrency = 10

// FileResult is one fetched file with its derived chunks. A failed fetch
// keeps its slot with empty content and nil chunks so results stay aligned
// with the requested paths.
type FileResult struct {
	Path    string
	Content string
	Chunks  []analysis.Chunk
}

// FetchFunc retrieves one file's decoded content.
type FetchFunc func(ctx context.Context, path string) (string, error)

// ChunkFunc splits one file's content into chunks.
type ChunkFunc func(ctx context.Context, path, content string) []analysis.Chunk

// RunBounded fetches and chunks paths with at most concurrency tasks in
// flight. A single failing file is logged and yields an empty placeholder;
// it never aborts the batch. Results are ordered as paths are.
func RunBounded(ctx context.Context, concurrency int, paths []string, fetch FetchFunc, chunk ChunkFunc) []FileResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]FileResult, len(paths))
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i] = FileResult{Path: path}
				return
			}
			defer func() { <-sem }()

			content, err := fetch(ctx, path)
			if err != nil {
				log.Printf("pipeline: fetch %s: %v", path, err)
				results[i] = FileResult{Path: path}
				return
			}
			results[i] = FileResult{
				Path:    path,
				Content: content,
				Chunks:  chunk(ctx, path, content),
			}
		}()
	}
	wg.Wait()

	return results
}
