package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxChunkSize is the target character ceiling for one chunk.
	MaxChunkSize = 4000

	// ChunkOverlap is the trailing context carried into the next window by
	// the code and sliding-window strategies.
	ChunkOverlap = 400

	// charsPerLine is the assumed average line width used to convert the
	// character ceiling into a line window for code files.
	charsPerLine = 80
)

var codeSuffixes = []string{".py", ".js", ".ts", ".tsx", ".jsx", ".go", ".rs"}

var headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)

// ChunkFile splits file content into ordered chunks using a strategy picked
// by path suffix: markdown headers for .md, line windows for known source
// suffixes, and a sliding character window for everything else. Empty
// content or an empty path yields no chunks.
func ChunkFile(content, path string) []Chunk {
	if content == "" || path == "" {
		return nil
	}
	switch {
	case strings.HasSuffix(path, ".md"):
		return chunkMarkdown(content, path)
	case hasAnySuffix(path, codeSuffixes):
		return chunkCode(content, path)
	default:
		return chunkSlidingWindow(content, path)
	}
}

func hasAnySuffix(path string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

type mdSection struct {
	heading   string
	level     int
	startLine int
	lines     []string
}

// chunkMarkdown starts a new chunk at every level 1-3 heading. Content
// before the first heading becomes a chunk with an empty heading; a file
// with no headings yields exactly one chunk.
func chunkMarkdown(content, path string) []Chunk {
	lines := strings.Split(content, "\n")

	var sections []mdSection
	current := mdSection{startLine: 1}
	for i, line := range lines {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			if len(current.lines) > 0 {
				sections = append(sections, current)
			}
			current = mdSection{
				heading:   m[2],
				level:     len(m[1]),
				startLine: i + 1,
				lines:     []string{line},
			}
			continue
		}
		current.lines = append(current.lines, line)
	}
	if len(current.lines) > 0 {
		sections = append(sections, current)
	}

	chunks := make([]Chunk, 0, len(sections))
	for i, sec := range sections {
		chunks = append(chunks, Chunk{
			ID:           chunkID(path, i),
			Path:         path,
			Content:      strings.Join(sec.lines, "\n"),
			StartLine:    sec.startLine,
			EndLine:      sec.startLine + len(sec.lines) - 1,
			Heading:      sec.heading,
			HeadingLevel: sec.level,
		})
	}
	return chunks
}

// chunkCode partitions source text into fixed line windows sized to stay
// near MaxChunkSize, with each window after the first repeating a short tail
// of the previous one. A stand-in for AST-level segmentation; the external
// contract does not depend on the window shape.
func chunkCode(content, path string) []Chunk {
	lines := strings.Split(content, "\n")
	total := len(lines)
	maxLines := MaxChunkSize / charsPerLine
	overlapLines := ChunkOverlap / charsPerLine

	var chunks []Chunk
	start := 0
	for start < total {
		end := start + maxLines
		if end > total {
			end = total
		}
		windowStart := start
		if start > 0 {
			ov := overlapLines
			if ov > start {
				ov = start
			}
			windowStart = start - ov
		}
		chunks = append(chunks, Chunk{
			ID:        chunkID(path, len(chunks)),
			Path:      path,
			Content:   strings.Join(lines[windowStart:end], "\n"),
			StartLine: windowStart + 1,
			EndLine:   end,
		})
		start = end
	}
	return chunks
}

// chunkSlidingWindow walks the raw character stream in MaxChunkSize windows
// overlapping by ChunkOverlap. A boundary falling mid-word is pulled back to
// the nearest preceding newline, space, or period, in that order.
func chunkSlidingWindow(content, path string) []Chunk {
	var chunks []Chunk
	start := 0
	for start < len(content) {
		end := start + MaxChunkSize
		if end > len(content) {
			end = len(content)
		}
		if end < len(content) {
			for _, b := range []byte{'\n', ' ', '.'} {
				if idx := lastIndexByteRange(content, b, start, end); idx != -1 {
					end = idx + 1
					break
				}
			}
		}

		window := content[start:end]
		linesBefore := strings.Count(content[:start], "\n")
		chunks = append(chunks, Chunk{
			ID:        chunkID(path, len(chunks)),
			Path:      path,
			Content:   window,
			StartLine: linesBefore + 1,
			EndLine:   linesBefore + strings.Count(window, "\n") + 1,
		})

		if end >= len(content) {
			break
		}
		next := end - ChunkOverlap
		if next <= start {
			// Boundary pullback produced a window shorter than the overlap;
			// advancing without overlap keeps the walk terminating.
			next = end
		}
		start = next
	}
	return chunks
}

func lastIndexByteRange(s string, b byte, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func chunkID(path string, ordinal int) string {
	return fmt.Sprintf("%s:chunk_%d", path, ordinal)
}
