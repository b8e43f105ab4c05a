package llm

import (
	"encoding/json"
	"io"
	"strings"
)

const previewLimit = 500

// StripFences removes a Markdown code-fence wrapper from model output.
// Models wrap JSON in ```json fences often enough that every parse path
// defensively strips them first.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "```json"); idx != -1 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		return strings.TrimSpace(s)
	}
	return s
}

// DecodeModelJSON parses model output into v, stripping fences and falling
// back to the first top-level JSON object. Failures come back as
// *ParseError with a bounded raw-text preview.
func DecodeModelJSON(outputText string, v any) error {
	s := StripFences(outputText)
	if s == "" {
		return &ParseError{Preview: "", Err: io.ErrUnexpectedEOF}
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return &ParseError{Preview: preview(s), Err: io.ErrUnexpectedEOF}
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return &ParseError{Preview: preview(s), Err: err}
	}
	return nil
}

func preview(s string) string {
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "…"
}
