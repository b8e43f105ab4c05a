// Package llm is the two-stage generation collaborator: a compose call that
// plans which chunks to quote verbatim versus summarize, and a generate call
// that produces the final structured onboarding report.
package llm

import "fmt"

// PromptSpec is the stage-1 plan. Ids referencing chunks that no longer
// exist are tolerated downstream; they are treated as absent.
type PromptSpec struct {
	SystemPrompt  string   `json:"system_prompt"`
	UserPrefix    string   `json:"user_prompt_prefix"`
	VerbatimIDs   []string `json:"chunks_verbatim"`
	SummarizedIDs []string `json:"chunks_summarized"`
	Reasoning     string   `json:"reasoning,omitempty"`
}

// ParseError reports malformed model output. It carries a truncated preview
// of the raw text so failures are diagnosable without logging whole
// responses.
type ParseError struct {
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm: malformed model output: %v (preview: %s)", e.Err, e.Preview)
}

func (e *ParseError) Unwrap() error { return e.Err }
