package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/firstpr/firstpr/analysis"
)

const composeInstructions = `You are a prompt engineering expert. Your task is to design the system and user prompt a second model will use to explain a repository to new contributors.

You will receive a manifest of repository chunks. Each entry has an ID, a file path, a type (readme/docs/code/config/test/other), a character count, and a one-line summary.

Decide which chunks the final prompt should include verbatim and which it should reference by summary only.

Include verbatim:
- README and CONTRIBUTING files
- entry point files (main.py, index.js, main.go, ...)
- core architecture files
- chunks under 1000 characters
- anything with unique configuration or setup instructions

Summarize:
- large code files over 2000 characters
- repetitive test files
- generated files (package-lock.json, ...)
- secondary documentation

Return a JSON object with exactly these keys:
  system_prompt       instructions for the final model
  user_prompt_prefix  context introducing the repository
  chunks_verbatim     array of chunk IDs to include in full
  chunks_summarized   array of chunk IDs to reference by summary
  reasoning           brief explanation of your choices

Every chunk ID you return must come from the manifest. Provide only the JSON object, no additional text.`

const finalSystemPrompt = `You are an expert technical mentor onboarding a new open-source contributor to a repository.

Produce a complete, welcoming onboarding guide as a single JSON object matching the requested schema: a project summary, an architecture overview with components and tech stack reasoning, a Mermaid architecture diagram, the folder structure with responsibilities, core components, the detected tech stack, the development workflow (setup, run, test commands), a day-by-day onboarding roadmap, and any social links, FAQs, or missing documentation you can identify.

Be specific and actionable. Use real file names, commands, and examples from the provided repository content. When the content does not answer a question, say so rather than inventing details.`

// BuildComposeInput renders the manifest and repository metadata into the
// user message for the compose stage.
func BuildComposeInput(manifest []analysis.ManifestEntry, meta analysis.RepoMetadata) (string, error) {
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("BuildComposeInput: marshal manifest: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Repository: %s\n\n", meta.FullName)
	fmt.Fprintf(&b, "**Description**: %s\n", orNA(meta.Description))
	fmt.Fprintf(&b, "**Language**: %s\n\n", orNA(meta.Language))
	fmt.Fprintf(&b, "## Available Chunks\n\nYou have %d chunks of repository data:\n\n", len(manifest))
	b.Write(manifestJSON)
	b.WriteString("\n")
	return b.String(), nil
}

// BuildUserPrompt assembles the generation-stage user message from a prompt
// spec and the selected chunks. Chunk IDs the spec names but the selection
// no longer contains are skipped; the model sometimes hallucinates IDs and
// that must not fail the whole pipeline.
func BuildUserPrompt(spec PromptSpec, chunks []analysis.Chunk, meta analysis.RepoMetadata) string {
	lookup := make(map[string]analysis.Chunk, len(chunks))
	for _, c := range chunks {
		lookup[c.ID] = c
	}

	var b strings.Builder
	if spec.UserPrefix != "" {
		b.WriteString(spec.UserPrefix)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## Repository: %s\n\n", meta.FullName)
	fmt.Fprintf(&b, "**Description**: %s\n", orNA(meta.Description))
	fmt.Fprintf(&b, "**Language**: %s\n", orNA(meta.Language))
	fmt.Fprintf(&b, "**Stars**: %d\n", meta.Stars)
	fmt.Fprintf(&b, "**Open Issues**: %d\n\n", meta.OpenIssues)

	b.WriteString("## Key Files (Verbatim)\n\n")
	for _, id := range spec.VerbatimIDs {
		c, ok := lookup[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### File: %s\n\n%s\n\n", c.Path, c.Content)
	}

	b.WriteString("## Additional Files (Summaries)\n\n")
	for _, id := range spec.SummarizedIDs {
		c, ok := lookup[id]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", c.Path, analysis.QuickSummary(c))
	}

	b.WriteString("\n---\n\nGenerate a comprehensive onboarding guide following the specified JSON structure.\n")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
