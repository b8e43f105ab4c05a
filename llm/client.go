package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/firstpr/firstpr/analysis"
)

// generatedDocument is the portion of the onboarding report the model
// produces. Pipeline-computed sections (issues, activity, rate gauges)
// are attached afterwards and stay out of the response schema.
type generatedDocument struct {
	ProjectSummary       analysis.ProjectSummary       `json:"project_summary"`
	ArchitectureOverview analysis.ArchitectureOverview `json:"architecture_overview"`
	ArchitectureDiagram  string                        `json:"architecture_diagram_mermaid"`
	FolderStructure      []analysis.FolderEntry        `json:"folder_structure"`
	CoreComponents       []analysis.CoreComponent      `json:"core_components_and_functions"`
	TechStackDetected    analysis.TechStack            `json:"tech_stack_detected"`
	DevelopmentWorkflow  analysis.DevelopmentWorkflow  `json:"development_workflow"`
	OnboardingRoadmap    analysis.OnboardingRoadmap    `json:"firstpr_onboarding_roadmap"`
	SocialLinks          []analysis.SocialLink         `json:"social_links"`
	FAQ                  []analysis.FAQEntry           `json:"frequently_asked_questions"`
	MissingDocs          []string                      `json:"missing_docs_and_improvements"`
}

var composeSchema = GenerateSchema[PromptSpec]()
var reportSchema = GenerateSchema[generatedDocument]()

// Client calls the OpenAI Responses API for the two generation stages.
type Client struct {
	api   *openai.Client
	model string
}

func NewClient(apiKey, model string) *Client {
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{api: &c, model: model}
}

// Compose runs the first stage: given the chunk manifest and repository
// metadata, the model returns a PromptSpec describing how to build the
// final prompt.
func (c *Client) Compose(ctx context.Context, manifest []analysis.ManifestEntry, meta analysis.RepoMetadata) (PromptSpec, error) {
	if c.api == nil {
		return PromptSpec{}, errors.New("Compose: client is nil")
	}
	if c.model == "" {
		return PromptSpec{}, errors.New("Compose: model is empty")
	}

	input, err := BuildComposeInput(manifest, meta)
	if err != nil {
		return PromptSpec{}, err
	}

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "PromptSpec",
			Schema:      composeSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Prompt specification JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(4000),
		Instructions:    openai.String(composeInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := callWithRetry(ctx, c.api, params)
	if err != nil {
		return PromptSpec{}, fmt.Errorf("Compose: %w", err)
	}

	var spec PromptSpec
	if err := DecodeModelJSON(resp.OutputText(), &spec); err != nil {
		return PromptSpec{}, fmt.Errorf("Compose: %w", err)
	}
	return spec, nil
}

// Generate runs the second stage: the composed prompt plus the selected
// chunks go to the model, which returns the structured onboarding report.
// The report carries only model-generated sections; the caller fills in
// the heuristic ones.
func (c *Client) Generate(ctx context.Context, spec PromptSpec, chunks []analysis.Chunk, meta analysis.RepoMetadata) (analysis.Report, error) {
	if c.api == nil {
		return analysis.Report{}, errors.New("Generate: client is nil")
	}
	if c.model == "" {
		return analysis.Report{}, errors.New("Generate: model is empty")
	}

	system := strings.TrimSpace(spec.SystemPrompt)
	if system == "" {
		system = finalSystemPrompt
	}
	input := BuildUserPrompt(spec, chunks, meta)

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "OnboardingReport",
			Schema:      reportSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Onboarding report JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(16000),
		Instructions:    openai.String(system),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := callWithRetry(ctx, c.api, params)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("Generate: %w", err)
	}

	var report analysis.Report
	if err := DecodeModelJSON(resp.OutputText(), &report); err != nil {
		return analysis.Report{}, fmt.Errorf("Generate: %w", err)
	}
	return report, nil
}

func callWithRetry(ctx context.Context, client *openai.Client, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxRetries = 3
	rateLimitWaitTimes := []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second}
	serverErrorWaitTimes := []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second}

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := client.Responses.New(ctx, params)
		if err != nil {
			if isRateLimitError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(rateLimitWaitTimes[attempt])
					continue
				}
			} else if isServerError(err) {
				if attempt < maxRetries-1 {
					time.Sleep(serverErrorWaitTimes[attempt])
					continue
				}
			}
			return nil, err
		}
		return resp, nil
	}
	return nil, fmt.Errorf("failed after %d attempts due to OpenAI API issues", maxRetries)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
