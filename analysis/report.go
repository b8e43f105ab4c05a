package analysis

// Report is the structured onboarding document the generation stage
// produces, plus the locally computed heuristic sections the pipeline
// attaches afterwards.
type Report struct {
	ProjectSummary       ProjectSummary       `json:"project_summary"`
	ArchitectureOverview ArchitectureOverview `json:"architecture_overview"`
	ArchitectureDiagram  string               `json:"architecture_diagram_mermaid"`
	FolderStructure      []FolderEntry        `json:"folder_structure"`
	CoreComponents       []CoreComponent      `json:"core_components_and_functions"`
	TechStackDetected    TechStack            `json:"tech_stack_detected"`
	DevelopmentWorkflow  DevelopmentWorkflow  `json:"development_workflow"`
	OnboardingRoadmap    OnboardingRoadmap    `json:"firstpr_onboarding_roadmap"`
	SocialLinks          []SocialLink         `json:"social_links,omitempty"`
	FAQ                  []FAQEntry           `json:"frequently_asked_questions,omitempty"`
	MissingDocs          []string             `json:"missing_docs_and_improvements,omitempty"`

	// Filled in by the pipeline, not the model.
	Repo          string         `json:"repo,omitempty"`
	Metadata      RepoMetadata   `json:"metadata,omitempty"`
	RankedIssues  []RankedIssue  `json:"ranked_issues,omitempty"`
	PRMetrics     PRMetrics      `json:"pr_metrics,omitempty"`
	Activity      ActivityReport `json:"activity,omitempty"`
	Rules         Rules          `json:"rules,omitempty"`
	RateRemaining int64          `json:"rate_limit_remaining,omitempty"`
	RateResetAt   string         `json:"rate_limit_reset,omitempty"`
}

type ProjectSummary struct {
	OneLiner string `json:"one_liner"`
	Audience string `json:"audience"`
	Maturity string `json:"maturity"`
}

type ArchitectureOverview struct {
	Narrative  string               `json:"narrative"`
	Components []ArchComponent      `json:"components"`
	TechStack  []TechStackReasoning `json:"tech_stack_reasoning,omitempty"`
}

type ArchComponent struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

type TechStackReasoning struct {
	Technology string `json:"technology"`
	Purpose    string `json:"purpose"`
	Reasoning  string `json:"reasoning"`
}

type FolderEntry struct {
	Path           string `json:"path"`
	Responsibility string `json:"responsibility"`
}

type CoreComponent struct {
	Symbol  string `json:"symbol"`
	Purpose string `json:"purpose"`
}

type DevelopmentWorkflow struct {
	SetupCommands []string `json:"setup_commands"`
	RunLocal      []string `json:"run_local"`
	TestCommands  []string `json:"test_commands"`
}

type OnboardingRoadmap struct {
	Day0   []string `json:"day0"`
	Day1   []string `json:"day1"`
	Day2_3 []string `json:"day2_3"`
	Day4_7 []string `json:"day4_7"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
