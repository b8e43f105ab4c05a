package analysis

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// LintTool names a detected linting or formatting tool and the config file
// that gave it away.
type LintTool struct {
	Name       string `json:"name"`
	ConfigFile string `json:"config_file"`
}

// CICheck is one automated check inferred from a CI workflow definition.
type CICheck struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	File string   `json:"file"`
	Jobs []string `json:"jobs,omitempty"`
}

// Rules bundles the contribution-gate signals detected for a repository.
type Rules struct {
	LintTools  []LintTool `json:"lint_tools"`
	CIChecks   []CICheck  `json:"ci_checks"`
	ActiveBots []string   `json:"active_bots"`
	Checklist  []string   `json:"checklist"`
}

var lintConfigs = []struct {
	tool  string
	files []string
}{
	{"ESLint", []string{".eslintrc", ".eslintrc.js", ".eslintrc.json", ".eslintrc.yaml"}},
	{"Prettier", []string{".prettierrc", ".prettierrc.js", ".prettierrc.json", ".prettierrc.yaml"}},
	{"Ruff", []string{"ruff.toml", ".ruff.toml"}},
	{"golangci-lint", []string{".golangci.yml", ".golangci.yaml"}},
	{"Black", []string{"pyproject.toml"}},
	{"Mypy", []string{"mypy.ini", ".mypy.ini"}},
	{"Pytest", []string{"pytest.ini"}},
}

var knownBots = map[string]bool{
	"dependabot[bot]":      true,
	"renovate[bot]":        true,
	"codecov[bot]":         true,
	"github-actions[bot]":  true,
	"stale[bot]":           true,
	"vercel[bot]":          true,
	"snyk-bot":             true,
	"semantic-release-bot": true,
}

// DetectLintTools checks tree filenames against known lint/format configs.
func DetectLintTools(tree []FileRef) []LintTool {
	names := map[string]bool{}
	for _, ref := range tree {
		names[path.Base(ref.Path)] = true
	}

	var tools []LintTool
	for _, lc := range lintConfigs {
		for _, file := range lc.files {
			if names[file] {
				tools = append(tools, LintTool{Name: lc.tool, ConfigFile: file})
				break
			}
		}
	}
	return tools
}

// workflowDoc is the slice of a GitHub Actions file we care about.
type workflowDoc struct {
	Name string                 `yaml:"name"`
	Jobs map[string]workflowJob `yaml:"jobs"`
}

type workflowJob struct {
	Name string `yaml:"name"`
}

// DetectCIChecks parses workflow YAML into named checks. A file that fails
// to parse still yields a check named after its filename; a broken workflow
// is still a gate contributors will hit.
func DetectCIChecks(workflows map[string]string) []CICheck {
	var checks []CICheck
	for file, content := range workflows {
		check := CICheck{
			Name: strings.TrimSuffix(path.Base(file), path.Ext(file)),
			Type: "GitHub Action",
			File: file,
		}
		var doc workflowDoc
		if err := yaml.Unmarshal([]byte(content), &doc); err == nil {
			if doc.Name != "" {
				check.Name = doc.Name
			}
			for id, job := range doc.Jobs {
				name := job.Name
				if name == "" {
					name = id
				}
				check.Jobs = append(check.Jobs, name)
			}
		}
		checks = append(checks, check)
	}
	return checks
}

// DetectBots finds automation accounts active in recent PRs and issues.
func DetectBots(prs []PullRequest, issues []Issue) []string {
	seen := map[string]bool{}
	var bots []string
	note := func(login string) {
		if login == "" || seen[login] {
			return
		}
		if knownBots[login] || strings.HasSuffix(login, "[bot]") {
			seen[login] = true
			bots = append(bots, login)
		}
	}
	for _, pr := range prs {
		note(pr.User.Login)
	}
	for _, issue := range issues {
		note(issue.User.Login)
	}
	return bots
}

// BuildChecklist turns detected gates into a pre-PR checklist.
func BuildChecklist(tools []LintTool, checks []CICheck) []string {
	checklist := []string{
		"Read the CONTRIBUTING.md file (if it exists).",
		"Fork the repository and create a new branch.",
	}
	for _, tool := range tools {
		checklist = append(checklist, fmt.Sprintf("Ensure code passes %s checks.", tool.Name))
	}
	if len(checks) > 0 {
		checklist = append(checklist, "Ensure all CI checks pass before merging.")
	}
	return checklist
}

// DetectRules runs all contribution-gate detectors in one pass.
func DetectRules(tree []FileRef, workflows map[string]string, prs []PullRequest, issues []Issue) Rules {
	tools := DetectLintTools(tree)
	checks := DetectCIChecks(workflows)
	return Rules{
		LintTools:  tools,
		CIChecks:   checks,
		ActiveBots: DetectBots(prs, issues),
		Checklist:  BuildChecklist(tools, checks),
	}
}
