package analysis

import (
	"path"
	"sort"
	"strings"
)

// TechStack lists detected languages and frameworks.
type TechStack struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
}

var extensionLanguages = map[string]string{
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "React/TypeScript",
	".jsx":  "React",
	".go":   "Go",
	".rs":   "Rust",
	".java": "Java",
	".cpp":  "C++",
}

var manifestFrameworks = []struct {
	manifest string
	needle   string
	name     string
}{
	{"package.json", `"react"`, "React"},
	{"package.json", `"next"`, "Next.js"},
	{"package.json", `"express"`, "Express"},
	{"package.json", `"tailwindcss"`, "Tailwind CSS"},
	{"", "fastapi", "FastAPI"},
	{"", "django", "Django"},
	{"", "flask", "Flask"},
	{"", "pandas", "Pandas"},
	{"", "torch", "PyTorch"},
	{"", "tensorflow", "TensorFlow"},
}

// DetectTechStack infers languages from upstream byte counts plus tree
// extensions, and frameworks from manifest contents. Python framework
// needles match against the combined pyproject/requirements text, mirroring
// how loosely those files pin names. languages may be nil when the byte
// counts were unavailable.
func DetectTechStack(tree []FileRef, manifests map[string]string, languages map[string]int) TechStack {
	langSet := map[string]bool{}
	for lang, bytes := range languages {
		if bytes > 0 {
			langSet[lang] = true
		}
	}
	for _, ref := range tree {
		if lang, ok := extensionLanguages[path.Ext(ref.Path)]; ok {
			langSet[lang] = true
		}
	}

	pythonManifest := manifestText(manifests, "pyproject.toml") + manifestText(manifests, "requirements.txt")
	frameworkSet := map[string]bool{}
	for _, mf := range manifestFrameworks {
		if mf.manifest != "" {
			if strings.Contains(manifestText(manifests, mf.manifest), mf.needle) {
				frameworkSet[mf.name] = true
			}
			continue
		}
		if strings.Contains(pythonManifest, mf.needle) {
			frameworkSet[mf.name] = true
		}
	}

	return TechStack{
		Languages:  sortedKeys(langSet),
		Frameworks: sortedKeys(frameworkSet),
	}
}

func manifestText(manifests map[string]string, name string) string {
	for p, content := range manifests {
		if path.Base(p) == name {
			return content
		}
	}
	return ""
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
