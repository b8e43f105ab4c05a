package analysis

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectTechStack(t *testing.T) {
	t.Parallel()

	tree := []FileRef{
		blob("src/App.tsx"),
		blob("server/api.py"),
		blob("package.json"),
	}
	manifests := map[string]string{
		"package.json":     `{"dependencies": {"react": "^18.0.0", "tailwindcss": "^3.0.0"}}`,
		"requirements.txt": "fastapi==0.110.0\nuvicorn\n",
	}

	stack := DetectTechStack(tree, manifests, nil)

	langs := map[string]bool{}
	for _, l := range stack.Languages {
		langs[l] = true
	}
	if !langs["React/TypeScript"] || !langs["Python"] {
		t.Fatalf("Languages=%v, want React/TypeScript and Python", stack.Languages)
	}

	frameworks := map[string]bool{}
	for _, f := range stack.Frameworks {
		frameworks[f] = true
	}
	for _, want := range []string{"React", "Tailwind CSS", "FastAPI"} {
		if !frameworks[want] {
			t.Fatalf("Frameworks=%v, want %s detected", stack.Frameworks, want)
		}
	}
}

func TestDetectTechStack_MergesUpstreamLanguages(t *testing.T) {
	t.Parallel()

	tree := []FileRef{blob("main.go")}
	languages := map[string]int{"Go": 12000, "Shell": 300, "Makefile": 0}

	stack := DetectTechStack(tree, nil, languages)

	langs := map[string]bool{}
	for _, l := range stack.Languages {
		langs[l] = true
	}
	if !langs["Go"] || !langs["Shell"] {
		t.Fatalf("Languages=%v, want Go and Shell", stack.Languages)
	}
	if langs["Makefile"] {
		t.Fatalf("Languages=%v, zero-byte languages should be dropped", stack.Languages)
	}
}

func TestDetectTechStack_Empty(t *testing.T) {
	t.Parallel()

	stack := DetectTechStack(nil, nil, nil)
	if len(stack.Languages) != 0 || len(stack.Frameworks) != 0 {
		t.Fatalf("stack=%+v, want empty", stack)
	}
}

func TestLoadWeights_Defaults(t *testing.T) {
	t.Parallel()

	w, err := LoadWeights("")
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if w != DefaultWeights() {
		t.Fatalf("LoadWeights(\"\")=%+v, want defaults", w)
	}
}

func TestLoadWeights_OverlaysFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "weights.toml")
	if err := os.WriteFile(path, []byte("beginner_label_bonus = 9\n"), 0o644); err != nil {
		t.Fatalf("write weights: %v", err)
	}

	w, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if w.BeginnerLabelBonus != 9 {
		t.Fatalf("BeginnerLabelBonus=%d, want 9", w.BeginnerLabelBonus)
	}
	if w.RiskyLabelPenalty != DefaultWeights().RiskyLabelPenalty {
		t.Fatalf("RiskyLabelPenalty=%d, want default preserved", w.RiskyLabelPenalty)
	}
}
