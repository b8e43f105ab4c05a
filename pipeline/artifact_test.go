package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/firstpr/firstpr/analysis"
)

func TestWriteArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	report := analysis.Report{
		Repo:           "octo/tool",
		ProjectSummary: analysis.ProjectSummary{OneLiner: "a tool"},
	}

	if err := writeArtifact(dir, "job-1", report); err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "job-1.json"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var got analysis.Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal artifact: %v", err)
	}
	if got.Repo != "octo/tool" || got.ProjectSummary.OneLiner != "a tool" {
		t.Fatalf("artifact=%+v, want the report round-tripped", got)
	}
	if b[len(b)-1] != '\n' {
		t.Fatalf("artifact not newline-terminated")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only the artifact (no temp files left)", len(entries))
	}
}
