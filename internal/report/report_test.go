package report

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/resolve"
	"gopkg.in/yaml.v3"
)

func testResult() *resolve.Result {
	return &resolve.Result{
		BatchID: "batch-1",
		State:   resolve.StateReported,
		Input:   2,
		Clusters: []records.Cluster{
			{Family: "9780140268867", Members: []string{"a", "b"}, Confidence: 0.94},
		},
		Canonical: []records.CanonicalRecord{
			{
				ID: "c1", Family: "9780140268867",
				ISBN13: "9780140268867", Title: "the odyssey",
				Authors:    []string{"homer"},
				Confidence: 0.94,
				Members:    []string{"a", "b"},
				Provenance: map[string]string{records.FieldTitle: "a"},
			},
		},
		Outcomes: []resolve.Outcome{
			{Kind: resolve.OutcomeResolved, RecordID: "c1", Family: "9780140268867"},
		},
	}
}

func TestSaveYAML(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveYAML(dir, testResult(), 0.8)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(path, dir) || !strings.HasSuffix(path, ".yaml") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if rep.Config.BatchID != "batch-1" {
		t.Errorf("BatchID = %q", rep.Config.BatchID)
	}
	if rep.Config.ClusterThreshold != 0.8 {
		t.Errorf("ClusterThreshold = %v", rep.Config.ClusterThreshold)
	}
	if len(rep.Canonical) != 1 {
		t.Fatalf("Canonical = %d entries, want 1", len(rep.Canonical))
	}
	if rep.Canonical[0].ISBN13 != "9780140268867" {
		t.Errorf("ISBN13 = %q", rep.Canonical[0].ISBN13)
	}
	if rep.Canonical[0].Provenance[records.FieldTitle] != "a" {
		t.Errorf("Provenance = %v", rep.Canonical[0].Provenance)
	}
}

func TestPrintSummaryListsCanonicalRecords(t *testing.T) {
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	PrintSummary(testResult())
	os.Stdout = old
	w.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "RESOLUTION SUMMARY") {
		t.Error("summary banner missing")
	}
	if !strings.Contains(out, "9780140268867") {
		t.Error("canonical ISBN missing from summary")
	}
	if !strings.Contains(out, "title<-a") {
		t.Errorf("provenance summary missing from output:\n%s", out)
	}
}

func TestSaveYAMLCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/reports"
	if _, err := SaveYAML(dir, testResult(), 0.8); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("report directory not created: %v", err)
	}
}
