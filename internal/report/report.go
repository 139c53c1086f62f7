package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/reconciler/internal/merge"
	"github.com/lehigh-university-libraries/reconciler/internal/resolve"
	"gopkg.in/yaml.v3"
)

// ReportConfig is the configuration section of the resolution report.
type ReportConfig struct {
	BatchID          string  `yaml:"batchid"`
	Input            int     `yaml:"input"`
	ClusterThreshold float64 `yaml:"clusterthreshold"`
	Timestamp        string  `yaml:"timestamp"`
}

// Report is the complete YAML resolution report.
type Report struct {
	Config    ReportConfig       `yaml:"config"`
	Canonical []CanonicalSummary `yaml:"canonical"`
	Outcomes  []resolve.Outcome  `yaml:"outcomes,omitempty"`
}

// CanonicalSummary is the per-record section of the report.
type CanonicalSummary struct {
	ISBN13     string            `yaml:"isbn13"`
	Title      string            `yaml:"title"`
	Authors    []string          `yaml:"authors,omitempty"`
	Confidence float64           `yaml:"confidence"`
	Members    []string          `yaml:"members"`
	Provenance map[string]string `yaml:"provenance"`
}

// SaveYAML writes the resolution report for one batch under dir,
// returning the file path.
func SaveYAML(dir string, result *resolve.Result, threshold float64) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	rep := Report{
		Config: ReportConfig{
			BatchID:          result.BatchID,
			Input:            result.Input,
			ClusterThreshold: threshold,
			Timestamp:        timestamp,
		},
		Canonical: make([]CanonicalSummary, 0, len(result.Canonical)),
		Outcomes:  result.Outcomes,
	}
	for _, c := range result.Canonical {
		rep.Canonical = append(rep.Canonical, CanonicalSummary{
			ISBN13:     c.ISBN13,
			Title:      c.Title,
			Authors:    c.Authors,
			Confidence: c.Confidence,
			Members:    c.Members,
			Provenance: c.Provenance,
		})
	}

	filename := filepath.Join(dir, fmt.Sprintf("resolution-%s.yaml", timestamp))
	data, err := yaml.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}
	return filename, nil
}

// LogOutcomes emits each outcome as a structured log event, the delivery
// channel for the reporting collaborator.
func LogOutcomes(result *resolve.Result) {
	for _, o := range result.Outcomes {
		switch o.Kind {
		case resolve.OutcomeResolved:
			slog.Debug("Cluster resolved", "record", o.RecordID, "family", o.Family)
		case resolve.OutcomeAmbiguous:
			slog.Warn("Ambiguous cluster", "record", o.RecordID, "family", o.Family, "detail", o.Detail)
		case resolve.OutcomeMalformedISBN:
			slog.Warn("Malformed ISBN", "record", o.RecordID, "detail", o.Detail)
		case resolve.OutcomeNormalizationWarning:
			slog.Warn("Normalization warning", "record", o.RecordID, "detail", o.Detail)
		case resolve.OutcomeMergeFailure:
			slog.Error("Merge failure", "family", o.Family, "detail", o.Detail)
		}
	}
}

// PrintSummary prints a human-readable summary of a resolution pass.
func PrintSummary(result *resolve.Result) {
	counts := make(map[resolve.OutcomeKind]int)
	for _, o := range result.Outcomes {
		counts[o.Kind]++
	}

	minConfidence := 1.0
	totalConfidence := 0.0
	largest := 0
	for _, c := range result.Clusters {
		if c.Confidence < minConfidence {
			minConfidence = c.Confidence
		}
		totalConfidence += c.Confidence
		if len(c.Members) > largest {
			largest = len(c.Members)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("RESOLUTION SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Batch: %s\n", result.BatchID)
	fmt.Printf("Input Records: %d\n", result.Input)
	fmt.Printf("Clusters: %d\n", len(result.Clusters))
	fmt.Printf("Canonical Records: %d\n", len(result.Canonical))
	fmt.Println()
	fmt.Println("OUTCOMES")
	fmt.Println(strings.Repeat("-", 70))
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  %s: %d\n", k, counts[resolve.OutcomeKind(k)])
	}
	if len(result.Clusters) > 0 {
		fmt.Println()
		fmt.Printf("Largest Cluster: %d records\n", largest)
		fmt.Printf("Average Confidence: %.3f\n", totalConfidence/float64(len(result.Clusters)))
		fmt.Printf("Minimum Confidence: %.3f\n", minConfidence)
	}
	if len(result.Canonical) > 0 {
		fmt.Println()
		fmt.Println("CANONICAL RECORDS")
		fmt.Println(strings.Repeat("-", 70))
		for _, c := range result.Canonical {
			fmt.Printf("  %s  %.3f  %s\n", c.ISBN13, c.Confidence, merge.Describe(c))
		}
	}
	fmt.Println(strings.Repeat("=", 70))
}
