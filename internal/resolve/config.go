package resolve

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/reconciler/internal/cluster"
	"github.com/lehigh-university-libraries/reconciler/internal/similarity"
	"gopkg.in/yaml.v3"
)

// Config is the immutable configuration handed to the engine at
// construction. Recognized options are the field similarity weights, the
// cluster threshold, and the per-source trust ranking.
type Config struct {
	// FieldWeights maps field names to their share of the record
	// score. Empty selects the documented defaults.
	FieldWeights map[string]float64 `yaml:"field_weights"`

	// ClusterThreshold is the minimum pairwise score for two records
	// to be united. Zero selects the default of 0.8.
	ClusterThreshold float64 `yaml:"cluster_threshold"`

	// SourceTrust ranks sources for field-level conflict resolution;
	// higher values win. Unlisted sources rank at 0.
	SourceTrust map[string]int `yaml:"source_trust"`

	// Concurrency bounds how many ISBN families are processed at
	// once. Zero selects a small default.
	Concurrency int `yaml:"concurrency"`
}

// LoadConfig reads a YAML config file. A missing path yields the zero
// Config, which selects all defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) weights() similarity.Weights {
	if len(c.FieldWeights) == 0 {
		return similarity.DefaultWeights()
	}
	return similarity.Weights(c.FieldWeights)
}

func (c Config) threshold() float64 {
	if c.ClusterThreshold <= 0 {
		return cluster.DefaultThreshold
	}
	return c.ClusterThreshold
}

func (c Config) concurrency() int {
	if c.Concurrency <= 0 {
		return 4
	}
	return c.Concurrency
}
