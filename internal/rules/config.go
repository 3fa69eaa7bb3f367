// Package rules loads the declarative category rule file and evaluates
// transaction text against it.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ledgermail/internal/common"
)

// Default thresholds applied when the config omits them.
const (
	DefaultMinimumConfidence = 0.75
	DefaultLLMThreshold      = 0.8
)

// Rule maps a keyword set to a ledger category with a static confidence
// weight. Declaration order is significant: earlier rules win confidence
// ties.
type Rule struct {
	Category   string   `yaml:"category"`
	Source     string   `yaml:"source,omitempty"`
	Keywords   []string `yaml:"keywords"`
	Confidence float64  `yaml:"confidence"`
}

// Config is the full rule file: the ordered rule list plus global
// thresholds.
type Config struct {
	Rules        []Rule `yaml:"rules"`
	Conservative struct {
		MinimumConfidence float64 `yaml:"minimum_confidence"`
	} `yaml:"conservative"`
	LLM struct {
		ConfidenceThreshold float64  `yaml:"confidence_threshold"`
		ForceLLMFor         []string `yaml:"force_llm_for"`
	} `yaml:"llm"`
}

// Load reads and validates the rule file. Any error here means the caller
// should run without classification, not abort.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing rules file: %v", common.ErrInvalidConfig, err)
	}

	for i, r := range cfg.Rules {
		if r.Category == "" {
			return nil, fmt.Errorf("%w: rule %d has no category", common.ErrInvalidConfig, i)
		}
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("%w: rule %d (%s) has no keywords", common.ErrInvalidConfig, i, r.Category)
		}
		if r.Confidence < 0 || r.Confidence > 1 {
			return nil, fmt.Errorf("%w: rule %d (%s) confidence %.2f outside [0,1]",
				common.ErrInvalidConfig, i, r.Category, r.Confidence)
		}
		// Unweighted rules get a high default, same as the source file format.
		if cfg.Rules[i].Confidence == 0 {
			cfg.Rules[i].Confidence = 0.9
		}
	}

	if cfg.Conservative.MinimumConfidence == 0 {
		cfg.Conservative.MinimumConfidence = DefaultMinimumConfidence
	}
	if cfg.LLM.ConfidenceThreshold == 0 {
		cfg.LLM.ConfidenceThreshold = DefaultLLMThreshold
	}

	return &cfg, nil
}
