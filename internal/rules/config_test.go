package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRulesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "category_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - category: Baby Supplies
    keywords: [wipes, diaper]
    confidence: 0.95
  - category: Groceries
    keywords: [coffee]
conservative:
  minimum_confidence: 0.7
llm:
  confidence_threshold: 0.85
  force_llm_for: [venmo]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, "Baby Supplies", cfg.Rules[0].Category)
	assert.InDelta(t, 0.95, cfg.Rules[0].Confidence, 0.001)
	// Unweighted rules get the default weight.
	assert.InDelta(t, 0.9, cfg.Rules[1].Confidence, 0.001)

	assert.InDelta(t, 0.7, cfg.Conservative.MinimumConfidence, 0.001)
	assert.InDelta(t, 0.85, cfg.LLM.ConfidenceThreshold, 0.001)
	assert.Equal(t, []string{"venmo"}, cfg.LLM.ForceLLMFor)
}

func TestLoadDefaultThresholds(t *testing.T) {
	path := writeRulesFile(t, `
rules:
  - category: Groceries
    keywords: [coffee]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, DefaultMinimumConfidence, cfg.Conservative.MinimumConfidence, 0.001)
	assert.InDelta(t, DefaultLLMThreshold, cfg.LLM.ConfidenceThreshold, 0.001)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "not yaml",
			content: "{{{{",
		},
		{
			name: "rule without category",
			content: `
rules:
  - keywords: [coffee]
`,
		},
		{
			name: "rule without keywords",
			content: `
rules:
  - category: Groceries
`,
		},
		{
			name: "confidence out of range",
			content: `
rules:
  - category: Groceries
    keywords: [coffee]
    confidence: 1.5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeRulesFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
